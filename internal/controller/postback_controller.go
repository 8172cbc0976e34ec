package controller

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"affiliate-tracking-service/internal/service"
)

// PostbackController exposes the conversion ingestion endpoint. It
// accepts POST with a JSON body and GET with the same fields in the
// query string (for manual testing by advertiser integrations).
type PostbackController interface {
	Ingest(c *fiber.Ctx) error
}

type postbackController struct {
	auth            service.Authorizer
	postbackService service.PostbackService
}

// NewPostbackController builds a PostbackController.
func NewPostbackController(auth service.Authorizer, svc service.PostbackService) PostbackController {
	return &postbackController{auth: auth, postbackService: svc}
}

// Ingest authenticates, normalizes and records one conversion event.
// Steps run strictly in sequence; nothing is written before both
// authentication and normalization have succeeded.
func (h *postbackController) Ingest(c *fiber.Ctx) error {
	raw := c.Body()
	signature := c.Get("X-Signature")

	// A qualifying signature is verified against the raw wire bytes
	// before any JSON parsing, and takes priority over the secret field.
	signatureSupplied := len(signature) >= service.MinSignatureHexLen
	if signatureSupplied && !h.auth.Authorize(raw, "", signature) {
		return unauthorized(c)
	}

	fields, err := parseFields(c, raw)
	if err != nil {
		return badRequest(c, "invalid json payload")
	}

	if !signatureSupplied && !h.auth.Authorize(raw, secretField(fields), "") {
		return unauthorized(c)
	}

	event, err := service.Normalize(fields)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			return badRequest(c, vErr.Message)
		}
		return badRequest(c, "invalid payload")
	}

	id, err := h.postbackService.Ingest(c.Context(), event)
	if err != nil {
		log.Println("postback ingest failed:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "INTERNAL_ERROR"})
	}

	return c.JSON(fiber.Map{"ok": true, "id": id})
}

// parseFields extracts the logical field set from either transport.
func parseFields(c *fiber.Ctx, raw []byte) (map[string]any, error) {
	if c.Method() == fiber.MethodGet {
		fields := make(map[string]any)
		for key, val := range c.Queries() {
			fields[key] = val
		}
		return fields, nil
	}

	fields := make(map[string]any)
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func secretField(fields map[string]any) string {
	if s, ok := fields["secret"].(string); ok {
		return s
	}
	return ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "UNAUTHORIZED"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
