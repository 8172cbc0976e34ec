package controller

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"affiliate-tracking-service/internal/service"
)

// ClickController exposes the tracking redirect endpoint.
type ClickController interface {
	Redirect(c *fiber.Ctx) error
}

type clickController struct {
	clickService service.ClickService
}

// NewClickController builds a ClickController.
func NewClickController(svc service.ClickService) ClickController {
	return &clickController{clickService: svc}
}

// Redirect records a click for the offer in the path and 302s the
// visitor to the offer destination with tracking parameters appended.
func (h *clickController) Redirect(c *fiber.Ctx) error {
	offerID, err := strconv.ParseInt(c.Params("offer_id"), 10, 64)
	if err != nil {
		return offerNotAvailable(c)
	}

	req := service.RedirectRequest{
		OfferID:   offerID,
		UserID:    optionalUserID(c.Query("user")),
		SubID:     firstQuery(c, "sub_id", "subid"),
		Sub2:      c.Query("sub2"),
		Sub3:      c.Query("sub3"),
		Sub4:      c.Query("sub4"),
		Sub5:      c.Query("sub5"),
		Source:    c.Query("source"),
		Campaign:  c.Query("campaign"),
		Adset:     c.Query("adset"),
		Creative:  c.Query("creative"),
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Referrer:  c.Get(fiber.HeaderReferer),
	}

	target, err := h.clickService.Record(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrOfferNotFound) || errors.Is(err, service.ErrOfferNotEligible) {
			return offerNotAvailable(c)
		}
		log.Println("click record failed:", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to record click")
	}

	return c.Redirect(target.URL, fiber.StatusFound)
}

func offerNotAvailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "OFFER_NOT_AVAILABLE"})
}

func firstQuery(c *fiber.Ctx, keys ...string) string {
	for _, key := range keys {
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}

// optionalUserID parses a pre-resolved affiliate id. Unparseable values
// are dropped rather than rejected; the field is best-effort metadata.
func optionalUserID(raw string) *int64 {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
