package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"affiliate-tracking-service/internal/model"
	"affiliate-tracking-service/internal/repository"
)

// OfferSource yields offers for the redirect hot path. Satisfied by the
// offer repository directly or by the Redis cache wrapping it.
type OfferSource interface {
	Find(ctx context.Context, id int64) (*model.Offer, error)
}

// RedirectRequest carries everything the click endpoint extracted from
// the inbound request. All metadata fields are best-effort; absence
// never fails the click.
type RedirectRequest struct {
	OfferID   int64
	UserID    *int64
	SubID     string
	Sub2      string
	Sub3      string
	Sub4      string
	Sub5      string
	Source    string
	Campaign  string
	Adset     string
	Creative  string
	IP        string
	UserAgent string
	Referrer  string
}

// ClickService records tracking clicks and computes redirect targets.
type ClickService interface {
	Record(ctx context.Context, req RedirectRequest) (model.RedirectTarget, error)
}

type clickService struct {
	offers OfferSource
	clicks repository.ClickRepository
	minter ClickIDMinter
}

// NewClickService constructs a ClickService.
func NewClickService(offers OfferSource, clicks repository.ClickRepository, minter ClickIDMinter) ClickService {
	return &clickService{offers: offers, clicks: clicks, minter: minter}
}

// Record validates offer eligibility, persists exactly one click row and
// returns the outbound redirect target. A failed insert surfaces as an
// error; the caller retries the outer click, there is no retry here.
func (s *clickService) Record(ctx context.Context, req RedirectRequest) (model.RedirectTarget, error) {
	offer, err := s.offers.Find(ctx, req.OfferID)
	if err != nil {
		return model.RedirectTarget{}, fmt.Errorf("offer lookup: %w", err)
	}
	if offer == nil {
		return model.RedirectTarget{}, ErrOfferNotFound
	}
	if !offer.Eligible() {
		return model.RedirectTarget{}, ErrOfferNotEligible
	}

	clickID, err := s.minter.Mint()
	if err != nil {
		return model.RedirectTarget{}, fmt.Errorf("mint click id: %w", err)
	}

	click := model.Click{
		ClickID:   clickID,
		OfferID:   req.OfferID,
		UserID:    req.UserID,
		SubID:     req.SubID,
		Sub2:      req.Sub2,
		Sub3:      req.Sub3,
		Sub4:      req.Sub4,
		Sub5:      req.Sub5,
		Source:    req.Source,
		Campaign:  req.Campaign,
		Adset:     req.Adset,
		Creative:  req.Creative,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		Referrer:  req.Referrer,
	}
	if err := s.clicks.Create(ctx, click); err != nil {
		return model.RedirectTarget{}, err
	}

	target, err := buildRedirectURL(offer.URL, req.OfferID, clickID, req.SubID)
	if err != nil {
		return model.RedirectTarget{}, err
	}
	return model.RedirectTarget{URL: target, ClickID: clickID}, nil
}

// buildRedirectURL appends tracking parameters to the destination URL.
// Parameters already defined by the destination win (first-writer-wins),
// so offers can hardcode their own values.
func buildRedirectURL(destination string, offerID int64, clickID, subID string) (string, error) {
	u, err := url.Parse(destination)
	if err != nil {
		return "", fmt.Errorf("parse offer url: %w", err)
	}
	q := u.Query()
	if !q.Has("click_id") {
		q.Set("click_id", clickID)
	}
	if !q.Has("offer_id") {
		q.Set("offer_id", strconv.FormatInt(offerID, 10))
	}
	if subID != "" && !q.Has("sub_id") {
		q.Set("sub_id", subID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
