package service

import (
	"context"

	"affiliate-tracking-service/internal/model"
	"affiliate-tracking-service/internal/repository"
)

// PostbackService turns a normalized event into a stored conversion.
type PostbackService interface {
	Ingest(ctx context.Context, event model.NormalizedEvent) (int64, error)
}

type postbackService struct {
	clicks      repository.ClickRepository
	conversions repository.ConversionRepository
}

// NewPostbackService constructs a PostbackService.
func NewPostbackService(clicks repository.ClickRepository, conversions repository.ConversionRepository) PostbackService {
	return &postbackService{clicks: clicks, conversions: conversions}
}

// Ingest resolves attribution for the event and records the conversion.
// A present tx id makes the write an idempotent upsert keyed on
// (offer_id, tx_id); without one every postback creates a new row.
func (s *postbackService) Ingest(ctx context.Context, event model.NormalizedEvent) (int64, error) {
	userID, err := s.resolveUser(ctx, event)
	if err != nil {
		return 0, err
	}

	conversion := model.Conversion{
		OfferID:  event.OfferID,
		TxID:     event.TxID,
		Type:     event.Type,
		Amount:   event.Amount,
		Currency: event.Currency,
		UserID:   userID,
		SubID:    event.SubID,
	}

	if event.TxID != "" {
		return s.conversions.Upsert(ctx, conversion)
	}
	return s.conversions.Create(ctx, conversion)
}

// resolveUser recovers the user behind the click the advertiser echoed
// back. No matching click is not an error: the conversion is stored
// unattributed rather than dropped.
func (s *postbackService) resolveUser(ctx context.Context, event model.NormalizedEvent) (*int64, error) {
	if event.ClickID == "" && event.SubID == "" {
		return nil, nil
	}
	click, err := s.clicks.FindLatestMatch(ctx, event.OfferID, event.ClickID, event.SubID)
	if err != nil {
		return nil, err
	}
	if click == nil {
		return nil, nil
	}
	return click.UserID, nil
}
