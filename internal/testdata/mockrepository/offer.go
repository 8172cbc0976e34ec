package mockrepository

import (
	"context"

	"affiliate-tracking-service/internal/model"
	"affiliate-tracking-service/internal/repository"

	"github.com/stretchr/testify/mock"
)

type OfferRepo struct {
	mock.Mock
}

// Interface compliance check
var _ repository.OfferRepository = &OfferRepo{}

func (m *OfferRepo) Find(ctx context.Context, id int64) (*model.Offer, error) {
	args := m.Called(ctx, id)
	var offer *model.Offer
	if v := args.Get(0); v != nil {
		offer = v.(*model.Offer)
	}
	return offer, args.Error(1)
}
