package mockrepository

import (
	"context"

	"affiliate-tracking-service/internal/model"
	"affiliate-tracking-service/internal/repository"

	"github.com/stretchr/testify/mock"
)

type ConversionRepo struct {
	mock.Mock
}

// Interface compliance check
var _ repository.ConversionRepository = &ConversionRepo{}

func (m *ConversionRepo) Upsert(ctx context.Context, conversion model.Conversion) (int64, error) {
	args := m.Called(ctx, conversion)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ConversionRepo) Create(ctx context.Context, conversion model.Conversion) (int64, error) {
	args := m.Called(ctx, conversion)
	return args.Get(0).(int64), args.Error(1)
}
