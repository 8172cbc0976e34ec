package mockservice

import (
	"context"

	"affiliate-tracking-service/internal/model"
	"affiliate-tracking-service/internal/service"

	"github.com/stretchr/testify/mock"
)

type ClickService struct {
	mock.Mock
}

// Interface compliance check
var _ service.ClickService = &ClickService{}

func (m *ClickService) Record(ctx context.Context, req service.RedirectRequest) (model.RedirectTarget, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.RedirectTarget), args.Error(1)
}

type PostbackService struct {
	mock.Mock
}

// Interface compliance check
var _ service.PostbackService = &PostbackService{}

func (m *PostbackService) Ingest(ctx context.Context, event model.NormalizedEvent) (int64, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(int64), args.Error(1)
}
