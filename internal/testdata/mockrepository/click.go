package mockrepository

import (
	"context"

	"affiliate-tracking-service/internal/model"
	"affiliate-tracking-service/internal/repository"

	"github.com/stretchr/testify/mock"
)

type ClickRepo struct {
	mock.Mock
}

// Interface compliance check
var _ repository.ClickRepository = &ClickRepo{}

func (m *ClickRepo) Create(ctx context.Context, click model.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

func (m *ClickRepo) FindLatestMatch(ctx context.Context, offerID int64, clickID, subID string) (*model.Click, error) {
	args := m.Called(ctx, offerID, clickID, subID)
	var click *model.Click
	if v := args.Get(0); v != nil {
		click = v.(*model.Click)
	}
	return click, args.Error(1)
}
