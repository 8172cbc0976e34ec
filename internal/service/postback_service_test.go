package service

import (
	"context"
	"errors"
	"testing"

	"affiliate-tracking-service/internal/model"
	mockrepository "affiliate-tracking-service/internal/testdata/mockrepository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PostbackServiceTestSuite struct {
	suite.Suite

	clicks      *mockrepository.ClickRepo
	conversions *mockrepository.ConversionRepo
	service     PostbackService
}

func TestPostbackServiceSuite(t *testing.T) {
	suite.Run(t, new(PostbackServiceTestSuite))
}

func (s *PostbackServiceTestSuite) SetupTest() {
	s.clicks = &mockrepository.ClickRepo{}
	s.conversions = &mockrepository.ConversionRepo{}
	s.service = NewPostbackService(s.clicks, s.conversions)
}

func (s *PostbackServiceTestSuite) TestIngest_UpsertWhenTxPresent() {
	event := model.NormalizedEvent{OfferID: 7, TxID: "T1", Type: model.ConversionDep}
	s.conversions.On("Upsert", mock.Anything, mock.MatchedBy(func(c model.Conversion) bool {
		return c.OfferID == 7 && c.TxID == "T1" && c.Type == model.ConversionDep && c.UserID == nil
	})).Return(int64(42), nil)

	id, err := s.service.Ingest(context.Background(), event)

	s.NoError(err)
	s.Equal(int64(42), id)
	s.clicks.AssertNotCalled(s.T(), "FindLatestMatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.conversions.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *PostbackServiceTestSuite) TestIngest_RedeliveryReturnsSameID() {
	event := model.NormalizedEvent{OfferID: 7, TxID: "T1", Type: model.ConversionReg}
	s.conversions.On("Upsert", mock.Anything, mock.Anything).Return(int64(42), nil).Twice()

	first, err := s.service.Ingest(context.Background(), event)
	s.NoError(err)
	event.Type = model.ConversionDep
	second, err := s.service.Ingest(context.Background(), event)
	s.NoError(err)

	s.Equal(first, second)
	s.conversions.AssertExpectations(s.T())
}

func (s *PostbackServiceTestSuite) TestIngest_CreateWhenTxAbsent() {
	event := model.NormalizedEvent{OfferID: 7, Type: model.ConversionReg}
	s.conversions.On("Create", mock.Anything, mock.MatchedBy(func(c model.Conversion) bool {
		return c.OfferID == 7 && c.TxID == "" && c.UserID == nil
	})).Return(int64(5), nil)

	id, err := s.service.Ingest(context.Background(), event)

	s.NoError(err)
	s.Equal(int64(5), id)
	s.clicks.AssertNotCalled(s.T(), "FindLatestMatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.conversions.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
}

func (s *PostbackServiceTestSuite) TestIngest_AttributionResolvesUser() {
	userID := int64(9)
	event := model.NormalizedEvent{OfferID: 7, TxID: "T1", ClickID: "abc", SubID: "s1"}
	s.clicks.On("FindLatestMatch", mock.Anything, int64(7), "abc", "s1").
		Return(&model.Click{ID: 1, ClickID: "abc", OfferID: 7, UserID: &userID}, nil)
	s.conversions.On("Upsert", mock.Anything, mock.MatchedBy(func(c model.Conversion) bool {
		return c.UserID != nil && *c.UserID == 9
	})).Return(int64(42), nil)

	_, err := s.service.Ingest(context.Background(), event)

	s.NoError(err)
	s.conversions.AssertExpectations(s.T())
}

func (s *PostbackServiceTestSuite) TestIngest_NoMatchDegradesToUnattributed() {
	event := model.NormalizedEvent{OfferID: 7, TxID: "T1", SubID: "stale"}
	s.clicks.On("FindLatestMatch", mock.Anything, int64(7), "", "stale").Return(nil, nil)
	s.conversions.On("Upsert", mock.Anything, mock.MatchedBy(func(c model.Conversion) bool {
		return c.UserID == nil
	})).Return(int64(42), nil)

	id, err := s.service.Ingest(context.Background(), event)

	s.NoError(err)
	s.Equal(int64(42), id)
}

func (s *PostbackServiceTestSuite) TestIngest_AnonymousClickKeepsNilUser() {
	event := model.NormalizedEvent{OfferID: 7, TxID: "T1", ClickID: "abc"}
	s.clicks.On("FindLatestMatch", mock.Anything, int64(7), "abc", "").
		Return(&model.Click{ID: 1, ClickID: "abc", OfferID: 7}, nil)
	s.conversions.On("Upsert", mock.Anything, mock.MatchedBy(func(c model.Conversion) bool {
		return c.UserID == nil
	})).Return(int64(42), nil)

	_, err := s.service.Ingest(context.Background(), event)

	s.NoError(err)
}

func (s *PostbackServiceTestSuite) TestIngest_LookupErrorStopsRecording() {
	event := model.NormalizedEvent{OfferID: 7, TxID: "T1", ClickID: "abc"}
	s.clicks.On("FindLatestMatch", mock.Anything, int64(7), "abc", "").Return(nil, errors.New("db down"))

	_, err := s.service.Ingest(context.Background(), event)

	s.Error(err)
	s.conversions.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
	s.conversions.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}
