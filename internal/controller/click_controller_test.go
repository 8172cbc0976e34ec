package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"affiliate-tracking-service/internal/model"
	"affiliate-tracking-service/internal/service"
	mockservice "affiliate-tracking-service/internal/testdata/mockservice"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ClickControllerTestSuite struct {
	suite.Suite
	app     *fiber.App
	service *mockservice.ClickService
}

func TestClickControllerSuite(t *testing.T) {
	suite.Run(t, new(ClickControllerTestSuite))
}

func (s *ClickControllerTestSuite) SetupTest() {
	s.service = &mockservice.ClickService{}
	ctrl := NewClickController(s.service)
	s.app = fiber.New()
	s.app.Get("/click/:offer_id", ctrl.Redirect)
}

func (s *ClickControllerTestSuite) TestRedirect_Success() {
	target := model.RedirectTarget{
		URL:     "https://landing.test/promo?click_id=CLICK123&offer_id=7&sub_id=s1",
		ClickID: "CLICK123",
	}
	s.service.On("Record", mock.Anything, mock.MatchedBy(func(req service.RedirectRequest) bool {
		return req.OfferID == 7 && req.SubID == "s1" && req.Source == "newsletter"
	})).Return(target, nil)

	req := httptest.NewRequest(http.MethodGet, "/click/7?sub_id=s1&source=newsletter", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(s.T(), err)

	require.Equal(s.T(), http.StatusFound, resp.StatusCode)
	require.Equal(s.T(), target.URL, resp.Header.Get("Location"))
}

func (s *ClickControllerTestSuite) TestRedirect_SubIDAlias() {
	s.service.On("Record", mock.Anything, mock.MatchedBy(func(req service.RedirectRequest) bool {
		return req.SubID == "aliased"
	})).Return(model.RedirectTarget{URL: "https://landing.test"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/click/7?subid=aliased", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusFound, resp.StatusCode)
}

func (s *ClickControllerTestSuite) TestRedirect_UserParam() {
	s.service.On("Record", mock.Anything, mock.MatchedBy(func(req service.RedirectRequest) bool {
		return req.UserID != nil && *req.UserID == 33
	})).Return(model.RedirectTarget{URL: "https://landing.test"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/click/7?user=33", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusFound, resp.StatusCode)
}

func (s *ClickControllerTestSuite) TestRedirect_BadUserParamIgnored() {
	s.service.On("Record", mock.Anything, mock.MatchedBy(func(req service.RedirectRequest) bool {
		return req.UserID == nil
	})).Return(model.RedirectTarget{URL: "https://landing.test"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/click/7?user=not-a-number", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusFound, resp.StatusCode)
}

func (s *ClickControllerTestSuite) TestRedirect_OfferNotAvailable() {
	for _, svcErr := range []error{service.ErrOfferNotFound, service.ErrOfferNotEligible} {
		s.SetupTest()
		s.service.On("Record", mock.Anything, mock.Anything).Return(model.RedirectTarget{}, svcErr)

		req := httptest.NewRequest(http.MethodGet, "/click/7", nil)
		resp, err := s.app.Test(req, -1)
		require.NoError(s.T(), err)

		require.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
		var body map[string]string
		require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(s.T(), "OFFER_NOT_AVAILABLE", body["error"])
	}
}

func (s *ClickControllerTestSuite) TestRedirect_MalformedOfferID() {
	req := httptest.NewRequest(http.MethodGet, "/click/not-a-number", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(s.T(), err)

	require.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	s.service.AssertNotCalled(s.T(), "Record", mock.Anything, mock.Anything)
}

func (s *ClickControllerTestSuite) TestRedirect_InternalError() {
	s.service.On("Record", mock.Anything, mock.Anything).Return(model.RedirectTarget{}, errors.New("db down"))

	req := httptest.NewRequest(http.MethodGet, "/click/7", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(s.T(), err)

	require.Equal(s.T(), http.StatusInternalServerError, resp.StatusCode)
}
