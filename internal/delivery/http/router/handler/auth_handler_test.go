package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reviewhub/internal/delivery/http/middleware"
	"reviewhub/internal/delivery/http/validator"
	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	mockUC "reviewhub/internal/mocks/usecase"
	"reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthTestServer(t *testing.T) (*echo.Echo, *mockUC.MockAuthUsecase) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authUC := mockUC.NewMockAuthUsecase(t)

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError
	e.POST("/auth/login", NewAuthHandler(authUC, logger).Login)

	return e, authUC
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e, authUC := newAuthTestServer(t)

	tenant := &entity.Tenant{ID: uuid.New(), Name: "Cafe Soleil", Email: "owner@example.com"}
	// httptest requests carry the fixed RemoteAddr 192.0.2.1:1234; the
	// handler forwards the bare IP so the guard can key on it.
	authUC.On("Login", mock.Anything, usecase.LoginInput{
		Email: "owner@example.com", Password: "secret", ClientAddr: "192.0.2.1",
	}).Return(&usecase.LoginOutput{AccessToken: "access", RefreshToken: "refresh", Tenant: tenant}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"owner@example.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool          `json:"success"`
		Data    loginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "access", envelope.Data.AccessToken)
	assert.Equal(t, tenant.ID.String(), envelope.Data.TenantID)
}

func TestAuthHandler_Login_MissingEmailIsBadRequest(t *testing.T) {
	e, authUC := newAuthTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	authUC.AssertNotCalled(t, "Login")
}

func TestAuthHandler_Login_RateLimitedIs429WithRetryAfter(t *testing.T) {
	e, authUC := newAuthTestServer(t)

	rejection := domainerrors.NewRateLimitError(domainerrors.ReasonLockedOut, "帳號已暫時鎖定,請稍後再試", 3*time.Minute)
	authUC.On("Login", mock.Anything, mock.Anything).Return(nil, rejection)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"owner@example.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "180", rec.Header().Get("Retry-After"))

	var envelope struct {
		Error struct {
			Code       string `json:"code"`
			Details    string `json:"details"`
			RetryAfter int64  `json:"retry_after"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "RATE_LIMITED", envelope.Error.Code)
	assert.Equal(t, domainerrors.ReasonLockedOut, envelope.Error.Details)
	assert.Equal(t, int64(180), envelope.Error.RetryAfter)
}

func TestAuthHandler_Login_InvalidCredentialsMapsToAppError(t *testing.T) {
	e, authUC := newAuthTestServer(t)

	authUC.On("Login", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrInvalidCredentials)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"owner@example.com","password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, domainerrors.ErrInvalidCredentials.HTTPCode(), rec.Code)
}
