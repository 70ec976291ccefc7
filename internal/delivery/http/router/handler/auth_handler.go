// Package handler contains the HTTP handlers for the dashboard API.
package handler

import (
	"log/slog"
	"net/http"

	"reviewhub/internal/delivery/http/response"
	"reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TenantID     string `json:"tenant_id"`
	TenantName   string `json:"tenant_name"`
}

// Login handles the tenant login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		ClientAddr: c.RealIP(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, loginResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		TenantID:     output.Tenant.ID.String(),
		TenantName:   output.Tenant.Name,
	}, "Login successful")
}

type registerDeviceRequest struct {
	DeviceToken string `json:"device_token"`
}

// RegisterDevice stores the tenant's push token for new-review notifications.
// An empty token disables push for the tenant.
func (h *AuthHandler) RegisterDevice(c echo.Context) error {
	tenantID, ok := tenantIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid tenant ID in token")
	}

	var req registerDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid device token input")
	}

	if err := h.uc.RegisterDeviceToken(c.Request().Context(), tenantID, req.DeviceToken); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"status": "registered"}, "Device token registered")
}

// tenantIDFromContext reads the tenant identity the auth middleware stored.
func tenantIDFromContext(c echo.Context) (uuid.UUID, bool) {
	tenantID, ok := c.Get("tenantID").(uuid.UUID)

	return tenantID, ok
}
