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

// ConnectHandler drives the external-platform authorization flow.
type ConnectHandler struct {
	uc     usecase.ConnectUsecase
	logger *slog.Logger
}

// NewConnectHandler is the constructor for ConnectHandler, injected by Fx.
func NewConnectHandler(uc usecase.ConnectUsecase, logger *slog.Logger) *ConnectHandler {
	return &ConnectHandler{uc: uc, logger: logger}
}

type connectionResponse struct {
	AccountID         string `json:"account_id"`
	Provider          string `json:"provider"`
	ProviderAccountID string `json:"provider_account_id"`
	Email             string `json:"email"`
}

// Start issues a signed state token and hands back the provider consent URL.
// With redirect=true the tenant is sent there directly.
func (h *ConnectHandler) Start(c echo.Context) error {
	tenantID, ok := tenantIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid tenant ID in token")
	}

	input := usecase.StartConnectInput{
		TenantID:   tenantID,
		ReturnPath: c.QueryParam("return_path"),
	}
	// Re-authorizing an existing connection carries its account ID.
	if raw := c.QueryParam("account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid account ID")
		}
		input.AccountID = accountID
	}

	output, err := h.uc.StartConnect(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	if c.QueryParam("redirect") == "true" {
		return c.Redirect(http.StatusTemporaryRedirect, output.RedirectURL)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"redirect_url": output.RedirectURL,
	}, "Authorization URL generated")
}

// Callback completes the handshake: the provider redirects here with the
// signed state and the authorization code. A bad state is a 400, never a crash.
func (h *ConnectHandler) Callback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		return response.BadRequest(c, "INVALID_INPUT", "state and code are required")
	}

	output, err := h.uc.CompleteConnect(c.Request().Context(), usecase.CompleteConnectInput{
		State: state,
		Code:  code,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if output.ReturnPath != "" {
		return c.Redirect(http.StatusFound, output.ReturnPath)
	}

	return response.Success(c, http.StatusOK, connectionResponse{
		AccountID:         output.Account.ID.String(),
		Provider:          string(output.Account.Provider),
		ProviderAccountID: output.Account.ProviderAccountID,
		Email:             output.Account.Email,
	}, "Account connected")
}

// List returns the tenant's connected accounts.
func (h *ConnectHandler) List(c echo.Context) error {
	tenantID, ok := tenantIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid tenant ID in token")
	}

	accounts, err := h.uc.ListConnections(c.Request().Context(), tenantID)
	if err != nil {
		return errors.WithStack(err)
	}

	connections := make([]connectionResponse, 0, len(accounts))
	for _, account := range accounts {
		connections = append(connections, connectionResponse{
			AccountID:         account.ID.String(),
			Provider:          string(account.Provider),
			ProviderAccountID: account.ProviderAccountID,
			Email:             account.Email,
		})
	}

	return response.Success(c, http.StatusOK, connections, "Connections retrieved")
}
