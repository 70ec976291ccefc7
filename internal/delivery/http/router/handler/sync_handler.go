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

// SyncHandler triggers the review ingestion pipeline.
type SyncHandler struct {
	uc     usecase.SyncUsecase
	logger *slog.Logger
}

// NewSyncHandler is the constructor for SyncHandler, injected by Fx.
func NewSyncHandler(uc usecase.SyncUsecase, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{uc: uc, logger: logger}
}

type syncRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
}

// Sync pulls the connection's reviews from the platform and returns the
// aggregate counts of what the run did.
func (h *SyncHandler) Sync(c echo.Context) error {
	tenantID, ok := tenantIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid tenant ID in token")
	}

	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid sync input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid account ID")
	}

	summary, err := h.uc.SyncReviews(c.Request().Context(), usecase.SyncInput{
		TenantID:  tenantID,
		AccountID: accountID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, summary, "Sync completed")
}
