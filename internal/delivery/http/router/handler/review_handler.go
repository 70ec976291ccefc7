package handler

import (
	"log/slog"
	"net/http"
	"time"

	"reviewhub/internal/delivery/http/response"
	"reviewhub/internal/domain/entity"
	"reviewhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ReviewHandler serves the synced reviews and the reply workflow.
type ReviewHandler struct {
	reviewUC usecase.ReviewUsecase
	replyUC  usecase.ReplyUsecase
	logger   *slog.Logger
}

// NewReviewHandler is the constructor for ReviewHandler, injected by Fx.
func NewReviewHandler(reviewUC usecase.ReviewUsecase, replyUC usecase.ReplyUsecase, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviewUC: reviewUC, replyUC: replyUC, logger: logger}
}

type replyResponse struct {
	Text     string     `json:"text"`
	Status   string     `json:"status"`
	PostedAt *time.Time `json:"posted_at,omitempty"`
}

type reviewResponse struct {
	ID           string         `json:"id"`
	Source       string         `json:"source"`
	Rating       int            `json:"rating"`
	Text         string         `json:"text"`
	ReviewerName string         `json:"reviewer_name"`
	CreatedAt    time.Time      `json:"created_at"`
	Reply        *replyResponse `json:"reply,omitempty"`
}

func toReviewResponse(review *entity.Review, reply *entity.Reply) reviewResponse {
	resp := reviewResponse{
		ID:           review.ID.String(),
		Source:       string(review.Source),
		Rating:       review.Rating,
		Text:         review.Text,
		ReviewerName: review.ReviewerName,
		CreatedAt:    review.CreatedAt,
	}
	if reply != nil {
		resp.Reply = &replyResponse{
			Text:     reply.Text,
			Status:   string(reply.Status),
			PostedAt: reply.PostedAt,
		}
	}

	return resp
}

// List returns the tenant's reviews, newest first, each with its reply.
func (h *ReviewHandler) List(c echo.Context) error {
	tenantID, ok := tenantIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid tenant ID in token")
	}

	reviews, err := h.reviewUC.ListReviews(c.Request().Context(), tenantID)
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]reviewResponse, 0, len(reviews))
	for _, item := range reviews {
		items = append(items, toReviewResponse(item.Review, item.Reply))
	}

	return response.Success(c, http.StatusOK, items, "Reviews retrieved")
}

// GenerateReply produces a quota-gated AI draft for the review.
func (h *ReviewHandler) GenerateReply(c echo.Context) error {
	tenantID, reviewID, err := h.pathIdentity(c)
	if err != nil {
		return err
	}

	reply, err := h.replyUC.GenerateReply(c.Request().Context(), tenantID, reviewID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, replyResponse{
		Text:   reply.Text,
		Status: string(reply.Status),
	}, "Reply draft generated")
}

type editReplyRequest struct {
	Text string `json:"text" validate:"required"`
}

// EditReply replaces the reply text. The edit forces the status back to
// draft; a posted reply rejects the edit.
func (h *ReviewHandler) EditReply(c echo.Context) error {
	tenantID, reviewID, err := h.pathIdentity(c)
	if err != nil {
		return err
	}

	var req editReplyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reply input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	reply, err := h.replyUC.EditReply(c.Request().Context(), usecase.EditReplyInput{
		TenantID: tenantID,
		ReviewID: reviewID,
		Text:     req.Text,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, replyResponse{
		Text:   reply.Text,
		Status: string(reply.Status),
	}, "Reply updated")
}

// ApproveReply signs off a draft for publication.
func (h *ReviewHandler) ApproveReply(c echo.Context) error {
	tenantID, reviewID, err := h.pathIdentity(c)
	if err != nil {
		return err
	}

	reply, err := h.replyUC.ApproveReply(c.Request().Context(), tenantID, reviewID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, replyResponse{
		Text:   reply.Text,
		Status: string(reply.Status),
	}, "Reply approved")
}

// PostReply publishes an approved reply to the platform.
func (h *ReviewHandler) PostReply(c echo.Context) error {
	tenantID, reviewID, err := h.pathIdentity(c)
	if err != nil {
		return err
	}

	reply, err := h.replyUC.PostReply(c.Request().Context(), tenantID, reviewID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, replyResponse{
		Text:     reply.Text,
		Status:   string(reply.Status),
		PostedAt: reply.PostedAt,
	}, "Reply posted")
}

// pathIdentity resolves the tenant from the token and the review from the path.
func (h *ReviewHandler) pathIdentity(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	tenantID, ok := tenantIDFromContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid tenant ID in token")
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid review ID")
	}

	return tenantID, reviewID, nil
}
