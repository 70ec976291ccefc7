package postgres

import (
	"context"

	"reviewhub/internal/domain/entity"
	domainerrors "reviewhub/internal/domain/errors"
	"reviewhub/internal/domain/repository"
	"reviewhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// replyRepository implements the domain.ReplyRepository interface using GORM.
type replyRepository struct {
	db *gorm.DB
}

// NewReplyRepository is the constructor for replyRepository.
func NewReplyRepository(db *gorm.DB) repository.ReplyRepository {
	return &replyRepository{db: db}
}

// CreateReply persists a new reply draft for a review.
func (repo *replyRepository) CreateReply(ctx context.Context, reply *entity.Reply) error {
	replyM := fromReplyDomain(reply)

	if err := repo.db.WithContext(ctx).Create(replyM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("review already has a reply")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create reply")
	}

	reply.ID = replyM.ID
	reply.UpdatedAt = replyM.UpdatedAt

	return nil
}

// FindReplyByReviewID retrieves the reply attached to a review.
func (repo *replyRepository) FindReplyByReviewID(ctx context.Context, reviewID uuid.UUID) (*entity.Reply, error) {
	var replyM model.ReplyModel
	if err := repo.db.WithContext(ctx).First(&replyM, "review_id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReplyNotFound
		}

		return nil, errors.Wrap(err, "failed to find reply by review id")
	}

	return toReplyDomain(&replyM), nil
}

// UpdateReply persists text and status changes of an existing reply.
func (repo *replyRepository) UpdateReply(ctx context.Context, reply *entity.Reply) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ReplyModel{}).
		Where("id = ?", reply.ID).
		Updates(map[string]any{
			"text":      reply.Text,
			"status":    string(reply.Status),
			"posted_at": reply.PostedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update reply")
	}
	if result.RowsAffected == 0 {
		return repository.ErrReplyNotFound
	}

	return nil
}

// toReplyDomain converts a GORM ReplyModel to a domain entity.
func toReplyDomain(data *model.ReplyModel) *entity.Reply {
	if data == nil {
		return nil
	}

	return &entity.Reply{
		ID:        data.ID,
		ReviewID:  data.ReviewID,
		TenantID:  data.TenantID,
		Text:      data.Text,
		Status:    entity.ReplyStatus(data.Status),
		UpdatedAt: data.UpdatedAt,
		PostedAt:  data.PostedAt,
	}
}

// fromReplyDomain converts a domain entity to a GORM ReplyModel.
func fromReplyDomain(data *entity.Reply) *model.ReplyModel {
	if data == nil {
		return nil
	}

	return &model.ReplyModel{
		ID:       data.ID,
		ReviewID: data.ReviewID,
		TenantID: data.TenantID,
		Text:     data.Text,
		Status:   string(data.Status),
		PostedAt: data.PostedAt,
	}
}
