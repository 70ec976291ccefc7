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

// reviewRepository implements the domain.ReviewRepository interface using GORM.
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository is the constructor for reviewRepository.
func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

// CreateReview persists a newly ingested review.
func (repo *reviewRepository) CreateReview(ctx context.Context, review *entity.Review) error {
	reviewM := fromReviewDomain(review)

	if err := repo.db.WithContext(ctx).Create(reviewM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrReviewAlreadyExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create review")
	}

	review.ID = reviewM.ID
	review.UpdatedAt = reviewM.UpdatedAt

	return nil
}

// UpdateSourceFields overwrites only the fields owned by the external source.
// A map keeps zero ratings writable.
func (repo *reviewRepository) UpdateSourceFields(ctx context.Context, review *entity.Review) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ReviewModel{}).
		Where("id = ?", review.ID).
		Updates(map[string]any{
			"rating":        review.Rating,
			"text":          review.Text,
			"reviewer_name": review.ReviewerName,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update review source fields")
	}
	if result.RowsAffected == 0 {
		return repository.ErrReviewNotFound
	}

	return nil
}

// FindReviewByID retrieves a review by its unique ID.
func (repo *reviewRepository) FindReviewByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	var reviewM model.ReviewModel
	if err := repo.db.WithContext(ctx).First(&reviewM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReviewNotFound
		}

		return nil, errors.Wrap(err, "failed to find review by id")
	}

	return toReviewDomain(&reviewM), nil
}

// FindReviewByExternalID matches a review by its platform identity scoped to a tenant.
func (repo *reviewRepository) FindReviewByExternalID(ctx context.Context, tenantID uuid.UUID, source entity.ProviderType, externalID string) (*entity.Review, error) {
	var reviewM model.ReviewModel
	err := repo.db.WithContext(ctx).
		First(&reviewM, "tenant_id = ? AND source = ? AND external_id = ?",
			tenantID, string(source), externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReviewNotFound
		}

		return nil, errors.Wrap(err, "failed to find review by external id")
	}

	return toReviewDomain(&reviewM), nil
}

// FindReviewsByTenantID lists a tenant's reviews, newest first.
func (repo *reviewRepository) FindReviewsByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*entity.Review, error) {
	var reviewMs []model.ReviewModel
	err := repo.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&reviewMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find reviews by tenant")
	}

	reviews := make([]*entity.Review, 0, len(reviewMs))
	for i := range reviewMs {
		reviews = append(reviews, toReviewDomain(&reviewMs[i]))
	}

	return reviews, nil
}

// IncrementGenerationCount bumps the per-review generation counter in place.
func (repo *reviewRepository) IncrementGenerationCount(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ReviewModel{}).
		Where("id = ?", id).
		UpdateColumn("generation_count", gorm.Expr("generation_count + 1"))
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to increment generation count")
	}
	if result.RowsAffected == 0 {
		return repository.ErrReviewNotFound
	}

	return nil
}

// toReviewDomain converts a GORM ReviewModel to a domain entity.
func toReviewDomain(data *model.ReviewModel) *entity.Review {
	if data == nil {
		return nil
	}

	return &entity.Review{
		ID:              data.ID,
		TenantID:        data.TenantID,
		AccountID:       data.AccountID,
		Source:          entity.ProviderType(data.Source),
		ExternalID:      data.ExternalID,
		Rating:          data.Rating,
		Text:            data.Text,
		ReviewerName:    data.ReviewerName,
		GenerationCount: data.GenerationCount,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromReviewDomain converts a domain entity to a GORM ReviewModel.
func fromReviewDomain(data *entity.Review) *model.ReviewModel {
	if data == nil {
		return nil
	}

	return &model.ReviewModel{
		ID:              data.ID,
		TenantID:        data.TenantID,
		AccountID:       data.AccountID,
		Source:          string(data.Source),
		ExternalID:      data.ExternalID,
		Rating:          data.Rating,
		Text:            data.Text,
		ReviewerName:    data.ReviewerName,
		GenerationCount: data.GenerationCount,
		CreatedAt:       data.CreatedAt,
	}
}
