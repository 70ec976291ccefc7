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

// quotaRepository implements the domain.QuotaRepository interface using GORM.
type quotaRepository struct {
	db *gorm.DB
}

// NewQuotaRepository is the constructor for quotaRepository.
func NewQuotaRepository(db *gorm.DB) repository.QuotaRepository {
	return &quotaRepository{db: db}
}

// FindQuota retrieves the tenant's counter for the given day. A missing row
// or a row from an earlier day both read as a zero counter; the stored row
// itself is only rewritten by IncrementDaily.
func (repo *quotaRepository) FindQuota(ctx context.Context, tenantID uuid.UUID, day string) (*entity.GenerationQuota, error) {
	var quotaM model.GenerationQuotaModel
	if err := repo.db.WithContext(ctx).First(&quotaM, "tenant_id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.GenerationQuota{TenantID: tenantID, Day: day}, nil
		}

		return nil, errors.Wrap(err, "failed to find generation quota")
	}

	if quotaM.Day != day {
		return &entity.GenerationQuota{TenantID: tenantID, Day: day}, nil
	}

	return &entity.GenerationQuota{
		TenantID: quotaM.TenantID,
		Day:      quotaM.Day,
		Count:    quotaM.Count,
	}, nil
}

// IncrementDaily atomically bumps the tenant's counter for the given day.
// The single upsert rolls a stale row over to the new day and restarts the
// count at 1, so concurrent increments can never resurrect yesterday's total.
func (repo *quotaRepository) IncrementDaily(ctx context.Context, tenantID uuid.UUID, day string) (int, error) {
	var count int
	err := repo.db.WithContext(ctx).Raw(`
		INSERT INTO generation_quotas (tenant_id, day, count, updated_at)
		VALUES (?, ?, 1, NOW())
		ON CONFLICT (tenant_id) DO UPDATE SET
			count = CASE
				WHEN generation_quotas.day = EXCLUDED.day THEN generation_quotas.count + 1
				ELSE 1
			END,
			day = EXCLUDED.day,
			updated_at = NOW()
		RETURNING count`,
		tenantID, day,
	).Scan(&count).Error
	if err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to increment generation quota")
	}

	return count, nil
}
