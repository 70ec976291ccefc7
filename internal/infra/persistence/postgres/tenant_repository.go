package postgres

import (
	"context"

	"reviewhub/internal/domain/entity"
	"reviewhub/internal/domain/repository"
	"reviewhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// tenantRepository implements the domain.TenantRepository interface using GORM.
type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository is the constructor for tenantRepository.
// It returns the repository as a domain.TenantRepository interface, adhering to dependency inversion.
func NewTenantRepository(db *gorm.DB) repository.TenantRepository {
	return &tenantRepository{db: db}
}

// FindByID retrieves a single tenant by its unique ID.
func (repo *tenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	var tenantM model.TenantModel
	if err := repo.db.WithContext(ctx).First(&tenantM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTenantNotFound
		}

		return nil, errors.Wrap(err, "failed to find tenant by id")
	}

	return toTenantDomain(&tenantM), nil
}

// FindByEmail retrieves a single tenant by its login email.
func (repo *tenantRepository) FindByEmail(ctx context.Context, email string) (*entity.Tenant, error) {
	var tenantM model.TenantModel
	if err := repo.db.WithContext(ctx).First(&tenantM, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTenantNotFound
		}

		return nil, errors.Wrap(err, "failed to find tenant by email")
	}

	return toTenantDomain(&tenantM), nil
}

// UpdateDeviceToken replaces the tenant's registered push token.
func (repo *tenantRepository) UpdateDeviceToken(ctx context.Context, id uuid.UUID, deviceToken string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.TenantModel{}).
		Where("id = ?", id).
		Update("device_token", deviceToken)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update device token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTenantNotFound
	}

	return nil
}

// toTenantDomain converts a GORM TenantModel to a domain Tenant entity.
func toTenantDomain(data *model.TenantModel) *entity.Tenant {
	if data == nil {
		return nil
	}

	return &entity.Tenant{
		ID:           data.ID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		DeviceToken:  data.DeviceToken,
		CreatedAt:    data.CreatedAt,
	}
}
