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

// accountRepository implements the domain.AccountRepository interface using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// CreateAccount persists a new external account connection.
func (repo *accountRepository) CreateAccount(ctx context.Context, account *entity.ExternalAccount) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("account is already connected")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create external account")
	}

	account.ID = accountM.ID
	account.CreatedAt = accountM.CreatedAt

	return nil
}

// FindAccountByID retrieves a connection by its unique ID.
func (repo *accountRepository) FindAccountByID(ctx context.Context, id uuid.UUID) (*entity.ExternalAccount, error) {
	var accountM model.ExternalAccountModel
	if err := repo.db.WithContext(ctx).First(&accountM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find external account by id")
	}

	return toAccountDomain(&accountM), nil
}

// FindAccountByProviderID retrieves a tenant's connection for a given platform account.
func (repo *accountRepository) FindAccountByProviderID(ctx context.Context, tenantID uuid.UUID, provider entity.ProviderType, providerAccountID string) (*entity.ExternalAccount, error) {
	var accountM model.ExternalAccountModel
	err := repo.db.WithContext(ctx).
		First(&accountM, "tenant_id = ? AND provider = ? AND provider_account_id = ?",
			tenantID, string(provider), providerAccountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find external account by provider identity")
	}

	return toAccountDomain(&accountM), nil
}

// FindAccountsByTenantID retrieves all connections for a tenant.
func (repo *accountRepository) FindAccountsByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*entity.ExternalAccount, error) {
	var accountMs []model.ExternalAccountModel
	err := repo.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&accountMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find external accounts by tenant")
	}

	accounts := make([]*entity.ExternalAccount, 0, len(accountMs))
	for i := range accountMs {
		accounts = append(accounts, toAccountDomain(&accountMs[i]))
	}

	return accounts, nil
}

// toAccountDomain converts a GORM ExternalAccountModel to a domain entity.
func toAccountDomain(data *model.ExternalAccountModel) *entity.ExternalAccount {
	if data == nil {
		return nil
	}

	return &entity.ExternalAccount{
		ID:                data.ID,
		TenantID:          data.TenantID,
		Provider:          entity.ProviderType(data.Provider),
		ProviderAccountID: data.ProviderAccountID,
		Email:             data.Email,
		CreatedAt:         data.CreatedAt,
	}
}

// fromAccountDomain converts a domain entity to a GORM ExternalAccountModel.
func fromAccountDomain(data *entity.ExternalAccount) *model.ExternalAccountModel {
	if data == nil {
		return nil
	}

	return &model.ExternalAccountModel{
		ID:                data.ID,
		TenantID:          data.TenantID,
		Provider:          string(data.Provider),
		ProviderAccountID: data.ProviderAccountID,
		Email:             data.Email,
	}
}
