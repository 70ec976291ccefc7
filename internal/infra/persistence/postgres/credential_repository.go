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
	"gorm.io/gorm/clause"
)

// credentialRepository implements the domain.CredentialRepository interface using GORM.
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository is the constructor for credentialRepository.
func NewCredentialRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

// UpsertCredential creates or replaces the credential pair of an account.
// The conflict target is the account: one pair per connection, and the
// access token never lands without its expiry.
func (repo *credentialRepository) UpsertCredential(ctx context.Context, credential *entity.Credential) error {
	credentialM := fromCredentialDomain(credential)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "scope", "expires_at", "updated_at",
			}),
		}).
		Create(credentialM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert credential")
	}

	credential.ID = credentialM.ID
	credential.UpdatedAt = credentialM.UpdatedAt

	return nil
}

// FindCredentialByAccountID retrieves the stored pair for an account.
func (repo *credentialRepository) FindCredentialByAccountID(ctx context.Context, accountID uuid.UUID) (*entity.Credential, error) {
	var credentialM model.CredentialModel
	if err := repo.db.WithContext(ctx).First(&credentialM, "account_id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, errors.Wrap(err, "failed to find credential by account id")
	}

	return toCredentialDomain(&credentialM), nil
}

// DeleteCredentialByAccountID removes the stored pair for an account.
func (repo *credentialRepository) DeleteCredentialByAccountID(ctx context.Context, accountID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&model.CredentialModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete credential by account id")
	}

	return nil
}

// toCredentialDomain converts a GORM CredentialModel to a domain entity.
func toCredentialDomain(data *model.CredentialModel) *entity.Credential {
	if data == nil {
		return nil
	}

	return &entity.Credential{
		ID:           data.ID,
		AccountID:    data.AccountID,
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		Scope:        data.Scope,
		ExpiresAt:    data.ExpiresAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromCredentialDomain converts a domain entity to a GORM CredentialModel.
func fromCredentialDomain(data *entity.Credential) *model.CredentialModel {
	if data == nil {
		return nil
	}

	return &model.CredentialModel{
		ID:           data.ID,
		AccountID:    data.AccountID,
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		Scope:        data.Scope,
		ExpiresAt:    data.ExpiresAt,
	}
}
