package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"meeting_sync/internal/domain"
)

type CredentialStore struct {
	db *sqlx.DB
}

func NewCredentialStore(db *sqlx.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) Create(ctx context.Context, c *domain.Credential) (int64, error) {
	query := `
		INSERT INTO platform_credentials (platform, scope, org_unit_id, owner_user_id, client_id, client_secret,
			account_id, tenant_id, service_account_email, is_active, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &c.ID, query,
		c.Platform,
		c.Scope,
		c.OrgUnitID,
		c.OwnerUserID,
		c.ClientID,
		c.ClientSecret,
		c.AccountID,
		c.TenantID,
		c.ServiceAccountEmail,
		c.IsActive,
		c.Priority,
	)
	if err != nil {
		return 0, classify("create credential", err)
	}
	return c.ID, nil
}

// ListActive returns the active credentials of a platform, lowest priority
// value first.
func (s *CredentialStore) ListActive(ctx context.Context, platform domain.Platform) ([]domain.Credential, error) {
	var creds []domain.Credential
	query := `
		SELECT id, platform, scope, org_unit_id, owner_user_id, client_id, client_secret,
			account_id, tenant_id, service_account_email, is_active, priority
		FROM platform_credentials
		WHERE platform = $1 AND is_active
		ORDER BY priority, id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &creds, query, platform); err != nil {
		return nil, classify("list credentials", err)
	}
	return creds, nil
}
