package source

import (
	"context"
	"fmt"

	"meeting_sync/internal/domain"
)

type CredentialStore interface {
	ListActive(ctx context.Context, platform domain.Platform) ([]domain.Credential, error)
}

// CredentialResolver picks the API credential a run uses. Org unit
// credentials win over the organizer's own, which win over fallbacks.
type CredentialResolver struct {
	store CredentialStore
}

func NewCredentialResolver(store CredentialStore) *CredentialResolver {
	return &CredentialResolver{store: store}
}

func (r *CredentialResolver) Resolve(ctx context.Context, platform domain.Platform, orgUnitID, ownerID int64) (*domain.Credential, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("resolve credential for %q: %w", platform, domain.ErrUnsupportedPlatform)
	}

	creds, err := r.store.ListActive(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	matchers := []func(c *domain.Credential) bool{
		func(c *domain.Credential) bool {
			return c.Scope == domain.ScopeOrgUnit && c.OrgUnitID != nil && *c.OrgUnitID == orgUnitID
		},
		func(c *domain.Credential) bool {
			return c.Scope == domain.ScopeIndividual && c.OwnerUserID != nil && *c.OwnerUserID == ownerID
		},
		func(c *domain.Credential) bool {
			return c.Scope == domain.ScopeFallback
		},
	}
	for _, match := range matchers {
		for i := range creds {
			if match(&creds[i]) {
				c := creds[i]
				return &c, nil
			}
		}
	}

	return nil, fmt.Errorf("%s credential for org unit %d: %w", platform, orgUnitID, domain.ErrNoCredential)
}
