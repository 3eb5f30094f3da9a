package memory

import (
	"context"
	"sort"
	"strings"

	"meeting_sync/internal/domain"
)

type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Add stores u, keeping its ID when set.
func (s *UserStore) Add(u domain.User) int64 {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if u.ID == 0 {
		u.ID = s.db.id()
	} else if u.ID > s.db.nextID {
		s.db.nextID = u.ID
	}
	s.db.users[u.ID] = u
	return u.ID
}

func (s *UserStore) UserByID(_ context.Context, id int64) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStore) UsersByOrgUnit(_ context.Context, orgUnitID int64) ([]domain.User, error) {
	return s.filter(func(u domain.User) bool { return u.OrgUnitID == orgUnitID }), nil
}

func (s *UserStore) UsersByEmail(_ context.Context, email string) ([]domain.User, error) {
	return s.filter(func(u domain.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (s *UserStore) filter(keep func(domain.User) bool) []domain.User {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.User
	for _, u := range s.db.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type CredentialStore struct {
	db *DB
}

func NewCredentialStore(db *DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) Add(c domain.Credential) int64 {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c.ID = s.db.id()
	s.db.credentials[c.ID] = c
	return c.ID
}

func (s *CredentialStore) ListActive(_ context.Context, platform domain.Platform) ([]domain.Credential, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []domain.Credential
	for _, c := range s.db.credentials {
		if c.IsActive && c.Platform == platform {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
