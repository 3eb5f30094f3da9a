package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"meeting_sync/internal/domain"
)

const userColumns = `id, username, email, first_name, last_name, role, org_unit_id, is_active`

// UserStore is the read side of the user directory used for identity matching.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *domain.User) (int64, error) {
	if u.Role == "" {
		u.Role = domain.RoleLearner
	}
	query := `
		INSERT INTO users (username, email, first_name, last_name, role, org_unit_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &u.ID, query,
		u.Username, u.Email, u.FirstName, u.LastName, u.Role, u.OrgUnitID, u.IsActive)
	if err != nil {
		return 0, classify("create user", err)
	}
	return u.ID, nil
}

// UserByID returns nil without an error when the user does not exist.
func (s *UserStore) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get user", err)
	}
	return &u, nil
}

func (s *UserStore) UsersByOrgUnit(ctx context.Context, orgUnitID int64) ([]domain.User, error) {
	var users []domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE org_unit_id = $1 ORDER BY id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &users, query, orgUnitID); err != nil {
		return nil, classify("list users by org unit", err)
	}
	return users, nil
}

func (s *UserStore) UsersByEmail(ctx context.Context, email string) ([]domain.User, error) {
	var users []domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) ORDER BY id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &users, query, email); err != nil {
		return nil, classify("list users by email", err)
	}
	return users, nil
}
