package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prodline/internal/model"
)

const userListLimit = 5000

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) CountAll(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// GetByUsername returns the user and its password hash for an exact,
// case-sensitive username match.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, string, error) {
	var (
		u    model.User
		hash string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, station, operator, role, is_active
		 FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &hash, &u.Station, &u.Operator, &u.Role, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("get user by username: %w", err)
	}
	return &u, hash, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, station, operator, role, is_active
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Station, &u.Operator, &u.Role, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

// List returns all users newest-first. The password hash is never selected.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, station, operator, role, is_active
		 FROM users ORDER BY id DESC LIMIT $1`,
		userListLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Station, &u.Operator, &u.Role, &u.IsActive); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) Create(ctx context.Context, username, passwordHash, station, operator string, role model.Role) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, station, operator, role, is_active)
		 VALUES ($1, $2, $3, $4, $5, 1) RETURNING id`,
		username, passwordHash, station, operator, string(role),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// UserUpdate is a sparse update: only non-nil fields are written.
type UserUpdate struct {
	Station  *string
	Operator *string
	Role     *model.Role
	IsActive *int
}

// Empty reports whether no updatable field is supplied.
func (u UserUpdate) Empty() bool {
	return u.Station == nil && u.Operator == nil && u.Role == nil && u.IsActive == nil
}

// Update applies the supplied fields to a single user row. The SET clause is
// assembled from present-only fields with positional parameter binding.
func (s *UserStore) Update(ctx context.Context, id int64, upd UserUpdate) error {
	if upd.Empty() {
		return fmt.Errorf("update user: no fields supplied")
	}

	set := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Station != nil {
		add("station", *upd.Station)
	}
	if upd.Operator != nil {
		add("operator", *upd.Operator)
	}
	if upd.Role != nil {
		add("role", string(*upd.Role))
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
