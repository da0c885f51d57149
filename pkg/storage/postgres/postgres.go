// Package postgres provides a PostgreSQL user store.
// It uses pgx/v5 for connection pooling.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/auth"
	"github.com/inventorymaster/storefront/pkg/storage"
	"github.com/inventorymaster/storefront/pkg/users"
)

// Store is a PostgreSQL-backed user store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements the store contracts at compile time.
var (
	_ users.Store         = (*Store)(nil)
	_ auth.PrincipalStore = (*Store)(nil)
)

// userColumns lists the profile columns; password_hash is selected only by
// the credential queries.
const userColumns = `id, name, email, photo, phone, bio, role, created_at, updated_at`

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	slog.Info("database connected", "max_conns", cfg.MaxConns)
	return s, nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user *api.User, passwordHash string) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, photo, phone, bio, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`,
		user.ID, user.Name, user.Email, passwordHash,
		user.Photo, user.Phone, user.Bio, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// FindUserByID retrieves a user without its password hash.
func (s *Store) FindUserByID(ctx context.Context, id string) (*api.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// GetCredentialsByEmail returns the user and password hash for login.
// Email matching is case-insensitive.
func (s *Store) GetCredentialsByEmail(ctx context.Context, email string) (*storage.Credentials, error) {
	return s.getCredentials(ctx, `lower(email) = lower($1)`, email)
}

// GetCredentialsByID returns the user and password hash by ID.
func (s *Store) GetCredentialsByID(ctx context.Context, id string) (*storage.Credentials, error) {
	return s.getCredentials(ctx, `id = $1`, id)
}

func (s *Store) getCredentials(ctx context.Context, where string, arg string) (*storage.Credentials, error) {
	var (
		u    api.User
		hash string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE `+where, arg,
	).Scan(
		&u.ID, &u.Name, &u.Email, &u.Photo, &u.Phone, &u.Bio, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &hash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying credentials: %w", err)
	}
	return &storage.Credentials{User: &u, PasswordHash: hash}, nil
}

// UpdateUser updates the profile fields and writes the stored row back to user.
func (s *Store) UpdateUser(ctx context.Context, user *api.User) error {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, phone = $3, bio = $4, photo = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.Name, user.Phone, user.Bio, user.Photo,
	)

	updated, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	*user = *updated
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanUser(row pgx.Row) (*api.User, error) {
	var u api.User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Photo, &u.Phone, &u.Bio, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
