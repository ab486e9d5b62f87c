package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type PostgresLinkStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresLinkStorage(pool *pgxpool.Pool) *PostgresLinkStorage {
	return &PostgresLinkStorage{pool: pool}
}

const linkColumns = `id, original_url, slug, visit_count, user_id, created_at, updated_at`

func scanLink(row pgx.Row) (*Link, error) {
	var link Link
	err := row.Scan(&link.ID, &link.OriginalURL, &link.Slug, &link.VisitCount, &link.UserID, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (s *PostgresLinkStorage) Create(ctx context.Context, link *Link) error {
	query := `INSERT INTO links (id, original_url, slug, visit_count, user_id) VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	row := s.pool.QueryRow(ctx, query, link.ID, link.OriginalURL, link.Slug, link.VisitCount, link.UserID)
	return row.Scan(&link.CreatedAt, &link.UpdatedAt)
}

func (s *PostgresLinkStorage) GetBySlug(ctx context.Context, slug string) (*Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE slug = $1`
	return scanLink(s.pool.QueryRow(ctx, query, slug))
}

func (s *PostgresLinkStorage) GetByID(ctx context.Context, id uuid.UUID) (*Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`
	return scanLink(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresLinkStorage) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.ID, &link.OriginalURL, &link.Slug, &link.VisitCount, &link.UserID, &link.CreatedAt, &link.UpdatedAt); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

func (s *PostgresLinkStorage) Update(ctx context.Context, link *Link) error {
	query := `UPDATE links SET original_url = $2, slug = $3, user_id = $4, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	row := s.pool.QueryRow(ctx, query, link.ID, link.OriginalURL, link.Slug, link.UserID)
	return row.Scan(&link.UpdatedAt)
}

func (s *PostgresLinkStorage) ResolveAndCount(ctx context.Context, slug string) (*Link, error) {
	query := `UPDATE links SET visit_count = visit_count + 1, updated_at = NOW() WHERE slug = $1 RETURNING ` + linkColumns
	return scanLink(s.pool.QueryRow(ctx, query, slug))
}

func (s *PostgresLinkStorage) IncrementVisits(ctx context.Context, slug string) error {
	query := `UPDATE links SET visit_count = visit_count + 1, updated_at = NOW() WHERE slug = $1`
	_, err := s.pool.Exec(ctx, query, slug)
	return err
}

type PostgresUserStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStorage(pool *pgxpool.Pool) *PostgresUserStorage {
	return &PostgresUserStorage{pool: pool}
}

func (s *PostgresUserStorage) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	row := s.pool.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash)
	return row.Scan(&user.CreatedAt, &user.UpdatedAt)
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresUserStorage) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE email = $1`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

func (s *PostgresUserStorage) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}
