package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/verifact"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

// Open connects with the pgx stdlib driver and pings once.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres stores accounts in the users table. Authorities are kept as a
// comma-separated list.
type Postgres struct {
	db  DBTX
	now func() time.Time
}

var _ verifact.UserStore = (*Postgres)(nil)

func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

func (r *Postgres) GetUserByEmail(ctx context.Context, email string) (verifact.UserRecord, error) {
	query :=
		`SELECT id, name, email, password_hash, enabled, email_verified, authorities, created_at
		 FROM users
		 WHERE email = $1`

	var (
		u           verifact.UserRecord
		authorities string
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Enabled, &u.EmailVerified, &authorities, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return verifact.UserRecord{}, verifact.ErrUserNotFound
		}
		return verifact.UserRecord{}, fmt.Errorf("db error: %w", err)
	}
	u.Authorities = splitAuthorities(authorities)
	return u, nil
}

func (r *Postgres) CreateUser(ctx context.Context, in verifact.CreateUserInput) (verifact.UserRecord, error) {
	query :=
		`INSERT INTO users (id, name, email, password_hash, enabled, email_verified, authorities, created_at)
		 VALUES ($1, $2, $3, $4, TRUE, FALSE, $5, $6)`

	u := verifact.UserRecord{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Enabled:      true,
		Authorities:  append([]string(nil), in.Authorities...),
		CreatedAt:    r.now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, strings.Join(u.Authorities, ","), u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return verifact.UserRecord{}, verifact.ErrAccountExists
		}
		return verifact.UserRecord{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *Postgres) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $1 WHERE email = $2`, passwordHash, email)
}

func (r *Postgres) MarkEmailVerified(ctx context.Context, email string) error {
	return r.execOne(ctx, `UPDATE users SET email_verified = TRUE WHERE email = $1`, email)
}

// SetEnabled enables or disables an account.
func (r *Postgres) SetEnabled(ctx context.Context, email string, enabled bool) error {
	return r.execOne(ctx, `UPDATE users SET enabled = $1 WHERE email = $2`, enabled, email)
}

func (r *Postgres) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return verifact.ErrUserNotFound
	}
	return nil
}

func splitAuthorities(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
