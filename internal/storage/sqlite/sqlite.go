package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blog-console/internal/domain/models"
	"blog-console/internal/storage"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"

	if err := os.MkdirAll(filepath.Dir(storagePath), 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stmt, err := db.Prepare(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			role TEXT NOT NULL,
			username TEXT NOT NULL,
			expires_at DATETIME NOT NULL
		);
`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) SaveSession(ctx context.Context, id string, cred models.Credential, ttl time.Duration) error {
	const op = "storage.sqlite.SaveSession"

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO sessions (id, token, role, username, expires_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			role = excluded.role,
			username = excluded.username,
			expires_at = excluded.expires_at`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, id, cred.Token, cred.Role, cred.Username, time.Now().Add(ttl).UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Session(ctx context.Context, id string) (models.Credential, error) {
	const op = "storage.sqlite.Session"

	stmt, err := s.db.PrepareContext(ctx, `SELECT token, role, username, expires_at FROM sessions WHERE id = ?`)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	var (
		cred      models.Credential
		expiresAt time.Time
	)

	err = stmt.QueryRowContext(ctx, id).Scan(&cred.Token, &cred.Role, &cred.Username, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credential{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
		}
		return models.Credential{}, fmt.Errorf("%s: %w", op, err)
	}

	if !expiresAt.After(time.Now()) {
		return models.Credential{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
	}

	return cred, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	const op = "storage.sqlite.DeleteSession"

	stmt, err := s.db.PrepareContext(ctx, `DELETE FROM sessions WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteExpired removes sessions that expired before now and returns how
// many were removed.
func (s *Storage) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.sqlite.DeleteExpired"

	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
