package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/postway/postway/internal/domain"
)

const attemptColumns = "id, method, url, month, day, year, time, created_at, is_favorite"

// InsertAttempt persists a new attempt and returns its assigned id.
func (s *Store) InsertAttempt(ctx context.Context, a *domain.Attempt) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (method, url, month, day, year, time, created_at, is_favorite)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(a.Method), a.URL, a.Month, a.Day, a.Year, a.Time,
		a.CreatedAt.UTC().Format(time.RFC3339Nano), a.IsFavorite,
	)
	if err != nil {
		return 0, &domain.StorageError{Op: "insert attempt", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &domain.StorageError{Op: "insert attempt", Err: err}
	}
	return id, nil
}

// ListAttempts returns a recency-descending window of attempts.
// Colliding timestamps surface the later-assigned id first.
func (s *Store) ListAttempts(ctx context.Context, limit, offset int) ([]domain.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attemptColumns+`
		FROM attempts
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, &domain.StorageError{Op: "list attempts", Err: err}
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// CountAttempts returns the full unfiltered row count.
func (s *Store) CountAttempts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts`).Scan(&count); err != nil {
		return 0, &domain.StorageError{Op: "count attempts", Err: err}
	}
	return count, nil
}

// FindAttempt returns the attempt with the given id, or nil when absent.
func (s *Store) FindAttempt(ctx context.Context, id int64) (*domain.Attempt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+attemptColumns+`
		FROM attempts
		WHERE id = ?`, id)

	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "find attempt", Err: err}
	}
	return a, nil
}

// SetFavorite updates the favorite flag; reports whether a row matched.
func (s *Store) SetFavorite(ctx context.Context, id int64, favorite bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE attempts SET is_favorite = ? WHERE id = ?`, favorite, id)
	if err != nil {
		return false, &domain.StorageError{Op: "set favorite", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &domain.StorageError{Op: "set favorite", Err: err}
	}
	return n > 0, nil
}

// DeleteAttempt removes one attempt; reports whether a row matched.
func (s *Store) DeleteAttempt(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE id = ?`, id)
	if err != nil {
		return false, &domain.StorageError{Op: "delete attempt", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &domain.StorageError{Op: "delete attempt", Err: err}
	}
	return n > 0, nil
}

// ClearAttempts removes every attempt and returns the number removed.
func (s *Store) ClearAttempts(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts`)
	if err != nil {
		return 0, &domain.StorageError{Op: "clear attempts", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &domain.StorageError{Op: "clear attempts", Err: err}
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*domain.Attempt, error) {
	var a domain.Attempt
	var method, createdAt string
	err := row.Scan(&a.ID, &method, &a.URL, &a.Month, &a.Day, &a.Year, &a.Time,
		&createdAt, &a.IsFavorite)
	if err != nil {
		return nil, err
	}
	a.Method = domain.Method(method)
	a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAttempts(rows *sql.Rows) ([]domain.Attempt, error) {
	attempts := []domain.Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan attempt row", Err: err}
		}
		attempts = append(attempts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "scan attempt rows", Err: err}
	}
	return attempts, nil
}
