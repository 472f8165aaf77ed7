package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/postway/postway/internal/domain"
)

// InsertEndpoint persists a saved endpoint URL and returns its assigned id.
func (s *Store) InsertEndpoint(ctx context.Context, url string, createdAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO endpoints (url, created_at) VALUES (?, ?)`,
		url, createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, &domain.StorageError{Op: "insert endpoint", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &domain.StorageError{Op: "insert endpoint", Err: err}
	}
	return id, nil
}

// ListEndpoints returns every saved endpoint, most recent first.
func (s *Store) ListEndpoints(ctx context.Context) ([]domain.Endpoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, created_at
		FROM endpoints
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, &domain.StorageError{Op: "list endpoints", Err: err}
	}
	defer rows.Close()

	endpoints := []domain.Endpoint{}
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan endpoint row", Err: err}
		}
		endpoints = append(endpoints, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "scan endpoint rows", Err: err}
	}
	return endpoints, nil
}

// DeleteEndpoint removes one endpoint; reports whether a row matched.
func (s *Store) DeleteEndpoint(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM endpoints WHERE id = ?`, id)
	if err != nil {
		return false, &domain.StorageError{Op: "delete endpoint", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &domain.StorageError{Op: "delete endpoint", Err: err}
	}
	return n > 0, nil
}

func scanEndpoint(rows *sql.Rows) (*domain.Endpoint, error) {
	var e domain.Endpoint
	var createdAt string
	if err := rows.Scan(&e.ID, &e.URL, &createdAt); err != nil {
		return nil, err
	}
	var err error
	e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
