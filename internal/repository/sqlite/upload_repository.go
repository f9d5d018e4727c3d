package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"disk-backup/internal/domain"
	"disk-backup/internal/repository"
)

const createUploadsTable = `
CREATE TABLE IF NOT EXISTS uploads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	phase TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_uploads_filename ON uploads(filename);
`

const defaultListLimit = 50

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) repository.UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUploadsTable); err != nil {
		return fmt.Errorf("create uploads table: %w", err)
	}
	return nil
}

func (r *UploadRepository) Create(ctx context.Context, record *domain.UploadRecord) (int64, error) {
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = record.StartedAt
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO uploads (request_id, filename, status_code, phase, error, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.RequestID,
		record.Filename,
		record.StatusCode,
		string(record.Phase),
		record.Error,
		record.StartedAt.UTC(),
		record.FinishedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert upload: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("upload last insert id: %w", err)
	}
	record.ID = id
	return id, nil
}

func (r *UploadRepository) ListRecent(ctx context.Context, limit int) ([]domain.UploadRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, request_id, filename, status_code, phase, error, started_at, finished_at
FROM uploads
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	return scanUploads(rows)
}

func (r *UploadRepository) ListByFilename(ctx context.Context, filename string, limit int) ([]domain.UploadRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, request_id, filename, status_code, phase, error, started_at, finished_at
FROM uploads
WHERE filename = ?
ORDER BY id DESC
LIMIT ?`, filename, limit)
	if err != nil {
		return nil, fmt.Errorf("query uploads by filename: %w", err)
	}
	return scanUploads(rows)
}

func scanUploads(rows *sql.Rows) ([]domain.UploadRecord, error) {
	defer rows.Close()

	records := []domain.UploadRecord{}
	for rows.Next() {
		var (
			record domain.UploadRecord
			phase  string
		)
		if err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.Filename,
			&record.StatusCode,
			&phase,
			&record.Error,
			&record.StartedAt,
			&record.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		record.Phase = domain.UploadPhase(phase)
		records = append(records, record)
	}
	return records, rows.Err()
}
