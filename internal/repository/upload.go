package repository

import (
	"context"

	"disk-backup/internal/domain"
)

// UploadRepository is an append-only journal of finished upload attempts.
// It is never consulted to skip or retry an upload.
type UploadRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, record *domain.UploadRecord) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]domain.UploadRecord, error)
	ListByFilename(ctx context.Context, filename string, limit int) ([]domain.UploadRecord, error)
}
