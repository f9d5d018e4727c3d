package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"disk-backup/internal/domain"
)

var (
	// ErrNoCredential means no remote call was attempted because the token is absent.
	ErrNoCredential = errors.New("remote credential is not configured")
	// ErrProtocol marks a successful response whose body lacks the expected fields.
	ErrProtocol = errors.New("remote protocol violation")
)

// StatusError carries a non-success status answered by the remote service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote answered %d %s", e.Code, http.StatusText(e.Code))
}

// Service is a remote backup folder.
type Service interface {
	// ListFiles enumerates the backup folder. It never fails: problems are
	// reported through a degraded inventory holding what was collected so far.
	ListFiles(ctx context.Context) domain.Inventory
	// RequestUpload negotiates a short-lived, pre-authorized upload href for
	// name inside the backup folder.
	RequestUpload(ctx context.Context, name string) (string, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}

// Transferer streams file bytes to a negotiated href.
type Transferer interface {
	Transfer(ctx context.Context, href string, body io.Reader, size int64) (int, error)
}
