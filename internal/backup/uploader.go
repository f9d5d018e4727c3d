// Package backup holds the reconciliation and upload protocol between the
// local catalog and a remote backup folder.
package backup

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"disk-backup/internal/catalog"
	"disk-backup/internal/domain"
	"disk-backup/internal/storage"
)

// FileOpener resolves a local file name to an open file.
type FileOpener interface {
	Open(name string) (domain.LocalFile, error)
}

// Negotiator obtains a pre-authorized upload href for a file name.
type Negotiator interface {
	RequestUpload(ctx context.Context, name string) (string, error)
}

// Uploader runs the two-phase upload for one file: negotiate an href, then
// PUT the bytes to it. It keeps no state between calls.
type Uploader struct {
	files    FileOpener
	remote   Negotiator
	transfer storage.Transferer
	logger   *logrus.Logger
}

func NewUploader(files FileOpener, remote Negotiator, transfer storage.Transferer, logger *logrus.Logger) *Uploader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Uploader{
		files:    files,
		remote:   remote,
		transfer: transfer,
		logger:   logger,
	}
}

// Upload never returns an error; every failure is folded into the result's
// status code. The local file is checked before any remote call so a missing
// file never reserves an upload slot.
func (u *Uploader) Upload(ctx context.Context, req domain.UploadRequest) domain.UploadResult {
	res := domain.UploadResult{
		RequestID: uuid.NewString(),
		Filename:  req.Filename,
		StartedAt: time.Now().UTC(),
	}
	logger := u.logger.WithFields(logrus.Fields{
		"request_id": res.RequestID,
		"file":       req.Filename,
	})

	file, err := u.files.Open(req.Filename)
	if err != nil {
		return finish(logger, res, domain.UploadPhaseLocal, localStatus(err), err)
	}
	defer file.Close()

	href, err := u.remote.RequestUpload(ctx, req.Filename)
	if err != nil {
		var rejected *storage.StatusError
		if errors.As(err, &rejected) {
			return finish(logger, res, domain.UploadPhaseNegotiate, rejected.Code, err)
		}
		return finish(logger, res, domain.UploadPhaseNegotiate, http.StatusBadGateway, err)
	}

	progress := storage.NewProgressReporter(file.Size, storage.NewProgressLogger(logger))
	body := io.TeeReader(file, progress)

	logger.Infof("transfer started (%s)", storage.FormatBytes(file.Size))
	status, err := u.transfer.Transfer(ctx, href, body, file.Size)
	logger.WithField("sent", progress.Sent()).Debugf("transfer sent %s of %s",
		storage.FormatBytes(progress.Sent()), storage.FormatBytes(file.Size))
	if err != nil {
		return finish(logger, res, domain.UploadPhaseTransfer, http.StatusBadGateway, err)
	}
	if status >= http.StatusBadRequest {
		return finish(logger, res, domain.UploadPhaseTransfer, status, &storage.StatusError{Code: status})
	}
	return finish(logger, res, domain.UploadPhaseTransfer, status, nil)
}

func localStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func finish(logger *logrus.Entry, res domain.UploadResult, phase domain.UploadPhase, status int, err error) domain.UploadResult {
	res.Phase = phase
	res.StatusCode = status
	res.Err = err
	res.FinishedAt = time.Now().UTC()

	entry := logger.WithFields(logrus.Fields{
		"phase":    phase,
		"status":   status,
		"duration": res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond),
	})
	if err != nil {
		entry.Warnf("upload failed: %v", err)
	} else {
		entry.Info("upload finished")
	}
	return res
}
