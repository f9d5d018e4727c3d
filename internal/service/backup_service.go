package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"disk-backup/internal/backup"
	"disk-backup/internal/catalog"
	"disk-backup/internal/domain"
	"disk-backup/internal/metrics"
	"disk-backup/internal/repository"
	"disk-backup/internal/storage"
)

// FileView is the reconciliation of the local catalog against one remote
// inventory. When Degraded is set the inventory was partial: files seen
// before enumeration stopped are still marked Uploaded, the rest read false
// even if they are present remotely.
type FileView struct {
	Files    []domain.FileEntry
	Degraded bool
	Reason   string
	Backend  string
}

// BackupService coordinates listing and uploads for the trigger endpoints.
type BackupService interface {
	ListFiles(ctx context.Context) FileView
	Upload(ctx context.Context, req domain.UploadRequest) domain.UploadResult
	History(ctx context.Context, filename string, limit int) ([]domain.UploadRecord, error)
}

type backupService struct {
	catalog  *catalog.Catalog
	remote   storage.Service
	uploader *backup.Uploader
	journal  repository.UploadRepository
	logger   *logrus.Logger
}

// NewBackupService wires the catalog and remote together. journal may be nil.
func NewBackupService(files *catalog.Catalog, remote storage.Service, transfer storage.Transferer, journal repository.UploadRepository, logger *logrus.Logger) BackupService {
	if logger == nil {
		logger = logrus.New()
	}
	return &backupService{
		catalog:  files,
		remote:   remote,
		uploader: backup.NewUploader(files, remote, transfer, logger),
		journal:  journal,
		logger:   logger,
	}
}

func (s *backupService) ListFiles(ctx context.Context) FileView {
	local := s.catalog.List()
	inv := s.remote.ListFiles(ctx)
	metrics.ObserveInventory(s.remote.Name(), inv)

	view := FileView{
		Files:    backup.Annotate(local, inv),
		Degraded: inv.Degraded,
		Backend:  s.remote.Name(),
	}
	if inv.Degraded && inv.Reason != nil {
		view.Reason = inv.Reason.Error()
		s.logger.WithField("backend", view.Backend).Warnf("inventory degraded after %d calls: %v", inv.Calls, inv.Reason)
	}
	return view
}

func (s *backupService) Upload(ctx context.Context, req domain.UploadRequest) domain.UploadResult {
	res := s.uploader.Upload(ctx, req)
	metrics.ObserveUpload(res)

	if s.journal != nil {
		record := domain.UploadRecord{
			RequestID:  res.RequestID,
			Filename:   res.Filename,
			StatusCode: res.StatusCode,
			Phase:      res.Phase,
			StartedAt:  res.StartedAt,
			FinishedAt: res.FinishedAt,
		}
		if res.Err != nil {
			record.Error = res.Err.Error()
		}
		// journal failures never change the result
		if _, err := s.journal.Create(context.WithoutCancel(ctx), &record); err != nil {
			s.logger.WithField("request_id", res.RequestID).Warnf("record upload: %v", err)
		}
	}
	return res
}

func (s *backupService) History(ctx context.Context, filename string, limit int) ([]domain.UploadRecord, error) {
	if s.journal == nil {
		return nil, fmt.Errorf("upload journal is not configured")
	}
	if filename != "" {
		return s.journal.ListByFilename(ctx, filename, limit)
	}
	return s.journal.ListRecent(ctx, limit)
}
