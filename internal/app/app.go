// Package app assembles the backup service from configuration. Both the HTTP
// server and the backupctl command build their dependencies here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"disk-backup/internal/catalog"
	"disk-backup/internal/config"
	"disk-backup/internal/credential"
	"disk-backup/internal/pkg/httpclient"
	"disk-backup/internal/repository/sqlite"
	"disk-backup/internal/service"
	"disk-backup/internal/storage"
)

// App is a fully wired backup service plus the resources it owns.
type App struct {
	Backup  service.BackupService
	Catalog *catalog.Catalog
	Remote  storage.Service

	db *sql.DB
}

// Close releases the upload journal.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// NewLogger returns the text logger used by every entry point.
func NewLogger(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// Build wires catalog, remote, transfer and journal. The disk backend needs a
// token from provider; an empty one is refused so the process never runs
// against the remote anonymously.
func Build(ctx context.Context, cfg config.Config, provider credential.Provider, logger *logrus.Logger) (*App, error) {
	client := httpclient.New()

	remote, err := buildStorage(ctx, cfg, provider, client, logger)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	journal := sqlite.NewUploadRepository(db)
	if err := journal.Init(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init upload repository: %w", err)
	}

	files := catalog.New(cfg.Source.Dir)
	transfer := storage.NewHTTPTransfer(client, cfg.Remote.TransferTimeout)

	return &App{
		Backup:  service.NewBackupService(files, remote, transfer, journal, logger),
		Catalog: files,
		Remote:  remote,
		db:      db,
	}, nil
}

func buildStorage(ctx context.Context, cfg config.Config, provider credential.Provider, client *http.Client, logger *logrus.Logger) (storage.Service, error) {
	switch cfg.Remote.Backend {
	case config.BackendS3:
		return buildS3(ctx, cfg, logger)
	case config.BackendDisk:
		token, err := provider.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire credential: %w", err)
		}
		logger.Infof("using disk folder %s", cfg.Remote.Folder)
		return storage.NewDiskService(storage.DiskConfig{
			APIURL:    cfg.Remote.APIURL,
			Folder:    cfg.Remote.Folder,
			PageLimit: cfg.Remote.PageLimit,
			Timeout:   cfg.Remote.Timeout,
			QPS:       cfg.Remote.QPS,
			Burst:     cfg.Remote.Burst,
			Client:    client,
			Logger:    logger,
		}, token), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Remote.Backend)
	}
}

func buildS3(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	svc, err := storage.NewS3Service(client, storage.S3Config{
		Bucket:  cfg.Storage.Bucket,
		Folder:  cfg.Storage.KeyPrefix,
		Timeout: cfg.Remote.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
