package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"disk-backup/internal/domain"
)

const defaultPresignExpiry = 15 * time.Minute

// S3Config points the backup folder at a key prefix inside a bucket.
type S3Config struct {
	Bucket        string
	Folder        string
	PresignExpiry time.Duration
	Timeout       time.Duration
	Logger        *logrus.Logger
}

// S3Service keeps backups in Amazon S3 (or compatible APIs). Upload hrefs are
// presigned PUT URLs, so the transfer phase is identical to the disk backend.
type S3Service struct {
	client  *s3.Client
	presign *s3.PresignClient
	cfg     S3Config
	prefix  string
	logger  *logrus.Entry
}

func NewS3Service(client *s3.Client, cfg S3Config) (*S3Service, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = defaultPresignExpiry
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCallTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	prefix := strings.Trim(cfg.Folder, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &S3Service{
		client:  client,
		presign: s3.NewPresignClient(client),
		cfg:     cfg,
		prefix:  prefix,
		logger:  cfg.Logger.WithField("backend", "s3"),
	}, nil
}

func (s *S3Service) Name() string {
	return "s3"
}

// ListFiles walks the prefix with a "/" delimiter so only direct children
// are reported; nested keys surface as common prefixes and are skipped like
// directories.
func (s *S3Service) ListFiles(ctx context.Context) domain.Inventory {
	inv := domain.NewInventory()

	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.cfg.Bucket),
		Delimiter: aws.String("/"),
	}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix)
	}

	for {
		inv.Calls++
		output, err := s.listPage(ctx, input)
		if err != nil {
			s.logger.Warnf("list objects: %v", err)
			return inv.Degrade(fmt.Errorf("list objects: %w", err))
		}

		for _, obj := range output.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			inv.Add(name)
		}

		if !aws.ToBool(output.IsTruncated) || output.NextContinuationToken == nil {
			return inv
		}
		input.ContinuationToken = output.NextContinuationToken
	}
}

func (s *S3Service) listPage(ctx context.Context, input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return s.client.ListObjectsV2(ctx, input)
}

// RequestUpload presigns a PUT for the object key of name.
func (s *S3Service) RequestUpload(ctx context.Context, name string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.Key(name)),
	}, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign put object: %w", err)
	}
	if req.URL == "" {
		return "", fmt.Errorf("%w: presigned url missing", ErrProtocol)
	}
	return req.URL, nil
}

// Key is the object key a local file name is stored under.
func (s *S3Service) Key(name string) string {
	return s.prefix + name
}

var _ Service = (*S3Service)(nil)
