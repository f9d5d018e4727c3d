package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"disk-backup/internal/config"
	"disk-backup/internal/domain"
	"disk-backup/internal/service"
)

type fakeBackup struct {
	view    service.FileView
	result  domain.UploadResult
	records []domain.UploadRecord
	limit   int
}

func (f *fakeBackup) ListFiles(context.Context) service.FileView { return f.view }

func (f *fakeBackup) Upload(_ context.Context, req domain.UploadRequest) domain.UploadResult {
	res := f.result
	res.Filename = req.Filename
	return res
}

func (f *fakeBackup) History(_ context.Context, _ string, limit int) ([]domain.UploadRecord, error) {
	f.limit = limit
	return f.records, nil
}

func run(t *testing.T, backup service.BackupService, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := newParser(&cli)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	kctx.BindTo(context.Background(), (*context.Context)(nil))
	kctx.BindTo(&out, (*io.Writer)(nil))
	kctx.BindTo(backup, (*service.BackupService)(nil))
	err = kctx.Run()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := run(t, &fakeBackup{view: service.FileView{
		Backend:  "disk",
		Degraded: true,
		Reason:   "remote answered 503 Service Unavailable",
		Files:    []domain.FileEntry{{Name: "a.pdf", Uploaded: true}, {Name: "b.pdf"}},
	}}, "list")

	require.NoError(t, err)
	require.Contains(t, out, "backup state unknown")
	require.Contains(t, out, "uploaded  a.pdf")
	require.Contains(t, out, "-         b.pdf")
}

func TestUploadCommand(t *testing.T) {
	out, err := run(t, &fakeBackup{result: domain.UploadResult{
		RequestID:  "r1",
		StatusCode: http.StatusCreated,
		Phase:      domain.UploadPhaseTransfer,
	}}, "upload", "a b.pdf")
	require.NoError(t, err)
	require.Equal(t, "a b.pdf: 201 Created (request r1)\n", out)

	_, err = run(t, &fakeBackup{result: domain.UploadResult{
		StatusCode: http.StatusNotFound,
		Phase:      domain.UploadPhaseLocal,
		Err:        errors.New("missing"),
	}}, "upload", "gone.pdf")
	require.Error(t, err)
	require.Contains(t, err.Error(), "gone.pdf")

	// a 2xx status only counts once the transfer phase answered it
	_, err = run(t, &fakeBackup{result: domain.UploadResult{StatusCode: http.StatusOK, Phase: domain.UploadPhaseNegotiate}}, "upload", "a.pdf")
	require.Error(t, err)
}

func TestHistoryCommand(t *testing.T) {
	backup := &fakeBackup{records: []domain.UploadRecord{{
		Filename: "a.pdf", StatusCode: 201, Phase: domain.UploadPhaseTransfer,
		StartedAt: time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC),
	}}}

	out, err := run(t, backup, "history", "-n", "5")

	require.NoError(t, err)
	require.Equal(t, 5, backup.limit)
	require.Contains(t, out, "2026-05-04 03:02:01")
	require.Contains(t, out, "a.pdf")
}

func TestFlagsOverrideConfig(t *testing.T) {
	var cli CLI
	parser, err := newParser(&cli)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"--dir", "/tmp/reports", "--credential", "prompt", "list"})
	require.NoError(t, err)

	var cfg config.Config
	cfg.Source.Dir = "pdfs"
	cfg.Credential.Source = "env"
	cfg.Log.Level = "info"
	cli.apply(&cfg)

	require.Equal(t, "/tmp/reports", cfg.Source.Dir)
	require.Equal(t, "prompt", cfg.Credential.Source)
	require.Equal(t, "info", cfg.Log.Level)
}
