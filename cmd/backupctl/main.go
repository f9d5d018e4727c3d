package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"disk-backup/internal/app"
	"disk-backup/internal/config"
	"disk-backup/internal/credential"
	"disk-backup/internal/domain"
	"disk-backup/internal/service"
)

var (
	version  = "dev"
	revision = "none"
)

// CLI flags override the matching configuration keys when set.
type CLI struct {
	Version    kong.VersionFlag `kong:"short='v',help='Show version and exit.'"`
	LogLevel   string           `kong:"short='l',optional,help='Log level, overrides log.level.'"`
	Dir        string           `kong:"short='d',optional,help='Local source directory, overrides source.dir.'"`
	Credential string           `kong:"optional,help='Credential source (env or prompt), overrides credential.source.'"`

	List    listCmd    `kong:"cmd,help='List local files and whether the remote folder holds them.'"`
	Upload  uploadCmd  `kong:"cmd,help='Upload one local file to the remote folder.'"`
	History historyCmd `kong:"cmd,help='Show recorded upload attempts.'"`
}

func (c *CLI) apply(cfg *config.Config) {
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.Dir != "" {
		cfg.Source.Dir = c.Dir
	}
	if c.Credential != "" {
		cfg.Credential.Source = c.Credential
	}
}

type listCmd struct{}

func (listCmd) Run(ctx context.Context, out io.Writer, backup service.BackupService) error {
	view := backup.ListFiles(ctx)
	if view.Degraded {
		fmt.Fprintf(out, "remote %s could not be listed, backup state unknown: %s\n", view.Backend, view.Reason)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, f := range view.Files {
		state := "-"
		if f.Uploaded {
			state = "uploaded"
		}
		fmt.Fprintf(w, "%s\t%s\n", state, f.Name)
	}
	return w.Flush()
}

type uploadCmd struct {
	Name string `kong:"arg,help='File name inside the source directory.'"`
}

func (c uploadCmd) Run(ctx context.Context, out io.Writer, backup service.BackupService) error {
	res := backup.Upload(ctx, domain.UploadRequest{Filename: c.Name})
	fmt.Fprintf(out, "%s: %d %s (request %s)\n", res.Filename, res.StatusCode, http.StatusText(res.StatusCode), res.RequestID)
	if !res.Succeeded() {
		if res.Err != nil {
			return fmt.Errorf("upload %s failed in %s phase: %w", c.Name, res.Phase, res.Err)
		}
		return fmt.Errorf("upload %s failed with status %d", c.Name, res.StatusCode)
	}
	return nil
}

type historyCmd struct {
	Name  string `kong:"arg,optional,help='Only show attempts for this file.'"`
	Limit int    `kong:"short='n',default='20',help='Maximum number of attempts to show.'"`
}

func (c historyCmd) Run(ctx context.Context, out io.Writer, backup service.BackupService) error {
	records, err := backup.History(ctx, c.Name, c.Limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.StartedAt.Format("2006-01-02 15:04:05"), r.Filename, r.StatusCode, r.Phase, r.Error)
	}
	return w.Flush()
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("backupctl"),
		kong.Description("List and upload local files to the remote backup folder."),
		kong.Vars{"version": fmt.Sprintf("%s (%s)", version, revision)},
		kong.UsageOnError(),
	)
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		logger.Fatalf("build parser: %v", err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	cli.apply(&cfg)
	if logger, err = app.NewLogger(cfg.Log.Level); err != nil {
		logrus.Fatalf("setup logger: %v", err)
	}
	logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := credential.NewProvider(cfg.Credential.Source, cfg.Credential.Env)
	if err != nil {
		logger.Fatalf("setup credential: %v", err)
	}

	backup, err := app.Build(ctx, cfg, provider, logger)
	if err != nil {
		logger.Fatalf("build backup service: %v", err)
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(os.Stdout, (*io.Writer)(nil))
	kctx.BindTo(backup.Backup, (*service.BackupService)(nil))
	err = kctx.Run()
	_ = backup.Close()
	kctx.FatalIfErrorf(err)
}
