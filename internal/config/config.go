package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendDisk = "disk"
	BackendS3   = "s3"
)

// Config holds application level configuration aggregated from env/config files.
// The remote credential is deliberately absent; it is acquired through a
// credential.Provider named by Credential.Source.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Source struct {
		Dir string
	}
	Remote struct {
		Backend         string
		APIURL          string
		Folder          string
		PageLimit       int
		Timeout         time.Duration
		TransferTimeout time.Duration
		QPS             float64
		Burst           int
	}
	Credential struct {
		Source string
		Env    string
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Database struct {
		Path string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	return load(".")
}

func load(dir string) (Config, error) {
	loadDotEnv(dir + "/.env")

	v := viper.New()
	v.SetEnvPrefix("BACKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("source.dir", "pdfs")
	v.SetDefault("remote.backend", BackendDisk)
	v.SetDefault("remote.apiurl", "https://cloud-api.yandex.net/v1/disk")
	v.SetDefault("remote.folder", "disk:/Backup")
	v.SetDefault("remote.pagelimit", 1000)
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("remote.transfertimeout", 120*time.Second)
	v.SetDefault("remote.qps", 10.0)
	v.SetDefault("remote.burst", 20)
	v.SetDefault("credential.source", "env")
	v.SetDefault("credential.env", "BACKUP_TOKEN")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "Backup")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("database.path", "data/backup.db")

	v.SetConfigName("config")
	v.AddConfigPath(dir)
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports settings that cannot produce a working remote.
func (c Config) Validate() error {
	switch c.Remote.Backend {
	case BackendDisk:
		if strings.TrimSpace(c.Remote.APIURL) == "" {
			return fmt.Errorf("remote.apiurl is required for the %s backend", BackendDisk)
		}
	case BackendS3:
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return fmt.Errorf("storage.bucket is required for the %s backend", BackendS3)
		}
	default:
		return fmt.Errorf("unknown remote.backend %q", c.Remote.Backend)
	}
	if c.Remote.PageLimit <= 0 {
		return fmt.Errorf("remote.pagelimit must be positive, got %d", c.Remote.PageLimit)
	}
	if c.Remote.Timeout <= 0 || c.Remote.TransferTimeout <= 0 {
		return fmt.Errorf("remote timeouts must be positive")
	}
	return nil
}

func loadDotEnv(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
