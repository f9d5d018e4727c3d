package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"disk-backup/internal/credential"
	"disk-backup/internal/domain"
	"disk-backup/internal/pkg/json"
)

const (
	DefaultDiskAPIURL  = "https://cloud-api.yandex.net/v1/disk"
	DefaultDiskFolder  = "disk:/Backup"
	DefaultPageLimit   = 1000
	DefaultCallTimeout = 10 * time.Second

	defaultQPS   = 10
	defaultBurst = 20
)

// DiskConfig describes a REST disk backend exposing offset/limit resource
// listing and upload href negotiation.
type DiskConfig struct {
	APIURL    string
	Folder    string
	PageLimit int
	Timeout   time.Duration
	QPS       float64
	Burst     int
	Client    *http.Client
	Logger    *logrus.Logger
}

// DiskService talks to the disk resources API.
type DiskService struct {
	cfg     DiskConfig
	token   credential.Token
	client  *http.Client
	limiter *rate.Limiter
	logger  *logrus.Entry
}

func NewDiskService(cfg DiskConfig, token credential.Token) *DiskService {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultDiskAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Folder == "" {
		cfg.Folder = DefaultDiskFolder
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCallTimeout
	}
	if cfg.QPS <= 0 {
		cfg.QPS = defaultQPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &DiskService{
		cfg:     cfg,
		token:   token,
		client:  cfg.Client,
		limiter: rate.NewLimiter(rate.Limit(cfg.QPS), cfg.Burst),
		logger:  cfg.Logger.WithField("backend", "disk"),
	}
}

func (s *DiskService) Name() string {
	return "disk"
}

type resourceItem struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type resourceList struct {
	Embedded *struct {
		Items []resourceItem `json:"items"`
		Total int            `json:"total"`
	} `json:"_embedded"`
}

type uploadLink struct {
	Href string `json:"href"`
}

// ListFiles pages through the backup folder with offset/limit. The offset
// advances by the number of items actually returned, so a short final page
// terminates the walk once offset reaches the reported total.
func (s *DiskService) ListFiles(ctx context.Context) domain.Inventory {
	inv := domain.NewInventory()
	if s.token.Empty() {
		return inv.Degrade(ErrNoCredential)
	}

	offset := 0
	for {
		params := url.Values{}
		params.Set("path", s.cfg.Folder)
		params.Set("limit", strconv.Itoa(s.cfg.PageLimit))
		params.Set("offset", strconv.Itoa(offset))

		var page resourceList
		inv.Calls++
		status, err := s.getJSON(ctx, "/resources", params, &page)
		if err != nil {
			s.logger.WithField("offset", offset).Warnf("list backup folder: %v", err)
			return inv.Degrade(err)
		}
		if status != http.StatusOK {
			s.logger.WithField("offset", offset).Warnf("list backup folder: status %d", status)
			return inv.Degrade(&StatusError{Code: status})
		}
		if page.Embedded == nil {
			return inv
		}

		items := page.Embedded.Items
		for _, item := range items {
			if item.Type == "file" && item.Name != "" {
				inv.Add(item.Name)
			}
		}

		offset += len(items)
		if offset >= page.Embedded.Total {
			return inv
		}
		if len(items) == 0 {
			return inv.Degrade(fmt.Errorf("%w: empty page at offset %d of %d", ErrProtocol, offset, page.Embedded.Total))
		}
	}
}

// RequestUpload asks for an upload href for folder/name. A non-200 answer is
// returned as *StatusError with the remote code intact.
func (s *DiskService) RequestUpload(ctx context.Context, name string) (string, error) {
	if s.token.Empty() {
		return "", &StatusError{Code: http.StatusUnauthorized}
	}

	params := url.Values{}
	params.Set("path", s.UploadPath(name))

	var link uploadLink
	status, err := s.getJSON(ctx, "/resources/upload", params, &link)
	if err != nil {
		return "", fmt.Errorf("request upload href: %w", err)
	}
	if status != http.StatusOK {
		return "", &StatusError{Code: status}
	}

	href := strings.TrimSpace(link.Href)
	if href == "" {
		return "", fmt.Errorf("%w: upload href missing", ErrProtocol)
	}
	parsed, err := url.Parse(href)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: upload href is not an absolute url", ErrProtocol)
	}
	return href, nil
}

// UploadPath is the remote destination for a local file name.
func (s *DiskService) UploadPath(name string) string {
	return strings.TrimRight(s.cfg.Folder, "/") + "/" + name
}

// getJSON issues an authorized GET and decodes a 200 body into v. The query
// is built from url.Values, so reserved characters in file names are
// percent-encoded before they reach the transport. Non-200 statuses are
// returned without decoding.
func (s *DiskService) getJSON(ctx context.Context, endpoint string, params url.Values, v any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	u, err := url.Parse(s.cfg.APIURL + endpoint)
	if err != nil {
		return 0, fmt.Errorf("parse api url: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+s.token.Value())
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", endpoint, stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode %s: %v", ErrProtocol, endpoint, err)
	}
	return resp.StatusCode, nil
}

var _ Service = (*DiskService)(nil)
