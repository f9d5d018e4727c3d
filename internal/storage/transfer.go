package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTransferTimeout bounds a single PUT of file content.
const DefaultTransferTimeout = 120 * time.Second

// HTTPTransfer PUTs raw bytes to a pre-authorized href. No Authorization
// header is sent; the href itself grants access.
type HTTPTransfer struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPTransfer(client *http.Client, timeout time.Duration) *HTTPTransfer {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTransferTimeout
	}
	return &HTTPTransfer{client: client, timeout: timeout}
}

// Transfer returns the PUT response status unmodified. An error is returned
// only when no response was received.
func (t *HTTPTransfer) Transfer(ctx context.Context, href string, body io.Reader, size int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, href, body)
	if err != nil {
		return 0, fmt.Errorf("build transfer request: %w", err)
	}
	req.ContentLength = size
	if size == 0 {
		req.Body = http.NoBody
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("transfer: %w", stripURL(err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// stripURL drops the request URL from transport errors; hrefs embed
// short-lived upload grants and do not belong in logs.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

var _ Transferer = (*HTTPTransfer)(nil)
