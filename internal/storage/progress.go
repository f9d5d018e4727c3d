package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ProgressInterval is the minimum gap between two progress callbacks. The
// final byte count is always reported.
const ProgressInterval = 500 * time.Millisecond

// ProgressReporter counts bytes flowing through an io.TeeReader and fires a
// throttled callback.
type ProgressReporter struct {
	total    int64
	sent     int64
	cb       func(sent, total int64)
	mu       sync.Mutex
	lastFire time.Time
}

func NewProgressReporter(total int64, cb func(sent, total int64)) *ProgressReporter {
	if cb == nil {
		return nil
	}
	return &ProgressReporter{
		total: total,
		cb:    cb,
	}
}

func (p *ProgressReporter) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sent += int64(len(b))
	now := time.Now()
	if now.Sub(p.lastFire) >= ProgressInterval || p.sent == p.total {
		p.lastFire = now
		p.cb(p.sent, p.total)
	}

	return len(b), nil
}

// Sent is the number of bytes read through the reporter so far.
func (p *ProgressReporter) Sent() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

// NewProgressLogger logs every callback it receives; pacing is left to the
// ProgressReporter.
func NewProgressLogger(logger *logrus.Entry) func(sent, total int64) {
	return func(sent, total int64) {
		if total <= 0 {
			logger.Infof("upload progress: %s sent", FormatBytes(sent))
			return
		}
		logger.Infof("upload progress: %.1f%% (%s of %s)",
			float64(sent)/float64(total)*100, FormatBytes(sent), FormatBytes(total))
	}
}

// FormatBytes renders b with binary unit prefixes, e.g. 1.5KiB.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	value := float64(b) / unit
	prefix := 0
	for value >= unit && prefix < len("KMGTPE")-1 {
		value /= unit
		prefix++
	}
	return fmt.Sprintf("%.1f%ciB", value, "KMGTPE"[prefix])
}
