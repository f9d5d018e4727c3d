package domain

import "time"

// UploadPhase names the step at which an upload finished.
type UploadPhase string

const (
	UploadPhaseLocal     UploadPhase = "local"
	UploadPhaseNegotiate UploadPhase = "negotiate"
	UploadPhaseTransfer  UploadPhase = "transfer"
)

// UploadResult is the outcome of one upload trigger. StatusCode is the
// transfer response status, the negotiate status when the remote rejected the
// request, or a code synthesized for local and upstream failures.
type UploadResult struct {
	RequestID  string
	Filename   string
	StatusCode int
	Phase      UploadPhase
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the remote accepted the transfer.
func (r UploadResult) Succeeded() bool {
	return r.Phase == UploadPhaseTransfer && r.StatusCode >= 200 && r.StatusCode < 300
}

// UploadRecord is a journal entry describing a finished upload attempt.
type UploadRecord struct {
	ID         int64
	RequestID  string
	Filename   string
	StatusCode int
	Phase      UploadPhase
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
