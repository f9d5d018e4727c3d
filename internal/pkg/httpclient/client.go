// Package httpclient builds the HTTP client shared by remote calls.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

const (
	maxIdleConns        = 64
	maxIdleConnsPerHost = 16
	dialTimeout         = 10 * time.Second
	keepAliveTime       = 30 * time.Second
)

// New returns a client without an overall Timeout; callers bound each request
// with a context deadline so long transfers and short API calls can share it.
func New() *http.Client {
	defaultTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{}
	}
	transport := defaultTransport.Clone()

	transport.MaxIdleConns = maxIdleConns
	transport.MaxIdleConnsPerHost = maxIdleConnsPerHost
	transport.DialContext = (&net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: keepAliveTime,
	}).DialContext

	return &http.Client{
		Transport: transport,
	}
}
