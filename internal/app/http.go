package app

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns the transport shared by all years of a run. The site
// is a single host, so the pool is sized for a handful of parallel years
// rather than broad fan-out.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Per-request deadlines come from fetch.Client; this is a backstop.
	return &http.Client{
		Transport: transport,
		Timeout:   2 * timeout,
	}
}
