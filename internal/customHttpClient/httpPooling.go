package customHttpClient

import (
	"net/http"

	"github.com/akolanti/ChatPDF/internal/config"
)

var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewClient returns a client sharing one pooled transport. Deadlines come from the
// request context, so the client itself has no timeout.
func NewClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
