package httpx

import (
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 30 * time.Second

var externalHTTPClient = &http.Client{
	Timeout: defaultExternalHTTPTimeout,
}

// ExternalHTTPClient returns the shared client for outbound provider calls.
func ExternalHTTPClient() *http.Client {
	return externalHTTPClient
}

// ConfigureExternalHTTPClient sets the shared client timeout in seconds.
// Non-positive values keep the default. Returns the applied timeout.
func ConfigureExternalHTTPClient(seconds int) time.Duration {
	timeout := defaultExternalHTTPTimeout
	if seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}
	externalHTTPClient.Timeout = timeout
	return timeout
}
