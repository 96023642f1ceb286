// internal/common/http/client.go
package http

import (
	"net"
	"net/http"
	"time"
)

// Client is the outbound HTTP client handed to the text-generation SDK.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// HTTPClient exposes the underlying client for SDKs that take *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}
