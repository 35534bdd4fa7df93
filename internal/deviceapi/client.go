package deviceapi

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/espdash/internal/logging"
	"github.com/muurk/espdash/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout. It stays below the
	// default refresh interval so a hung tick never outlives the next one.
	DefaultTimeout = 4 * time.Second

	// DefaultPort is the HTTP port of the diagnostic firmware web server
	DefaultPort = 80

	// OverviewPath is the full device snapshot resource
	OverviewPath = "/api/overview"

	// StatusPath is the lightweight live status resource
	StatusPath = "/api/status"

	// maxBodySize bounds a response body; the firmware never sends more than a few KB
	maxBodySize = 1 << 20
)

// Client fetches overview and status snapshots from an ESP32 diagnostic device
type Client struct {
	// BaseURL is the base URL for the device (e.g., "http://192.168.1.5")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// OverviewPath and StatusPath locate the two resources below BaseURL
	OverviewPath string
	StatusPath   string
}

// NewClient creates a client for a host and port, as reported by mDNS.
// IPv6 hosts are bracketed.
func NewClient(host string, port int) *Client {
	return NewClientWithURL("http://" + net.JoinHostPort(host, strconv.Itoa(port)))
}

// NewClientWithURL creates a new client with a full base URL.
// A bare host ("esp32-diagnostic.local") is accepted and gets an http:// scheme.
func NewClientWithURL(baseURL string) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		HTTPClient:   &http.Client{Timeout: DefaultTimeout},
		OverviewPath: OverviewPath,
		StatusPath:   StatusPath,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// Host returns the host part of BaseURL, used to annotate errors
func (c *Client) Host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.BaseURL
	}
	return u.Hostname()
}

// GetOverview performs one GET of the overview resource and returns the
// validated snapshot
func (c *Client) GetOverview(ctx context.Context) (*DeviceOverview, error) {
	body, err := c.get(ctx, c.OverviewPath)
	if err != nil {
		return nil, err
	}
	return ParseOverview(body)
}

// GetStatus performs one GET of the status resource
func (c *Client) GetStatus(ctx context.Context) (*StatusSnapshot, error) {
	body, err := c.get(ctx, c.StatusPath)
	if err != nil {
		return nil, err
	}
	return ParseStatus(body)
}

// Ping performs a simple health check against the status resource
// Returns nil if the device is reachable and responding
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetStatus(ctx)
	return err
}

// get performs a single GET with no parameters and returns the raw body
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	target := c.BaseURL + path
	start := time.Now()

	body, err := c.doGet(ctx, target)
	logging.LogFetch(target, time.Since(start), err)
	if err != nil {
		if devErr, ok := err.(*DeviceError); ok {
			devErr.Host = c.Host()
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) doGet(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, NewTransportError("failed to create GET request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewTransportError("GET request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, NewTransportError("failed to read response body", err)
	}

	return body, nil
}
