package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfman30/doorstep/internal/booking"
	"github.com/wolfman30/doorstep/internal/technician"
	"github.com/wolfman30/doorstep/pkg/logging"
)

const defaultBaseURL = "http://localhost:4000"

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero or negative leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the Booking Service REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

var (
	_ booking.Service    = (*Client)(nil)
	_ technician.Backend = (*Client)(nil)
)

// NewClient constructs a Booking Service client. Requests are traced
// through an otelhttp transport.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateAppointment posts a booking request and returns the server's echo.
// Non-2xx replies surface as *APIError; everything else is a transport error.
func (c *Client) CreateAppointment(ctx context.Context, req booking.Request) (json.RawMessage, error) {
	payload := AppointmentPayload{
		Services: req.Items(),
		Date:     req.ScheduledAt().Format(time.RFC3339),
		Total:    req.Total(),
		Address:  req.Address(),
	}
	headers := http.Header{}
	if id := req.RequestID(); id != "" {
		headers.Set(IdempotencyHeader, id)
	}

	var echo json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/api/appointments", headers, payload, &echo); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return echo, nil
}

// EarningsHistory lists a technician's jobs, newest first.
func (c *Client) EarningsHistory(ctx context.Context, technicianID string) ([]technician.Job, error) {
	path := "/api/earnings/history/" + url.PathEscape(technicianID)
	var jobs []technician.Job
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &jobs); err != nil {
		return nil, fmt.Errorf("earnings history: %w", err)
	}
	return jobs, nil
}

// AddEarning records a completed job.
func (c *Client) AddEarning(ctx context.Context, job technician.NewJob) (technician.Job, error) {
	payload := EarningPayload{
		TechnicianID: job.TechnicianID,
		Job:          job.Job,
		Amount:       job.Amount,
		Date:         job.Date.Format("2006-01-02"),
	}
	var saved technician.Job
	if err := c.doJSON(ctx, http.MethodPost, "/api/earnings/add", nil, payload, &saved); err != nil {
		return technician.Job{}, fmt.Errorf("add earning: %w", err)
	}
	return saved, nil
}

// CreateOrFetchProfile returns the technician profile, creating a default one if none exists.
func (c *Client) CreateOrFetchProfile(ctx context.Context) (technician.Profile, error) {
	var p technician.Profile
	if err := c.doJSON(ctx, http.MethodPost, "/api/profile/createOrFetch", nil, nil, &p); err != nil {
		return technician.Profile{}, fmt.Errorf("create or fetch profile: %w", err)
	}
	return p, nil
}

// UpdateProfile replaces the profile identified by p.ID.
func (c *Client) UpdateProfile(ctx context.Context, p technician.Profile) (technician.Profile, error) {
	path := "/api/profile/" + url.PathEscape(p.ID)
	var saved technician.Profile
	if err := c.doJSON(ctx, http.MethodPut, path, nil, p, &saved); err != nil {
		return technician.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return saved, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, headers http.Header, body, out any) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		apiErr := &APIError{Status: resp.StatusCode, Body: msg}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			apiErr.Message = eb.Error
		}
		c.logger.Warn("booking service non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if !json.Valid(respBody) {
		return fmt.Errorf("%w: %d bytes from %s", ErrMalformedResponse, len(respBody), path)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
