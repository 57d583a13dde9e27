// Package leadclient submits the contact form to the lead endpoint and
// reports the outcome to the person filling it in.
package leadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wolfman30/installer-man/internal/leads"
	"github.com/wolfman30/installer-man/pkg/logging"
)

// User-facing notification texts.
const (
	SuccessMessage   = "Thanks! We’ll be in touch shortly."
	FailedMessage    = "Failed to send. Please try again."
	TransportMessage = "Something went wrong"
)

// ErrInFlight is returned when Submit is called while a previous
// submission has not resolved. No request is made.
var ErrInFlight = errors.New("leadclient: submission already in flight")

// Form is the set of user-editable controls.
type Form interface {
	Value(field string) string
	Reset()
}

// Notifier shows the outcome to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// ServerError is a non-2xx answer from the lead endpoint.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("leadclient: server returned %d: %s", e.Status, e.Message)
}

// Client posts contact form submissions. At most one submission is in
// flight per Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	notifier   Notifier
	logger     *logging.Logger
	submitting atomic.Bool
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the site at baseURL (e.g. "http://localhost:8080").
func NewClient(baseURL string, notifier Notifier, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		notifier: notifier,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submitting reports whether a submission is pending, i.e. whether the
// submit control should be disabled.
func (c *Client) Submitting() bool {
	return c.submitting.Load()
}

// Submit collects the form, validates it locally and sends it with a single
// POST. Nothing is retried; the user resubmits.
func (c *Client) Submit(ctx context.Context, form Form) (*leads.Receipt, error) {
	if !c.submitting.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer c.submitting.Store(false)

	lead, err := leads.Validate(Collect(form))
	if err != nil {
		var verr *leads.ValidationError
		if errors.As(err, &verr) && len(verr.Issues) > 0 {
			first := verr.Issues[0]
			c.notifier.Error(first.Field() + ": " + first.Message)
		}
		return nil, err
	}

	receipt, err := c.post(ctx, lead)
	if err != nil {
		var serr *ServerError
		if errors.As(err, &serr) {
			c.notifier.Error(serr.Message)
		} else {
			c.notifier.Error(TransportMessage)
		}
		c.logger.Warn("contact submission failed", "error", err)
		return nil, err
	}

	form.Reset()
	c.notifier.Success(SuccessMessage)
	return receipt, nil
}

func (c *Client) post(ctx context.Context, lead *leads.LeadRequest) (*leads.Receipt, error) {
	payload, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("leadclient: marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/contact", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("leadclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leadclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("leadclient: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &failure)
		msg := failure.Error
		if msg == "" {
			msg = FailedMessage
		}
		return nil, &ServerError{Status: resp.StatusCode, Message: msg}
	}

	var ok struct {
		OK bool   `json:"ok"`
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &ok); err != nil {
		c.logger.Debug("contact response was not JSON", "status", resp.StatusCode)
	}
	return &leads.Receipt{ID: ok.ID}, nil
}

// Collect reads every lead field from form and trims it. Blank optional
// fields are left absent.
func Collect(form Form) leads.LeadRequest {
	get := func(field string) string {
		return strings.TrimSpace(form.Value(field))
	}
	opt := func(field string) *string {
		if v := get(field); v != "" {
			return &v
		}
		return nil
	}
	return leads.LeadRequest{
		Name:        get("name"),
		Phone:       get("phone"),
		Email:       get("email"),
		ZIP:         opt("zip"),
		ServiceType: opt("serviceType"),
		Date:        opt("date"),
		TimeWindow:  opt("timeWindow"),
		Budget:      opt("budget"),
		Details:     opt("details"),
	}
}

// MapForm is a Form backed by a map, keyed by JSON field name.
type MapForm map[string]string

func (f MapForm) Value(field string) string { return f[field] }

// Reset clears every field.
func (f MapForm) Reset() {
	for k := range f {
		delete(f, k)
	}
}
