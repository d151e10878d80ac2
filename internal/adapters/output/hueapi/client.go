// Package hueapi talks to a Hue bridge over its local v1 REST API.
package hueapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hue-panel/internal/domain/model"
	"hue-panel/internal/ports"
)

const (
	DefaultTimeout     = 4 * time.Second
	DefaultPairTimeout = 5 * time.Second

	// maxBody caps how much of a response is read.
	maxBody = 4 << 20
)

var (
	// ErrNotConfigured is returned when no bridge address is stored.
	ErrNotConfigured = errors.New("hue bridge not configured")

	// ErrNetwork wraps transport failures: refused connections, timeouts,
	// unreachable hosts.
	ErrNetwork = errors.New("hue bridge unreachable")

	// ErrUnexpectedResponse is returned for bodies that cannot be decoded.
	ErrUnexpectedResponse = errors.New("unexpected hue response")
)

// StatusError is a non-2xx response that carried no error envelope.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hue API %s %s: HTTP %d", e.Method, e.URL, e.Code)
}

// Client issues requests against the bridge named in the stored config. The
// address and credential are re-read for every call so a new pairing takes
// effect without a restart.
type Client struct {
	config      ports.ConfigRepository
	httpClient  *http.Client
	timeout     time.Duration
	pairTimeout time.Duration
	logger      *slog.Logger
}

var _ ports.BridgeAPI = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. to inject a test
// transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeouts sets the per-call timeouts for API and pairing requests.
// Zero values keep the defaults.
func WithTimeouts(api, pair time.Duration) Option {
	return func(c *Client) {
		if api > 0 {
			c.timeout = api
		}
		if pair > 0 {
			c.pairTimeout = pair
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(config ports.ConfigRepository, opts ...Option) *Client {
	c := &Client{
		config:      config,
		httpClient:  &http.Client{},
		timeout:     DefaultTimeout,
		pairTimeout: DefaultPairTimeout,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "hueapi")
	return c
}

func (c *Client) Lights(ctx context.Context) (map[string]model.WireLight, error) {
	var out map[string]model.WireLight
	if err := c.getJSON(ctx, &out, "lights"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Light(ctx context.Context, id int) (model.WireLight, error) {
	var out model.WireLight
	err := c.getJSON(ctx, &out, "lights", fmt.Sprint(id))
	return out, err
}

func (c *Client) SetLightState(ctx context.Context, id int, update model.StateUpdate) error {
	return c.put(ctx, update, "lights", fmt.Sprint(id), "state")
}

func (c *Client) Groups(ctx context.Context) (map[string]model.WireGroup, error) {
	var out map[string]model.WireGroup
	if err := c.getJSON(ctx, &out, "groups"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Group(ctx context.Context, id int) (model.WireGroup, error) {
	var out model.WireGroup
	err := c.getJSON(ctx, &out, "groups", fmt.Sprint(id))
	return out, err
}

func (c *Client) SetGroupAction(ctx context.Context, id int, update model.StateUpdate) error {
	return c.put(ctx, update, "groups", fmt.Sprint(id), "action")
}

// CreateUser posts the device type to the bridge's pairing endpoint. It needs
// no stored credential. Until the link button is pressed the bridge answers
// with a type 101 error, returned as a *model.BridgeError.
func (c *Client) CreateUser(ctx context.Context, ip, deviceType string) (string, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.pairTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s/api", ip)
	body, err := c.do(ctx, http.MethodPost, url, map[string]string{"devicetype": deviceType})
	if err != nil {
		return "", err
	}
	results, ok := DecodeEnvelope(body)
	if !ok {
		return "", fmt.Errorf("%w: pairing response is not an envelope", ErrUnexpectedResponse)
	}
	if be := FirstError(results); be != nil {
		return "", be
	}
	return username(results)
}

func (c *Client) apiURL(ctx context.Context, parts ...string) (string, error) {
	cfg := c.config.Load(ctx)
	if cfg == nil || strings.TrimSpace(cfg.BridgeIP) == "" {
		return "", ErrNotConfigured
	}
	return fmt.Sprintf("http://%s/api/%s/%s", strings.TrimSpace(cfg.BridgeIP), cfg.Username, strings.Join(parts, "/")), nil
}

func (c *Client) getJSON(ctx context.Context, out any, parts ...string) error {
	url, err := c.apiURL(ctx, parts...)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if err := checkBody(body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnexpectedResponse, strings.Join(parts, "/"), err)
	}
	return nil
}

func (c *Client) put(ctx context.Context, payload any, parts ...string) error {
	url, err := c.apiURL(ctx, parts...)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.do(ctx, http.MethodPut, url, payload)
	if err != nil {
		return err
	}
	return checkBody(body)
}

// do sends one request and returns the body. A non-2xx status is an error
// unless the body carries the bridge's own error envelope, which the caller
// then reports instead.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if results, ok := DecodeEnvelope(body); ok {
			if be := FirstError(results); be != nil {
				return nil, be
			}
		}
		return nil, &StatusError{Method: method, URL: redact(url), Code: resp.StatusCode}
	}
	return body, nil
}

// redact hides the credential segment of an API URL.
func redact(url string) string {
	const marker = "/api/"
	i := strings.Index(url, marker)
	if i < 0 {
		return url
	}
	rest := url[i+len(marker):]
	j := strings.Index(rest, "/")
	if j <= 0 {
		return url
	}
	return url[:i+len(marker)] + "***" + rest[j:]
}
