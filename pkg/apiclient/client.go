// Package apiclient is the Go mirror of the browser reauthentication
// interceptor: cookie-based requests with a single transparent refresh and
// replay on 401, and a logout broadcast when reauthentication is
// irrecoverable.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

const (
	registerPath = "/auth/register"
	loginPath    = "/auth/login"
	logoutPath   = "/auth/logout"
	refreshPath  = "/auth/refresh-token"

	defaultRefreshTimeout = 10 * time.Second
)

// authEndpoints never get a refresh-and-retry: a 401 from them is not a
// stale-access-token problem.
var authEndpoints = []string{registerPath, loginPath, logoutPath, refreshPath}

// Client wraps an http.Client with the reauthentication flow. The refreshing
// flag lives on the Client, not in package state, so independent clients
// (tests, parallel consumers) never share hidden refresh state.
type Client struct {
	baseURL string
	http    *http.Client
	// bare client sharing the jar; used for the refresh call so it cannot
	// recurse into Do.
	refresh *http.Client

	mu         sync.Mutex
	refreshing bool

	onLogout       func()
	refreshTimeout time.Duration
}

type Option func(*Client)

// WithLogoutHandler registers the callback fired when reauthentication is
// irrecoverable (refresh endpoint returned 401 or the refresh attempt
// failed).
func WithLogoutHandler(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

// WithRefreshTimeout bounds the refresh call. A stuck refresh would
// otherwise block its whole call chain.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) { c.refreshTimeout = d }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{Jar: jar},
		refresh:        &http.Client{Jar: jar},
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type retryKey struct{}

func retried(req *http.Request) bool {
	v, _ := req.Context().Value(retryKey{}).(bool)
	return v
}

func markRetried(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), retryKey{}, true))
}

// Do sends the request; on 401 it attempts exactly one refresh and replays.
//
//	network error            -> propagated unchanged
//	401 on an auth endpoint  -> no retry (logout broadcast if refresh path)
//	401 already retried      -> propagated (loop guard)
//	refresh in flight        -> propagated without queuing
//	otherwise                -> refresh, then replay the original request
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if retried(req) {
		return resp, nil
	}
	if isAuthEndpoint(req.URL.Path) {
		if strings.HasSuffix(req.URL.Path, refreshPath) {
			c.broadcastLogout()
		}
		return resp, nil
	}

	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return resp, nil
	}
	c.refreshing = true
	c.mu.Unlock()

	refreshed := c.tryRefresh(req.Context())

	c.mu.Lock()
	c.refreshing = false
	c.mu.Unlock()

	if !refreshed {
		c.broadcastLogout()
		return resp, nil
	}

	replay, err := cloneRequest(req)
	if err != nil {
		return resp, nil
	}
	drainAndClose(resp)
	return c.Do(markRetried(replay))
}

// tryRefresh posts the refresh endpoint on the bare client. The server reads
// the refresh cookie from the shared jar and, on success, sets the rotated
// pair back into it.
func (c *Client) tryRefresh(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.refreshTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.refresh.Do(req)
	if err != nil {
		return false
	}
	drainAndClose(resp)
	return resp.StatusCode == http.StatusOK
}

func (c *Client) broadcastLogout() {
	if c.onLogout != nil {
		c.onLogout()
	}
}

// Get issues a GET through the interceptor and decodes the JSON body into
// out when it is non-nil.
func (c *Client) Get(ctx context.Context, path string, out interface{}) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.send(req, out)
}

// Post issues a POST with a JSON body through the interceptor.
func (c *Client) Post(ctx context.Context, path string, body interface{}, out interface{}) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) (*http.Response, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp)
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("apiclient: decoding response: %w", err)
		}
	}
	return resp, nil
}

func isAuthEndpoint(path string) bool {
	for _, p := range authEndpoints {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// cloneRequest rebuilds the request for replay. Bodies built by
// http.NewRequest from byte readers carry GetBody; anything without it
// cannot be replayed safely.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.GetBody == nil {
		clone.Body = nil
		return clone, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
