package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// FileNamespace is the query API's namespace number for file pages.
const FileNamespace = 6

const (
	DefaultHost      = "commons.wikimedia.org"
	DefaultUserAgent = "imker/1.0 (https://github.com/ccollins476ad/imker)"

	// defaultLagWait is used when the server asks us to back off without
	// saying for how long.
	defaultLagWait = 5 * time.Second
)

// Options configures a Client.
type Options struct {
	Host      string // e.g. "commons.wikimedia.org" or "127.0.0.1:8080".
	Scheme    string // "https" unless talking to a test server.
	APIPath   string
	UserAgent string

	// MaxLag is sent with every query. The server refuses to answer while
	// its replicas lag behind by more than this, and tells us how long to
	// wait instead.
	MaxLag time.Duration

	// MaxLagWaits bounds how many consecutive server-requested waits a
	// single request honors before it gives up with a RemoteError.
	MaxLagWaits int

	// Timeout bounds each API query. Content downloads are only bounded by
	// the time to first response byte, since media files can be large.
	Timeout time.Duration

	// HTTPClient overrides the client built from the options above.
	HTTPClient *http.Client
}

// DefaultOptions returns the options for the Wikimedia Commons deployment.
func DefaultOptions() Options {
	return Options{
		Host:        DefaultHost,
		Scheme:      "https",
		APIPath:     "/w/api.php",
		UserAgent:   DefaultUserAgent,
		MaxLag:      3 * time.Second,
		MaxLagWaits: 10,
		Timeout:     30 * time.Second,
	}
}

// Client talks to the query API of one MediaWiki installation. It holds no
// per-request state; every method is safe to call repeatedly.
type Client struct {
	hc     *http.Client
	opts   Options
	apiURL string

	// wait blocks for d or until ctx is done. Replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client for the configured endpoint. Zero-valued
// options fall back to DefaultOptions.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.Host == "" {
		opts.Host = def.Host
	}
	if opts.Scheme == "" {
		opts.Scheme = def.Scheme
	}
	if opts.APIPath == "" {
		opts.APIPath = def.APIPath
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.MaxLagWaits <= 0 {
		opts.MaxLagWaits = def.MaxLagWaits
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: opts.Timeout,
				IdleConnTimeout:       90 * time.Second,
			},
		}
	}

	return &Client{
		hc:     hc,
		opts:   opts,
		apiURL: opts.Scheme + "://" + opts.Host + opts.APIPath,
		wait:   sleepCtx,
	}
}

// envelope holds the parts of a query response that are common to every
// query.
type envelope struct {
	Error    *APIError         `json:"error"`
	Continue map[string]string `json:"continue"`
}

// query performs a GET against the query API and decodes the response into
// v. It returns the continuation parameters of the response, or nil if the
// result set is complete. Server-requested waits (max lag, rate limiting)
// are honored here and are invisible to the caller.
func (c *Client) query(ctx context.Context, params url.Values, v any) (map[string]string, error) {
	u := c.queryURL(params)

	for waits := 0; ; waits++ {
		body, wait, err := c.queryOnce(ctx, u)
		if err != nil {
			return nil, err
		}

		if wait == 0 {
			var env envelope
			if err := json.Unmarshal(body, &env); err != nil {
				return nil, &RemoteError{Op: "decode response", Err: err}
			}
			if env.Error != nil {
				return nil, classifyAPIError(env.Error)
			}
			if err := json.Unmarshal(body, v); err != nil {
				return nil, &RemoteError{Op: "decode response", Err: err}
			}
			return env.Continue, nil
		}

		if waits >= c.opts.MaxLagWaits {
			return nil, &RemoteError{
				Op:  "query",
				Err: fmt.Errorf("server still busy after %d waits", waits),
			}
		}

		log.Debugf("server asked to back off: waiting %s", wait)
		if err := c.wait(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// queryOnce sends a single API request. A non-zero wait means the server
// declined to answer and asked to be retried after that interval.
func (c *Client) queryOnce(ctx context.Context, u string) ([]byte, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	rsp, err := c.get(ctx, u)
	if err != nil {
		return nil, 0, err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode == http.StatusTooManyRequests || rsp.StatusCode == http.StatusServiceUnavailable {
		if ra := rsp.Header.Get("Retry-After"); ra != "" {
			return nil, retryAfter(ra), nil
		}
	}
	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return nil, 0, &RemoteError{Op: "query", StatusCode: rsp.StatusCode, Err: fmt.Errorf("%s", rsp.Status)}
	}

	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, 0, &RemoteError{Op: "read response", Err: err}
	}

	// A lagged server still answers 200; the error code is in the body.
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil && isBackoffCode(env.Error.Code) {
		return nil, retryAfter(rsp.Header.Get("Retry-After")), nil
	}

	return body, 0, nil
}

// get sends a GET request and returns the response if one was received. The
// caller closes the body.
func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	log.Debugf("get: %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	rsp, err := c.hc.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: "get " + u, Err: err}
	}
	return rsp, nil
}

func (c *Client) queryURL(params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	if c.opts.MaxLag > 0 {
		q.Set("maxlag", strconv.Itoa(int(c.opts.MaxLag/time.Second)))
	}
	return c.apiURL + "?" + q.Encode()
}

func isBackoffCode(code string) bool {
	return code == "maxlag" || code == "ratelimited"
}

// classifyAPIError converts an error object from a response body into the
// error kinds callers branch on.
func classifyAPIError(e *APIError) error {
	switch {
	case e.Code == "missingtitle" || e.Code == "invalidtitle" || e.Code == "nosuchpageid":
		return fmt.Errorf("%w: %v", ErrNotFound, e)
	case strings.HasPrefix(e.Code, "internal_api_error") || e.Code == "readonly":
		return &RemoteError{Op: "query", Err: e}
	default:
		return e
	}
}

// retryAfter parses a Retry-After header value, given either in seconds or
// as an HTTP date.
func retryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultLagWait
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			// Still distinguishable from "no wait requested".
			return time.Millisecond
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return defaultLagWait
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
