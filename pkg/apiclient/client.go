package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "http://localhost:3001"
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3
)

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Retries is the number of extra attempts for GET requests. Negative disables retries.
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Proxy routes every request through an HTTP proxy. Useful for debugging.
	Proxy string
	// Logger receives retry diagnostics. Nil discards them.
	Logger *logrus.Logger
}

// Client sends JSON requests to the recommendations API.
// GET requests retry on failure (never on 401). Every other method is attempted once.
type Client struct {
	baseURL *url.URL
	query   *retryablehttp.Client
	mutate  *retryablehttp.Client

	mu    sync.RWMutex
	token string

	subMu sync.Mutex
	subs  map[uuid.UUID]func()
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", opts.BaseURL)
	}

	var proxy *url.URL
	if opts.Proxy != "" {
		if proxy, err = url.Parse(opts.Proxy); err != nil || proxy.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", opts.Proxy)
		}
	}

	c := &Client{
		baseURL: base,
		query:   newRetryClient(opts, opts.Retries, proxy),
		mutate:  newRetryClient(opts, 0, proxy),
		subs:    make(map[uuid.UUID]func()),
	}
	return c, nil
}

func newRetryClient(opts Options, retries int, proxy *url.URL) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.HTTPClient.Timeout = opts.Timeout
	if t, ok := rc.HTTPClient.Transport.(*http.Transport); ok && proxy != nil {
		t.Proxy = http.ProxyURL(proxy)
	}
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Logger != nil {
		rc.Logger = leveledLogger{opts.Logger}
	} else {
		rc.Logger = log.New(io.Discard, "", 0)
	}
	return rc
}

// checkRetry retries transport failures and every error status except 401.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return false, nil
	}
	return resp.StatusCode >= 400, nil
}

// SetAuthToken sets the bearer token attached to every request. An empty token removes the header.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnUnauthorized registers fn to run whenever a response comes back with status 401.
// The returned function unregisters it.
func (c *Client) OnUnauthorized(fn func()) (cancel func()) {
	id := uuid.New()
	c.subMu.Lock()
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Client) broadcastUnauthorized() {
	c.subMu.Lock()
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Get issues a GET for path with the given query and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, c.query, http.MethodGet, path, query, nil, out)
}

// Post issues a POST for path. A nil body sends no payload.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.mutate, http.MethodPost, path, nil, body, out)
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	u, err := url.Parse(strings.TrimRight(c.baseURL.String(), "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, rc *retryablehttp.Client, method, path string, query url.Values, body, out any) error {
	var (
		payload []byte
		err     error
	)
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not encode request body: %w", err)
		}
	}

	target, err := c.endpoint(path, query)
	if err != nil {
		return fmt.Errorf("could not build url for %s: %w", path, err)
	}
	var rawBody interface{}
	if payload != nil {
		rawBody = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, rawBody)
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.AuthToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := rc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.broadcastUnauthorized()
	}
	if resp.StatusCode >= 400 {
		return &ResponseError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: data}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("could not decode %s %s response: %w", method, path, err)
	}
	return nil
}

// leveledLogger routes retryablehttp diagnostics through logrus.
type leveledLogger struct {
	l *logrus.Logger
}

func (a leveledLogger) fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

func (a leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	a.l.WithFields(a.fields(keysAndValues)).Error(msg)
}

func (a leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	a.l.WithFields(a.fields(keysAndValues)).Info(msg)
}

func (a leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	a.l.WithFields(a.fields(keysAndValues)).Debug(msg)
}

func (a leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	a.l.WithFields(a.fields(keysAndValues)).Warn(msg)
}

var _ retryablehttp.LeveledLogger = leveledLogger{}
