package xtream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	actionServerInfo    = "get_server_info"
	actionVODCategories = "get_vod_categories"
	actionVODStreams    = "get_vod_streams"
	actionVODInfo       = "get_vod_info"

	// maxBodyBytes caps a single player_api response; full catalogs run to tens of MB
	maxBodyBytes = 256 << 20
)

// Client talks to one panel's player_api.php on behalf of one account.
// It holds no state besides its configuration.
type Client struct {
	creds      Credentials
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent sent on API calls
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit throttles this client to rps requests per second; 0 disables it
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the given account
func New(creds Credentials, opts ...Option) *Client {
	creds.URL = strings.TrimRight(strings.TrimSpace(creds.URL), "/")
	c := &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "vodboard/1.0",
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Factory builds a client per request from a credential snapshot
type Factory func(creds Credentials) *Client

// NewFactory returns a Factory that applies opts to every client it builds.
// Each client gets its own limiter when WithRateLimit is among opts.
func NewFactory(opts ...Option) Factory {
	return func(creds Credentials) *Client {
		return New(creds, opts...)
	}
}

// Credentials returns the account this client was built for
func (c *Client) Credentials() Credentials {
	return c.creds
}

// GetServerInfo probes the panel. The payload is only used to confirm reachability.
func (c *Client) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.call(ctx, actionServerInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetCategories lists VOD categories in the order the panel returns them
func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.call(ctx, actionVODCategories, nil, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}

// GetMovies lists VOD streams, restricted to one category when categoryID is set
func (c *Client) GetMovies(ctx context.Context, categoryID string) ([]Movie, error) {
	var params [][2]string
	if categoryID != "" {
		params = append(params, [2]string{"category_id", categoryID})
	}

	var movies []Movie
	if err := c.call(ctx, actionVODStreams, params, &movies); err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []Movie{}
	}
	return movies, nil
}

// GetMovieInfo fetches the detail payload for one stream
func (c *Client) GetMovieInfo(ctx context.Context, streamID int64) (*VODInfo, error) {
	params := [][2]string{{"stream_id", strconv.FormatInt(streamID, 10)}}

	var info VODInfo
	if err := c.call(ctx, actionVODInfo, params, &info); err != nil {
		return nil, err
	}
	if info.MovieData == nil || info.MovieData.StreamID == 0 {
		return nil, fmt.Errorf("stream %d: %w", streamID, ErrNotFound)
	}
	return &info, nil
}

// GetServerStats counts categories and movies, fetching both concurrently
func (c *Client) GetServerStats(ctx context.Context) (*Stats, error) {
	var categories []Category
	var movies []Movie

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = c.GetCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		movies, err = c.GetMovies(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Stats{
		CategoriesCount: len(categories),
		MoviesCount:     len(movies),
		LastUpdated:     time.Now().UTC(),
	}, nil
}

// APIURL builds the authenticated player_api URL. Parameter order is
// username, password, action, then extras, matching what panels expect.
func (c *Client) APIURL(action string, params [][2]string) string {
	return c.buildURL(action, params, c.creds.Password)
}

func (c *Client) buildURL(action string, params [][2]string, password string) string {
	var b strings.Builder
	b.WriteString(c.creds.URL)
	b.WriteString("/player_api.php?username=")
	b.WriteString(url.QueryEscape(c.creds.Username))
	b.WriteString("&password=")
	b.WriteString(url.QueryEscape(password))
	b.WriteString("&action=")
	b.WriteString(url.QueryEscape(action))
	for _, kv := range params {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}

func (c *Client) call(ctx context.Context, action string, params [][2]string, out any) error {
	start := time.Now()
	redacted := c.buildURL(action, params, "REDACTED")

	err := c.fetch(ctx, action, params, redacted, out)
	requestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())

	outcome := outcomeOK
	switch {
	case errors.Is(err, ErrMalformedResponse):
		outcome = outcomeMalformed
	case err != nil:
		outcome = outcomeUnavailable
	}
	requestsTotal.WithLabelValues(action, outcome).Inc()

	c.logger.Debug("player_api call",
		zap.String("action", action),
		zap.String("url", redacted),
		zap.String("outcome", outcome),
		zap.Duration("duration", time.Since(start)),
	)

	return err
}

func (c *Client) fetch(ctx context.Context, action string, params [][2]string, redacted string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &RemoteError{Action: action, Err: err, kind: ErrRemoteUnavailable}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL(action, params), nil)
	if err != nil {
		return &RemoteError{Action: action, Err: redactURLError(err, redacted), kind: ErrRemoteUnavailable}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Action: action, Err: redactURLError(err, redacted), kind: ErrRemoteUnavailable}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &RemoteError{Action: action, StatusCode: resp.StatusCode, kind: ErrRemoteUnavailable}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &RemoteError{Action: action, Err: err, kind: ErrRemoteUnavailable}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RemoteError{Action: action, Err: err, kind: ErrMalformedResponse}
	}
	return nil
}

// redactURLError keeps credentials out of error strings that embed the request URL
func redactURLError(err error, redacted string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = redacted
	}
	return err
}
