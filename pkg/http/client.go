package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/flanksource/clicky/task"
	commonshttp "github.com/flanksource/commons/http"
	"github.com/flanksource/commons/logger"
	"github.com/flanksource/ghidra-install/pkg/utils"
)

// UserAgent is sent on every request; GitHub rejects requests without one
const UserAgent = "ghidra-install"

const maxRedirects = 10

// ClientOption configures the HTTP client
type ClientOption func(*clientConfig)

type clientConfig struct {
	timeout      time.Duration
	headerLevel  logger.LogLevel
	bodyLevel    logger.LogLevel
	enableLogger bool
	task         *task.Task
}

// WithTimeout sets the overall request timeout, 0 disables it
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithHttpLogging enables HTTP logging with specified levels
func WithHttpLogging(headerLevel, bodyLevel logger.LogLevel) ClientOption {
	return func(c *clientConfig) {
		c.headerLevel = headerLevel
		c.bodyLevel = bodyLevel
		c.enableLogger = true
	}
}

// WithTask logs redirects on t
func WithTask(t *task.Task) ClientOption {
	return func(c *clientConfig) {
		c.task = t
	}
}

// GetHttpClient returns an HTTP client backed by flanksource/commons/http.
// Header and body logging is only enabled when trace logging is on.
func GetHttpClient(opts ...ClientOption) *http.Client {
	cfg := &clientConfig{
		timeout:      30 * time.Second,
		headerLevel:  logger.Trace1,
		bodyLevel:    logger.Trace2,
		enableLogger: logger.IsTraceEnabled(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := commonshttp.NewClient().
		Timeout(cfg.timeout)

	if cfg.enableLogger {
		client = client.WithHttpLogging(cfg.headerLevel, cfg.bodyLevel)
	}

	t := cfg.task
	return &http.Client{
		Transport: &userAgentTransport{next: client},
		Timeout:   cfg.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects (limit: %d)", maxRedirects)
			}
			if t != nil && len(via) > 0 {
				from := utils.ShortenURL(via[len(via)-1].URL.String())
				to := utils.ShortenURL(req.URL.String())
				t.V(4).Infof("Redirect: %s → %s", from, to)
			}
			return nil
		},
	}
}

type userAgentTransport struct {
	next http.RoundTripper
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return u.next.RoundTrip(req)
}
