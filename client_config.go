package neos_go

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neos-go/neos-go/api"
	"github.com/neos-go/neos-go/logger"
	"github.com/neos-go/neos-go/rate"
)

type config struct {
	// transport specifies the HTTP transport mechanism
	// for making requests.
	// It's useful for mocking or if customers
	// want to add extra logging, headers, etc.
	// default: a clone of http.DefaultTransport
	transport http.RoundTripper

	// httpClient replaces the whole HTTP client; transport and
	// timeout are ignored when it is set.
	httpClient *http.Client

	// timeout sets the maximum duration for HTTP requests
	// before they are cancelled
	// default: 120 seconds
	timeout time.Duration

	// logger provides logging functionality for all internal
	// neos-go client operations
	// default: logger.Noop
	logger logger.Logger

	// default: https://www.neosvr-api.com/api/
	baseUrl string

	// minRequestInterval is the minimum time between two requests
	// sent by a client and all of its clones. Non-positive disables it.
	// default: 100 milliseconds
	minRequestInterval time.Duration

	// defaultRateLimitDelay is how long requests are held back after
	// a rate limit response that does not say when to retry.
	// default: 2 seconds
	defaultRateLimitDelay time.Duration

	// default: the global otel providers
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func defaultConfig() *config {
	return &config{
		timeout:               api.DefaultTimeout,
		logger:                logger.Noop{},
		baseUrl:               api.DefaultBaseUrl,
		minRequestInterval:    rate.DefaultMinInterval,
		defaultRateLimitDelay: rate.DefaultDelay,
	}
}

func (c *config) dispatcherConfig(userAgent string) api.DispatcherConfig {
	interval := c.minRequestInterval
	if interval <= 0 {
		interval = -1
	}
	return api.DispatcherConfig{
		UserAgent:             userAgent,
		BaseUrl:               c.baseUrl,
		HttpClient:            c.httpClient,
		Transport:             c.transport,
		Timeout:               c.timeout,
		MinRequestInterval:    interval,
		DefaultRateLimitDelay: c.defaultRateLimitDelay,
		Logger:                c.logger,
		TracerProvider:        c.tracerProvider,
		MeterProvider:         c.meterProvider,
	}
}

type ConfigOption func(c *config)

func WithTransport(transport http.RoundTripper) ConfigOption {
	return func(c *config) {
		c.transport = transport
	}
}

func WithHttpClient(httpClient *http.Client) ConfigOption {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *config) {
		c.timeout = timeout
	}
}

func WithLogger(logger logger.Logger) ConfigOption {
	return func(c *config) {
		c.logger = logger
	}
}

func WithBaseUrl(baseUrl string) ConfigOption {
	return func(c *config) {
		c.baseUrl = baseUrl
	}
}

func WithMinRequestInterval(interval time.Duration) ConfigOption {
	return func(c *config) {
		c.minRequestInterval = interval
	}
}

func WithDefaultRateLimitDelay(delay time.Duration) ConfigOption {
	return func(c *config) {
		c.defaultRateLimitDelay = delay
	}
}

func WithTracerProvider(tp trace.TracerProvider) ConfigOption {
	return func(c *config) {
		c.tracerProvider = tp
	}
}

func WithMeterProvider(mp metric.MeterProvider) ConfigOption {
	return func(c *config) {
		c.meterProvider = mp
	}
}
