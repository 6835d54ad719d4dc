package api

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
	"unicode/utf8"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neos-go/neos-go/errors"
	"github.com/neos-go/neos-go/logger"
	"github.com/neos-go/neos-go/rate"
)

const (
	DefaultBaseUrl = "https://www.neosvr-api.com/api/"
	DefaultTimeout = 120 * time.Second

	HeaderAuthorization = "Authorization"

	maxRedirects           = 5
	maxResponseHeaderBytes = 8 << 20
)

// Response is a successful (2xx) API response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RequestBuilder customizes a request before it is sent. Returning an
// error aborts the dispatch; nothing is sent in that case.
type RequestBuilder func(req *http.Request) error

// Requester is implemented by everything able to send API requests: the
// Dispatcher itself and every client variant wrapping it.
type Requester interface {
	Dispatch(ctx context.Context, method string, path string, build RequestBuilder) (*Response, error)
}

// DispatcherConfig configures a Dispatcher. Only UserAgent is required.
type DispatcherConfig struct {
	UserAgent string
	BaseUrl   string

	// HttpClient is used as is when set; Transport and Timeout are then
	// ignored.
	HttpClient *http.Client
	Transport  http.RoundTripper
	Timeout    time.Duration

	// MinRequestInterval is the spacing floor between two requests.
	// Zero means rate.DefaultMinInterval, a negative value disables it.
	MinRequestInterval time.Duration
	// DefaultRateLimitDelay is how long to hold back requests after a
	// rate limit signal without a reset hint.
	DefaultRateLimitDelay time.Duration

	// Tracker and Spacer replace the ones the Dispatcher would create.
	Tracker *rate.Tracker
	Spacer  *rate.Spacer

	Logger         logger.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Dispatcher sends requests to the Neos API. It honors the rate limit
// deadline announced by the API, keeps a minimum interval between
// requests and classifies responses.
//
// A Dispatcher is safe for concurrent use and is meant to be shared by
// every client variant derived from the same root client.
type Dispatcher struct {
	baseUrl    string
	userAgent  string
	httpClient *http.Client
	tracker    *rate.Tracker
	spacer     *rate.Spacer
	logger     logger.Logger
	instr      *instrumentation
}

var _ Requester = &Dispatcher{}

func NewDispatcher(config DispatcherConfig) *Dispatcher {
	log := config.Logger
	if log == nil {
		log = logger.Noop{}
	}

	baseUrl := config.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	if !strings.HasSuffix(baseUrl, "/") {
		baseUrl += "/"
	}

	tracker := config.Tracker
	if tracker == nil {
		opts := []rate.TrackerOption{rate.WithLogger(log)}
		if config.DefaultRateLimitDelay > 0 {
			opts = append(opts, rate.WithDefaultDelay(config.DefaultRateLimitDelay))
		}
		tracker = rate.NewTracker(opts...)
	}

	spacer := config.Spacer
	if spacer == nil {
		interval := config.MinRequestInterval
		if interval == 0 {
			interval = rate.DefaultMinInterval
		}
		spacer = rate.NewSpacer(interval)
	}

	httpClient := config.HttpClient
	if httpClient == nil {
		httpClient = newHttpClient(config.Transport, config.Timeout)
	}

	return &Dispatcher{
		baseUrl:    baseUrl,
		userAgent:  config.UserAgent,
		httpClient: httpClient,
		tracker:    tracker,
		spacer:     spacer,
		logger:     log,
		instr:      newInstrumentation(config.TracerProvider, config.MeterProvider, log),
	}
}

func newHttpClient(transport http.RoundTripper, timeout time.Duration) *http.Client {
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.MaxResponseHeaderBytes = maxResponseHeaderBytes
		transport = t
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

func (d *Dispatcher) Tracker() *rate.Tracker {
	return d.tracker
}

func (d *Dispatcher) Spacer() *rate.Spacer {
	return d.spacer
}

func (d *Dispatcher) UserAgent() string {
	return d.userAgent
}

// Dispatch waits for any rate limit deadline and for the spacing floor,
// sends the request and classifies the response.
//
// path is relative to the base URL and may carry a query string. The
// returned error is always an *errors.RequestError.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	method string,
	path string,
	build RequestBuilder,
) (*Response, error) {
	ctx, span := d.instr.start(ctx, method, path)
	start := time.Now()
	res, err := d.dispatch(ctx, method, path, build)
	d.instr.record(ctx, span, method, start, res, err)
	return toNilErr(res, err)
}

// wait holds the caller until no rate limit deadline is pending and its
// spacing slot has come. A deadline stored while waiting for the slot
// starts the wait over.
func (d *Dispatcher) wait(ctx context.Context) error {
	for {
		if err := d.tracker.WaitIfBlocked(ctx); err != nil {
			return err
		}
		if err := d.spacer.Wait(ctx); err != nil {
			return err
		}
		if !d.tracker.Blocked() {
			return nil
		}
	}
}

func (d *Dispatcher) dispatch(
	ctx context.Context,
	method string,
	path string,
	build RequestBuilder,
) (*Response, *errors.RequestError) {
	if err := d.wait(ctx); err != nil {
		return nil, &errors.RequestError{
			Kind:      errors.KIND_OTHER,
			Stage:     errors.STAGE_BEFORE_REQUEST,
			SourceErr: err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, d.url(path), nil)
	if err != nil {
		return nil, &errors.RequestError{
			Kind:      errors.KIND_OTHER,
			Stage:     errors.STAGE_BEFORE_REQUEST,
			SourceErr: err,
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.userAgent)

	if build != nil {
		if err = build(req); err != nil {
			return nil, &errors.RequestError{
				Kind:      errors.KIND_OTHER,
				Stage:     errors.STAGE_BEFORE_REQUEST,
				SourceErr: err,
			}
		}
	}

	d.logger.Debugf("Neos API request: %s %s", method, req.URL.Path)
	res, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Debugf("Neos API request failed: %s %s: %v", method, req.URL.Path, err)
		return nil, &errors.RequestError{
			Kind:      errors.KIND_OTHER,
			Stage:     errors.STAGE_REQUEST,
			SourceErr: err,
		}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &errors.RequestError{
			Kind:       errors.KIND_OTHER,
			Stage:      errors.STAGE_AFTER_REQUEST,
			SourceErr:  err,
			Body:       body,
			StatusCode: res.StatusCode,
		}
	}

	return d.classify(res.StatusCode, res.Header, body)
}

func (d *Dispatcher) url(path string) string {
	return d.baseUrl + strings.TrimPrefix(path, "/")
}

// WithJSON sets v, encoded as JSON, as the request body.
func WithJSON(v any) RequestBuilder {
	return func(req *http.Request) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(data))
		req.ContentLength = int64(len(data))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		return nil
	}
}

// WithQuery adds a query parameter.
func WithQuery(key string, value string) RequestBuilder {
	return func(req *http.Request) error {
		q := req.URL.Query()
		q.Add(key, value)
		req.URL.RawQuery = q.Encode()
		return nil
	}
}

func WithHeader(key string, value string) RequestBuilder {
	return func(req *http.Request) error {
		req.Header.Set(key, value)
		return nil
	}
}

// Chain runs builders in order and stops at the first error. nil
// builders are skipped.
func Chain(builders ...RequestBuilder) RequestBuilder {
	return func(req *http.Request) error {
		for _, build := range builders {
			if build == nil {
				continue
			}
			if err := build(req); err != nil {
				return err
			}
		}
		return nil
	}
}

func getJson[T any](ctx context.Context, r Requester, path string, builders ...RequestBuilder) (*T, error) {
	return sendJson[T](ctx, r, http.MethodGet, path, builders...)
}

func sendJson[T any](
	ctx context.Context,
	r Requester,
	method string,
	path string,
	builders ...RequestBuilder,
) (*T, error) {
	res, err := r.Dispatch(ctx, method, path, Chain(builders...))
	if err != nil {
		return nil, err
	}
	out, decodeErr := decodeJson[T](res)
	if decodeErr != nil {
		return nil, decodeErr
	}
	return &out, nil
}

func send(
	ctx context.Context,
	r Requester,
	method string,
	path string,
	builders ...RequestBuilder,
) error {
	_, err := r.Dispatch(ctx, method, path, Chain(builders...))
	return err
}

// decodeJson decodes a successful response body. Bodies that are not
// valid UTF-8 or not the expected JSON fail with KIND_DESERIALIZATION.
func decodeJson[T any](res *Response) (T, *errors.RequestError) {
	var out T
	if !utf8.Valid(res.Body) {
		return out, &errors.RequestError{
			Kind:       errors.KIND_DESERIALIZATION,
			Stage:      errors.STAGE_AFTER_REQUEST,
			SourceErr:  fmt.Errorf("response body is not valid UTF-8"),
			Body:       res.Body,
			StatusCode: res.StatusCode,
		}
	}
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return out, &errors.RequestError{
			Kind:       errors.KIND_DESERIALIZATION,
			Stage:      errors.STAGE_AFTER_REQUEST,
			SourceErr:  err,
			Body:       res.Body,
			StatusCode: res.StatusCode,
		}
	}
	return out, nil
}

func pathWith(path string, params ...string) string {
	for i := 0; i+1 < len(params); i += 2 {
		path = strings.Replace(path, params[i], url.PathEscape(params[i+1]), 1)
	}
	return path
}

// toNilErr converts a *errors.RequestError type to be a true nil interface.
// Internally, a Go interface has a Type and Value.
// An interface value is nil only if the V and T are both unset.
// See: https://go.dev/doc/faq#nil_error
func toNilErr[T any](r T, e *errors.RequestError) (T, error) {
	if e != nil {
		return r, e
	}
	return r, nil
}
