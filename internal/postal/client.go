// Package postal resolves Brazilian postal codes (CEP) to addresses through
// ViaCEP, or through the server's ViaCEP-compatible proxy.
package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cadastro/internal/platform/metrics"
)

const (
	// ViaCEPPath is the upstream path template.
	ViaCEPPath = "/ws/%s/json/"
	// ProxyPath is the path template served by cmd/server.
	ProxyPath = "/v1/cep/%s"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 64 << 10
)

// Client looks CEPs up over HTTP.
type Client struct {
	baseURL    string
	path       string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

// WithPath overrides the path template; it must contain one %s for the CEP.
func WithPath(format string) Option {
	return func(cl *Client) { cl.path = format }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) { cl.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       ViaCEPPath,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
		tracer:     otel.Tracer("cadastro/postal"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup resolves cep (digits only, or formatted as 01001-000). It returns
// ErrNotFound when the service has no usable address and a *Error for every
// other failure.
func (c *Client) Lookup(ctx context.Context, cep string) (addr *Address, err error) {
	cep = Normalize(cep)
	ctx, span := c.tracer.Start(ctx, "postal.Lookup",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("postal.cep", cep)),
	)
	start := time.Now()
	defer func() {
		outcome := lookupOutcome(err)
		if c.metrics != nil {
			c.metrics.ObservePostalLookup(outcome, time.Since(start))
		}
		span.SetAttributes(attribute.String("postal.outcome", outcome))
		if err != nil && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !Valid(cep) {
		return nil, NewError(CategoryInvalidInput, "cep must have 8 digits", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fmt.Sprintf(c.path, cep), nil)
	if err != nil {
		return nil, NewError(CategoryInternal, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, NewError(CategoryTimeout, "cep lookup timed out", err)
		}
		return nil, NewError(CategoryOutage, "cep service unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, NewError(CategoryOutage, "failed to read response", err)
	}
	return parseResponse(resp.StatusCode, body)
}

func parseResponse(status int, body []byte) (*Address, error) {
	switch {
	case status == http.StatusBadRequest:
		return nil, NewError(CategoryInvalidInput, "cep rejected by the lookup service", nil)
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status == http.StatusTooManyRequests:
		return nil, NewError(CategoryRateLimited, "cep service rate limit exceeded", nil)
	case status >= 500:
		return nil, NewError(CategoryOutage, fmt.Sprintf("cep service returned %d", status), nil)
	case status != http.StatusOK:
		return nil, NewError(CategoryBadData, fmt.Sprintf("unexpected status %d", status), nil)
	}

	var payload viaCEPResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewError(CategoryBadData, "malformed response", err)
	}
	if payload.Erro {
		return nil, ErrNotFound
	}
	addr := payload.Address
	if !addr.Usable() {
		return nil, ErrNotFound
	}
	addr.CEP = Normalize(addr.CEP)
	return &addr, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return string(GetCategory(err))
	}
}
