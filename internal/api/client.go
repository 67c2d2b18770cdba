// Package api is the client for the S.S BAGS REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/ssbags/storefront/pkg/errors"
	"github.com/ssbags/storefront/pkg/httpclient"
	"github.com/ssbags/storefront/pkg/logger"
	"github.com/ssbags/storefront/pkg/tracing"
)

// DefaultBaseURL is where a locally started backend serves its API.
const DefaultBaseURL = "http://localhost:8000/api"

// MsgUnreachable is reported when the backend could not be reached at all.
const MsgUnreachable = "Could not reach the store. Please check your connection and try again."

// Client talks to the backend. Every call is sent once; failures are
// returned as *apperrors.AppError.
type Client struct {
	http    httpclient.Doer
	baseURL *url.URL
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a client for baseURL, e.g. "http://localhost:8000/api".
func New(doer httpclient.Doer, baseURL string, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.InvalidInput("api base url must be http or https: " + baseURL)
	}
	return &Client{
		http:    doer,
		baseURL: u,
		logger:  logger,
		tracer:  tracing.Tracer("storefront/api"),
	}, nil
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return strings.TrimSuffix(c.baseURL.String(), "/")
}

// request describes one backend call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	token  string
	body   any

	// raw overrides body for non-JSON payloads.
	raw         io.Reader
	contentType string
}

// resolve joins a relative path onto the API root. Paths starting with "/"
// are taken from the server root.
func (c *Client) resolve(path string, query url.Values) string {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends r and decodes a 2xx JSON answer into out, when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "api."+r.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", r.method),
			attribute.String("api.path", r.path),
		),
	)
	defer func() { tracing.End(span, err) }()

	body := r.raw
	contentType := r.contentType
	if body == nil && r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", r.op, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.resolve(r.path, r.query), body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	req.Header.Set("X-Correlation-ID", correlationID)
	tracing.Inject(ctx, req.Header)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return c.transportError(ctx, r, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, r.op)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", r.op, err)
	}
	return nil
}

// transportError maps failures that produced no usable response.
func (c *Client) transportError(ctx context.Context, r request, err error) error {
	var serverErr *httpclient.ServerError
	if errors.As(err, &serverErr) {
		return serverError(serverErr, r.op)
	}

	c.logger.WarnContext(ctx, "backend call failed",
		slog.String("op", r.op),
		slog.String("path", r.path),
		slog.String("error", err.Error()),
	)
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		return apperrors.Unavailable("The store is not responding. Please try again shortly.", err)
	}
	return apperrors.Unavailable(MsgUnreachable, err)
}

// serverError turns a 5xx answer drained by the circuit breaker into the
// same error ParseResponseError would have produced.
func serverError(se *httpclient.ServerError, op string) error {
	var body httpclient.ErrorBody
	message := ""
	if json.Unmarshal(se.Body, &body) == nil {
		message = body.Message()
	}
	if message == "" {
		message = op + " failed"
	}
	return httpclient.StatusError(se.Status, message)
}

// Ping checks that the backend answers its health endpoint, which lives
// at the server root rather than under the API prefix.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, request{op: "health", method: http.MethodGet, path: "/health"}, nil)
}
