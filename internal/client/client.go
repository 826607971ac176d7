// Package client drives one HTTP exchange end to end: resolve the
// target, open a connection, send the serialized request, decode the
// response, and follow redirects up to the configured hop limit. Every
// hop uses a fresh connection that is closed on every exit path.
package client

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tessark/gurl/internal/auth"
	"github.com/tessark/gurl/internal/httpwire"
	"github.com/tessark/gurl/internal/target"
	"github.com/tessark/gurl/internal/tracing"
	"github.com/tessark/gurl/internal/transport"
)

// Options configures a Client. The zero value sends a plain GET with
// library defaults for limits and timeouts.
type Options struct {
	Method    string
	Headers   []httpwire.Field
	Body      httpwire.BodySource
	UserAgent string
	Auth      auth.Provider

	FollowRedirects bool

	// MaxRedirects bounds the followed hops. Zero means any redirect
	// fails the exchange; the CLI loader supplies the default of 10.
	MaxRedirects int

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MinTLSVersion  uint16

	MaxResponseSize int64
	MaxHeaderBytes  int

	// RequestID attaches a fresh ULID X-Request-Id header per attempt.
	RequestID bool

	Tracing *tracing.Provider

	// Verbose receives connection narration; nil discards it.
	Verbose io.Writer
}

// Result is the outcome of a completed exchange, after any redirects.
type Result struct {
	Status  httpwire.Status
	Header  *httpwire.Header
	Body    []byte
	Target  target.ParsedURL
	Hops    int
	Elapsed time.Duration
}

// Client executes requests. It holds no connection state between calls;
// each attempt owns its own connection.
type Client struct {
	opts Options
}

// New creates a Client from options.
func New(opts Options) *Client {
	if opts.Verbose == nil {
		opts.Verbose = io.Discard
	}
	return &Client{opts: opts}
}

// Do resolves rawURL and performs the exchange, following redirects if
// enabled. The returned Result carries the final response and the
// target it ultimately came from.
func (c *Client) Do(ctx context.Context, rawURL string) (*Result, error) {
	start := time.Now()

	current, err := target.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(c.opts.Method))
	if method == "" {
		method = "GET"
	}

	var body []byte
	if c.opts.Body != nil {
		body, err = c.opts.Body.Bytes()
		if err != nil {
			return nil, err
		}
	}

	authz := ""
	if c.opts.Auth != nil {
		authz, err = c.opts.Auth.Authorization(ctx)
		if err != nil {
			return nil, fmt.Errorf("auth provider: %w", err)
		}
	}

	remaining := c.opts.MaxRedirects
	hops := 0
	for {
		resp, err := c.attempt(ctx, current, method, body, authz)
		if err != nil {
			return nil, err
		}

		if c.opts.FollowRedirects && isRedirect(resp.Status.Code) {
			location, ok := resp.Header.Get("Location")
			if !ok || strings.TrimSpace(location) == "" {
				return nil, fmt.Errorf("%w: status %d", ErrMissingRedirectTarget, resp.Status.Code)
			}
			if remaining <= 0 {
				return nil, fmt.Errorf("%w: limit %d", ErrTooManyRedirects, c.opts.MaxRedirects)
			}
			remaining--
			hops++

			next, err := ResolveLocation(current, location)
			if err != nil {
				return nil, err
			}
			method, body = redirectMethodAndBody(resp.Status.Code, method, body)
			fmt.Fprintf(c.opts.Verbose, "Following redirect to: %s\n", next.URL())
			current = next
			continue
		}

		return &Result{
			Status:  resp.Status,
			Header:  resp.Header,
			Body:    resp.Body,
			Target:  current,
			Hops:    hops,
			Elapsed: time.Since(start),
		}, nil
	}
}

// attempt performs one hop inside a client span. The connection lives
// and dies within this call.
func (c *Client) attempt(ctx context.Context, t target.ParsedURL, method string, body []byte, authz string) (*httpwire.Response, error) {
	ctx, span := tracing.StartRequestSpan(ctx, c.opts.Tracing.Tracer(), method, t.URL())
	resp, err := c.roundTrip(ctx, t, method, body, authz)
	var attrs []attribute.KeyValue
	if resp != nil {
		attrs = append(attrs, attribute.Int("http.response.status_code", resp.Status.Code))
	}
	tracing.EndSpan(span, err, attrs...)
	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, t target.ParsedURL, method string, body []byte, authz string) (*httpwire.Response, error) {
	fmt.Fprintf(c.opts.Verbose, "Connecting to %s (%s)...\n", t.Address(), strings.ToUpper(string(t.Scheme)))

	conn, err := transport.Dial(ctx, t, transport.Options{
		ConnectTimeout: c.opts.ConnectTimeout,
		ReadTimeout:    c.opts.ReadTimeout,
		WriteTimeout:   c.opts.WriteTimeout,
		MinTLSVersion:  c.opts.MinTLSVersion,
	})
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	header := &httpwire.Header{}
	if c.opts.RequestID {
		header.Add("X-Request-Id", ulid.Make().String())
	}
	if c.opts.Tracing.ShouldPropagate() {
		tracing.InjectHeaders(ctx, header)
	}
	for _, f := range c.opts.Headers {
		header.Add(f.Name, f.Value)
	}

	spec := &httpwire.RequestSpec{
		Method:        method,
		Header:        header,
		Body:          body,
		UserAgent:     c.opts.UserAgent,
		Authorization: authz,
	}

	fmt.Fprintln(c.opts.Verbose, "Sending request...")
	if _, err := conn.Write(spec.Serialize(t)); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	fmt.Fprintln(c.opts.Verbose, "Waiting for response...")
	reader := httpwire.NewReader(conn, httpwire.Limits{
		MaxHeaderBytes: c.opts.MaxHeaderBytes,
		MaxBodyBytes:   c.opts.MaxResponseSize,
	})
	return reader.ReadResponse(method)
}
