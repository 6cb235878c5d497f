// Package webclient provides a minimal blocking HTTP request gateway: one
// reusable transfer handle per client, GET/POST with optional headers and
// form bodies, and a buffered Response. A client performs one request at a
// time; callers sharing a client across goroutines must serialize access.
package webclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Option configures a Client at construction time.
type Option func(*options)

type options struct {
	timeout time.Duration
	handle  Handle
}

// WithTimeout bounds each transfer. The default is no timeout, matching a
// plain blocking client; production callers should set one.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHandle substitutes the transfer handle. This is useful for injecting
// instrumented fakes during testing.
func WithHandle(h Handle) Option {
	return func(o *options) { o.handle = h }
}

// Client owns a single transfer handle for its whole lifetime and executes
// one blocking request per call.
type Client struct {
	handle    Handle
	buf       chunkBuffer
	closeOnce sync.Once
	closeErr  error
}

// New acquires a transfer handle and returns a client ready for requests.
// Returns an InitError if the handle cannot be created; no operations may
// be attempted on the client in that case.
func New(opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	h := o.handle
	if h == nil {
		rh, err := newRestyHandle(o.timeout)
		if err != nil {
			return nil, &InitError{Err: err}
		}
		h = rh
	}
	return &Client{handle: h}, nil
}

// Close releases the handle. Exactly one release happens no matter how many
// times Close is called.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if c.handle != nil {
			c.closeErr = c.handle.Close()
		}
	})
	return c.closeErr
}

// Get performs a blocking GET request.
func (c *Client) Get(ctx context.Context, rawurl string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawurl, nil, headers, nil)
}

// Post performs a blocking POST request. A non-empty data map is sent as an
// application/x-www-form-urlencoded body.
func (c *Client) Post(ctx context.Context, rawurl string, data, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPost, rawurl, data, headers, nil)
}

// FetchTo performs a GET whose body chunks stream into w instead of being
// buffered, and returns the final status code. Large transfers (model
// downloads) use this path.
func (c *Client) FetchTo(ctx context.Context, rawurl string, w io.Writer, headers map[string]string) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, rawurl, nil, headers, w)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// do is the single request routine behind Get, Post and FetchTo. Any
// configuration failure or transfer failure surfaces as an error and no
// partial Response is ever returned; the per-request header list is
// released on every exit path.
func (c *Client) do(ctx context.Context, method, rawurl string, data, headers map[string]string, sink io.Writer) (*Response, error) {
	if rawurl == "" {
		return nil, &ConfigError{Option: "url", Err: errors.New("empty url")}
	}

	c.handle.Reset()
	c.buf.reset()

	if err := c.handle.SetURL(rawurl); err != nil {
		return nil, &ConfigError{Option: "url", Err: err}
	}

	buffered := sink == nil
	if buffered {
		sink = &c.buf
	}
	if err := c.handle.SetSink(sink); err != nil {
		return nil, &ConfigError{Option: "sink", Err: err}
	}

	if len(headers) > 0 {
		list := newHeaderList(headers)
		defer list.release()
		if err := c.handle.SetHeaderList(list); err != nil {
			return nil, &ConfigError{Option: "headers", Err: err}
		}
	}

	if method == http.MethodPost {
		if err := c.handle.SetPost(formEncode(data)); err != nil {
			return nil, &ConfigError{Option: "post body", Err: err}
		}
	}

	if err := c.handle.SetFollowRedirects(true); err != nil {
		return nil, &ConfigError{Option: "redirect policy", Err: err}
	}

	if err := c.handle.Perform(ctx); err != nil {
		return nil, &TransportError{Err: err}
	}

	status, err := c.handle.StatusCode()
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	resp := &Response{StatusCode: status, Headers: map[string]string{}}
	if buffered {
		resp.Body = c.buf.bytes()
	}
	return resp, nil
}

// formEncode serializes data as application/x-www-form-urlencoded
// ("a=1+2&b=x%26y"), keys in sorted order.
func formEncode(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}
	v := url.Values{}
	for k, val := range data {
		v.Set(k, val)
	}
	return v.Encode()
}
