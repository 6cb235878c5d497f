package webclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetEchoesRequestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "X-Alpha=%s;X-Beta=%s", r.Header.Get("X-Alpha"), r.Header.Get("X-Beta"))
	}))
	defer srv.Close()

	c := newTestClient(t)
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{
		"X-Alpha": "one",
		"X-Beta":  "two",
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Text(); got != "X-Alpha=one;X-Beta=two" {
		t.Fatalf("body = %q", got)
	}
	if len(resp.Headers) != 0 {
		t.Fatalf("transfer populated headers: %v", resp.Headers)
	}
}

func TestPostFormEncoding(t *testing.T) {
	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	c := newTestClient(t)
	if _, err := c.Post(context.Background(), srv.URL, map[string]string{
		"a": "1 2",
		"b": "x&y",
	}, nil); err != nil {
		t.Fatalf("Post: %v", err)
	}

	if gotBody != "a=1+2&b=x%26y" {
		t.Fatalf("form body = %q, want %q", gotBody, "a=1+2&b=x%26y")
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("content type = %q", gotContentType)
	}
}

func TestRedirectFollowedToFinalResource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "landed")
	})
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t)
	resp, err := c.Get(context.Background(), srv.URL+"/start", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 after redirect", resp.StatusCode)
	}
	if got := resp.Text(); got != "landed" {
		t.Fatalf("body = %q", got)
	}
}

func TestSequentialCallsDoNotMixBodies(t *testing.T) {
	var n int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n++
		fmt.Fprintf(w, "call-%d", n)
	}))
	defer srv.Close()

	c := newTestClient(t)
	first, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	second, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}

	if got := first.Text(); got != "call-1" {
		t.Fatalf("first body = %q", got)
	}
	if got := second.Text(); got != "call-2" {
		t.Fatalf("second body = %q (data leaked across calls)", got)
	}
}

func TestUnreachableHostYieldsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	c := newTestClient(t)
	resp, err := c.Get(context.Background(), target, nil)
	if err == nil {
		t.Fatalf("expected error, got response %+v", resp)
	}
	if resp != nil {
		t.Fatalf("partial response on failure: %+v", resp)
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
}

func TestEmptyURLRejected(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Get(context.Background(), "", nil)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
	if cfgErr.Option != "url" {
		t.Fatalf("option = %q, want url", cfgErr.Option)
	}
}

func TestFetchToStreamsBody(t *testing.T) {
	payload := strings.Repeat("chunky", 20000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, payload)
	}))
	defer srv.Close()

	c := newTestClient(t)
	var sink strings.Builder
	status, err := c.FetchTo(context.Background(), srv.URL, &sink, nil)
	if err != nil {
		t.Fatalf("FetchTo: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if sink.String() != payload {
		t.Fatalf("streamed %d bytes, want %d", sink.Len(), len(payload))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
