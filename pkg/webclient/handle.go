package webclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Handle is the low-level transfer handle a Client drives. It mirrors the
// easy-handle shape of native client libraries: per-request options are set
// one at a time, Perform runs a single blocking transfer, and the handle is
// reusable until Close. Implementations are not safe for concurrent use; the
// owning Client serializes access.
type Handle interface {
	// Reset clears all per-request state left by a previous transfer.
	Reset()
	SetURL(url string) error
	// SetSink registers the writer that receives body chunks in arrival
	// order during Perform.
	SetSink(w io.Writer) error
	SetHeaderList(l *headerList) error
	// SetPost marks the next transfer as a POST carrying body (possibly
	// empty) as its form-encoded payload.
	SetPost(body string) error
	SetFollowRedirects(on bool) error
	Perform(ctx context.Context) error
	// StatusCode reports the status of the last completed transfer, 0 if
	// none completed since Reset.
	StatusCode() (int, error)
	Close() error
}

// chunkBuffer accumulates body chunks in arrival order. It is the explicit
// accumulator a Client hands to its handle, so reuse of the client cannot
// alias a previous response's data.
type chunkBuffer struct {
	chunks [][]byte
}

func (b *chunkBuffer) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	b.chunks = append(b.chunks, cp)
	return len(p), nil
}

func (b *chunkBuffer) reset() { b.chunks = nil }

// bytes concatenates the accumulated chunks in arrival order.
func (b *chunkBuffer) bytes() []byte {
	var n int
	for _, c := range b.chunks {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out
}

// maxRedirects bounds redirect following. The reference client followed
// without limit; this matches the underlying library's default instead.
const maxRedirects = 10

const readChunkSize = 32 * 1024

// restyHandle implements Handle over a resty client.
type restyHandle struct {
	client *resty.Client

	// per-request state, cleared by Reset
	url     string
	sink    io.Writer
	headers *headerList
	post    bool
	body    string
	status  int
}

func newRestyHandle(timeout time.Duration) (*restyHandle, error) {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &restyHandle{client: c}, nil
}

func (h *restyHandle) Reset() {
	h.url = ""
	h.sink = nil
	h.headers = nil
	h.post = false
	h.body = ""
	h.status = 0
}

func (h *restyHandle) SetURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("empty url")
	}
	h.url = url
	return nil
}

func (h *restyHandle) SetSink(w io.Writer) error {
	if w == nil {
		return errors.New("nil sink")
	}
	h.sink = w
	return nil
}

func (h *restyHandle) SetHeaderList(l *headerList) error {
	h.headers = l
	return nil
}

func (h *restyHandle) SetPost(body string) error {
	h.post = true
	h.body = body
	return nil
}

func (h *restyHandle) SetFollowRedirects(on bool) error {
	if on {
		h.client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	} else {
		h.client.SetRedirectPolicy(resty.NoRedirectPolicy())
	}
	return nil
}

func (h *restyHandle) Perform(ctx context.Context) error {
	req := h.client.R().SetContext(ctx).SetDoNotParseResponse(true)

	if h.headers != nil {
		for _, line := range h.headers.lines() {
			name, value, ok := strings.Cut(line, ": ")
			if ok {
				req.SetHeader(name, value)
			}
		}
	}

	method := http.MethodGet
	if h.post {
		method = http.MethodPost
		if h.body != "" {
			req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
			req.SetBody(h.body)
		}
	}

	resp, err := req.Execute(method, h.url)
	if err != nil {
		return err
	}
	raw := resp.RawBody()
	defer raw.Close()

	h.status = resp.StatusCode()

	buf := make([]byte, readChunkSize)
	for {
		n, rerr := raw.Read(buf)
		if n > 0 && h.sink != nil {
			if _, werr := h.sink.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

func (h *restyHandle) StatusCode() (int, error) {
	return h.status, nil
}

func (h *restyHandle) Close() error {
	h.client.GetClient().CloseIdleConnections()
	return nil
}
