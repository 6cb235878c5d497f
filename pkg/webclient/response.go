package webclient

import (
	"encoding/json"
	"strings"
)

// Response is the outcome of one completed transfer. StatusCode is 0 when
// the transfer never reached the point of receiving a status line. Headers
// is always present but transfers leave it empty; it exists so callers can
// construct responses with headers by hand (fixtures, adapters).
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// Text returns the body decoded as UTF-8, with invalid sequences replaced
// rather than failing.
func (r *Response) Text() string {
	return strings.ToValidUTF8(string(r.Body), "�")
}

// JSON unmarshals the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
