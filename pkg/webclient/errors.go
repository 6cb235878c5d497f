package webclient

// InitError reports that the underlying transfer handle could not be
// created. A client that failed this way is unusable.
type InitError struct {
	Err error
}

func (e *InitError) Error() string { return "webclient: create handle: " + e.Err.Error() }
func (e *InitError) Unwrap() error { return e.Err }

// ConfigError reports that the handle rejected a configuration option
// before any bytes were sent.
type ConfigError struct {
	Option string
	Err    error
}

func (e *ConfigError) Error() string { return "webclient: set " + e.Option + ": " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError reports that the transfer itself failed (DNS, connect,
// TLS or protocol failure). The message comes from the underlying library.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "webclient: transfer: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports that a response body could not be parsed by one of
// the Response views.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "webclient: decode body: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }
