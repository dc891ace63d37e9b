package rawhttp

import (
	"errors"
	"fmt"
)

// Error kinds. Construction and dispatch failures are *Error values whose
// Kind is one of these, so callers can branch with errors.Is.
var (
	ErrAddressResolution   = errors.New("rawhttp: address resolution failed")
	ErrTLSSetup            = errors.New("rawhttp: tls setup failed")
	ErrConnect             = errors.New("rawhttp: connect failed")
	ErrTLSHandshake        = errors.New("rawhttp: tls handshake failed")
	ErrIO                  = errors.New("rawhttp: i/o failed")
	ErrProxyTunnelRejected = errors.New("rawhttp: proxy tunnel rejected")
	ErrInvalidMethod       = errors.New("rawhttp: invalid method")
)

// Error describes a failed construction or dispatch step.
type Error struct {
	Op   string // "resolve", "dial", "handshake", "write", "read", "connect", ...
	Kind error  // one of the Err* sentinels
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v (%s)", e.Kind, e.Op)
	}
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Op, e.Err)
}

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind error, op string, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// TunnelError is the cause attached to ErrProxyTunnelRejected. StatusLine is
// the first line of the proxy's reply, e.g.
// "HTTP/1.1 407 Proxy Authentication Required".
type TunnelError struct {
	StatusLine string
}

func (e *TunnelError) Error() string {
	return fmt.Sprintf("proxy replied %q", e.StatusLine)
}
