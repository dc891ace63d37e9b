package rawhttp

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"dqx0.com/go/rawclient/rawhttp/internal/wire"
)

// Request is the wire form of one HTTP/1.1 request plus where to send it.
//
// The buffer always starts with the request line, a Host header and
// "Connection: close", in that order. Headers and body are appended
// verbatim; nothing is validated or de-duplicated. A Request is not safe
// for concurrent mutation; Clone it instead.
type Request struct {
	raw      []byte
	host     string
	endpoint netip.AddrPort
	tls      TLSUpgrader
}

// RequestOptions supplies the collaborators used while building a Request.
// Nil fields fall back to DefaultResolver and a fresh system TLSConnector.
type RequestOptions struct {
	Resolver Resolver
	TLS      TLSUpgrader
}

// NewRequest builds a request for method and path against host:port. The
// address is resolved immediately.
func NewRequest(method Method, host string, port uint16, path string) (*Request, error) {
	return NewRequestContext(context.Background(), RequestOptions{}, method, host, port, path)
}

// NewRequestContext is NewRequest with an explicit context and collaborators.
func NewRequestContext(ctx context.Context, opts RequestOptions, method Method, host string, port uint16, path string) (*Request, error) {
	ep, err := resolveFirst(ctx, opts.Resolver, wire.Target(host, port))
	if err != nil {
		return nil, err
	}
	up := opts.TLS
	if up == nil {
		c, err := NewTLSConnector(nil)
		if err != nil {
			return nil, err
		}
		up = c
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", method, path)
	fmt.Fprintf(&b, "Host: %s\r\n", host)
	b.WriteString("Connection: close\r\n")

	return &Request{
		raw:      []byte(b.String()),
		host:     host,
		endpoint: ep,
		tls:      up,
	}, nil
}

// SetHeader appends "key: value\r\n". The caller must keep CR and LF out of
// both arguments. Repeated keys are written repeatedly.
func (r *Request) SetHeader(key, value string) {
	r.raw = append(r.raw, key...)
	r.raw = append(r.raw, ": "...)
	r.raw = append(r.raw, value...)
	r.raw = append(r.raw, "\r\n"...)
}

// SetBody appends the blank line that ends the header block followed by
// body. It is the only thing that writes that blank line, so a request
// without a body still needs SetBody(""). Content-Length is the caller's
// job. Call it once.
func (r *Request) SetBody(body string) {
	r.raw = append(r.raw, "\r\n"...)
	r.raw = append(r.raw, body...)
}

// SetBodyBytes is SetBody for binary payloads.
func (r *Request) SetBodyBytes(body []byte) {
	r.raw = append(r.raw, "\r\n"...)
	r.raw = append(r.raw, body...)
}

// RawString returns the buffer as text. Invalid UTF-8 (only possible after
// SetBodyBytes) is replaced with U+FFFD rather than failing.
func (r *Request) RawString() string {
	return strings.ToValidUTF8(string(r.raw), "\uFFFD")
}

// Bytes returns a copy of the wire form.
func (r *Request) Bytes() []byte {
	return append([]byte(nil), r.raw...)
}

// Host is the hostname used for the Host header and TLS verification.
func (r *Request) Host() string { return r.host }

// Endpoint is the address resolved at construction.
func (r *Request) Endpoint() netip.AddrPort { return r.endpoint }

// Clone returns a request with its own copy of the buffer. The TLS
// capability is shared.
func (r *Request) Clone() *Request {
	r2 := *r
	r2.raw = r.Bytes()
	return &r2
}
