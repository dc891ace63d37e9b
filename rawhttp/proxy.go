package rawhttp

import (
	"context"
	"encoding/base64"
	"net/netip"
	"strings"
)

// Proxy is a resolved HTTP proxy that accepts CONNECT, with an optional
// pre-formatted Proxy-Authorization line.
type Proxy struct {
	endpoint   netip.AddrPort
	authHeader string
	addr       string
}

// ParseProxy parses `[user:password@]host:port` and resolves the address.
func ParseProxy(s string) (*Proxy, error) {
	return ParseProxyContext(context.Background(), nil, s)
}

// ParseProxyContext is ParseProxy with an explicit context and resolver.
// Everything before the first '@' is taken as credentials, verbatim.
func ParseProxyContext(ctx context.Context, r Resolver, s string) (*Proxy, error) {
	if creds, hostport, ok := strings.Cut(s, "@"); ok {
		return newProxy(ctx, r, hostport, basicAuthLine(creds))
	}
	return newProxy(ctx, r, s, "")
}

func newProxy(ctx context.Context, r Resolver, hostport, authHeader string) (*Proxy, error) {
	ep, err := resolveFirst(ctx, r, hostport)
	if err != nil {
		return nil, err
	}
	return &Proxy{endpoint: ep, authHeader: authHeader, addr: hostport}, nil
}

func basicAuthLine(userinfo string) string {
	return "Proxy-Authorization: Basic " + base64.StdEncoding.EncodeToString([]byte(userinfo)) + "\r\n"
}

// Endpoint is the proxy's resolved address.
func (p *Proxy) Endpoint() netip.AddrPort { return p.endpoint }

// AuthorizationHeader is the full "Proxy-Authorization: Basic ...\r\n" line,
// or "" when the descriptor carried no credentials.
func (p *Proxy) AuthorizationHeader() string { return p.authHeader }

// String returns host:port without credentials.
func (p *Proxy) String() string { return p.addr }

// Clone returns a copy of p.
func (p *Proxy) Clone() *Proxy {
	p2 := *p
	return &p2
}
