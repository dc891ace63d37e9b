package rawhttp

import (
	"context"
	"net"
	"net/netip"
)

// Resolver maps a "host:port" string to one or more endpoints.
type Resolver interface {
	Resolve(ctx context.Context, hostport string) ([]netip.AddrPort, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, hostport string) ([]netip.AddrPort, error)

func (f ResolverFunc) Resolve(ctx context.Context, hostport string) ([]netip.AddrPort, error) {
	return f(ctx, hostport)
}

// NetResolver resolves through the system resolver. IP literals are
// returned without a lookup. Service names ("http") are accepted as ports.
type NetResolver struct {
	// Resolver to use; nil means net.DefaultResolver.
	Resolver *net.Resolver
}

func (n NetResolver) Resolve(ctx context.Context, hostport string) ([]netip.AddrPort, error) {
	host, service, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, err
	}
	res := n.Resolver
	if res == nil {
		res = net.DefaultResolver
	}
	port, err := res.LookupPort(ctx, "tcp", service)
	if err != nil {
		return nil, err
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return []netip.AddrPort{netip.AddrPortFrom(ip.Unmap(), uint16(port))}, nil
	}
	ips, err := res.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	out := make([]netip.AddrPort, 0, len(ips))
	for _, ip := range ips {
		out = append(out, netip.AddrPortFrom(ip.Unmap(), uint16(port)))
	}
	return out, nil
}

// DefaultResolver is used when no Resolver is supplied.
var DefaultResolver Resolver = NetResolver{}

// resolveFirst returns the first endpoint for hostport.
func resolveFirst(ctx context.Context, r Resolver, hostport string) (netip.AddrPort, error) {
	if r == nil {
		r = DefaultResolver
	}
	eps, err := r.Resolve(ctx, hostport)
	if err != nil {
		return netip.AddrPort{}, newError(ErrAddressResolution, "resolve "+hostport, err)
	}
	if len(eps) == 0 {
		return netip.AddrPort{}, newError(ErrAddressResolution, "resolve "+hostport, nil)
	}
	return eps[0], nil
}
