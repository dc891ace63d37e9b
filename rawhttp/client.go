package rawhttp

import "context"

// Dispatcher is implemented by *Transport. It lets callers swap in a fake
// when testing code built on this package.
type Dispatcher interface {
	Do(ctx context.Context, r *Request) (*Response, error)
	DoTLS(ctx context.Context, r *Request) (*Response, error)
	DoProxy(ctx context.Context, r *Request, p *Proxy) (*Response, error)
	DoProxyTLS(ctx context.Context, r *Request, p *Proxy) (*Response, error)
}

var _ Dispatcher = (*Transport)(nil)

// Perform sends r over plain TCP using DefaultTransport.
func (r *Request) Perform(ctx context.Context) (*Response, error) {
	return DefaultTransport.Do(ctx, r)
}

// PerformTLS sends r over TLS using DefaultTransport.
func (r *Request) PerformTLS(ctx context.Context) (*Response, error) {
	return DefaultTransport.DoTLS(ctx, r)
}

// PerformProxy sends r through a CONNECT tunnel on p using DefaultTransport.
func (r *Request) PerformProxy(ctx context.Context, p *Proxy) (*Response, error) {
	return DefaultTransport.DoProxy(ctx, r, p)
}

// PerformProxyTLS sends r over TLS inside a CONNECT tunnel on p using
// DefaultTransport.
func (r *Request) PerformProxyTLS(ctx context.Context, p *Proxy) (*Response, error) {
	return DefaultTransport.DoProxyTLS(ctx, r, p)
}
