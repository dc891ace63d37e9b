package rawhttp

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"

	"dqx0.com/go/rawclient/internal/obs"
	"dqx0.com/go/rawclient/rawhttp/internal/wire"
)

// Mode names the transport a request was dispatched over.
type Mode string

const (
	ModePlain    Mode = "plain"
	ModeTLS      Mode = "tls"
	ModeProxy    Mode = "proxy"
	ModeProxyTLS Mode = "proxy-tls"
)

// Exchange is what a Transport hands its Recorder after every dispatch,
// successful or not.
type Exchange struct {
	ID         string
	Mode       Mode
	Host       string
	Endpoint   netip.AddrPort
	Proxy      string // host:port, never credentials
	Request    []byte
	Response   []byte // shares the Response buffer; nil on failure
	StatusCode uint16
	Err        error
	Started    time.Time
	Duration   time.Duration
}

// Recorder receives one Exchange per dispatch. Recording errors are logged
// and never fail the dispatch.
type Recorder interface {
	Record(ctx context.Context, ex Exchange) error
}

// Transport sends one Request per connection and reads the reply until the
// peer closes. It holds no per-connection state and is safe for concurrent
// use once configured.
//
// There are no timeout fields: a context deadline, if any, is applied to the
// connection. Without one a silent peer blocks the call.
type Transport struct {
	// Dial opens the TCP connection. Nil uses a zero net.Dialer.
	Dial func(ctx context.Context, network, addr string) (net.Conn, error)

	// MaxTunnelHeadBytes caps the proxy's CONNECT reply head. Zero means no
	// limit.
	MaxTunnelHeadBytes int

	Logger   obs.Logger
	Meter    obs.Meter
	Recorder Recorder
}

// DefaultTransport is used by the Perform methods on Request.
var DefaultTransport = &Transport{}

var errNilRequest = errors.New("rawhttp: nil request or proxy")

// Do sends r over plain TCP to its resolved endpoint.
func (t *Transport) Do(ctx context.Context, r *Request) (*Response, error) {
	if r == nil {
		return nil, errNilRequest
	}
	return t.run(ctx, ModePlain, r, nil, func(ctx context.Context) (*Response, error) {
		conn, err := t.dial(ctx, r.endpoint)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		return exchange(conn, r.raw)
	})
}

// DoTLS sends r over TLS, verifying the server against r.Host().
func (t *Transport) DoTLS(ctx context.Context, r *Request) (*Response, error) {
	if r == nil {
		return nil, errNilRequest
	}
	return t.run(ctx, ModeTLS, r, nil, func(ctx context.Context) (*Response, error) {
		conn, err := t.dial(ctx, r.endpoint)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		tc, err := r.tls.Upgrade(ctx, conn, r.host)
		if err != nil {
			return nil, newError(ErrTLSHandshake, "handshake", err)
		}
		defer tc.Close()
		return exchange(tc, r.raw)
	})
}

// DoProxy opens a CONNECT tunnel through p to r's host and port, then writes
// r in plain text over it. A proxy reply not starting with "HTTP/1.1 200"
// fails with ErrProxyTunnelRejected before anything else is written.
//
// No TLS is layered over the tunnel; use DoProxyTLS for https targets.
func (t *Transport) DoProxy(ctx context.Context, r *Request, p *Proxy) (*Response, error) {
	if r == nil || p == nil {
		return nil, errNilRequest
	}
	return t.run(ctx, ModeProxy, r, p, func(ctx context.Context) (*Response, error) {
		conn, err := t.dial(ctx, p.endpoint)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		if err := t.openTunnel(conn, r, p); err != nil {
			return nil, err
		}
		resp, err := exchange(conn, r.raw)
		if err != nil {
			return nil, err
		}
		t.shutdown(ctx, conn)
		return resp, nil
	})
}

// DoProxyTLS is DoProxy with a TLS handshake against r.Host() performed
// inside the tunnel before the request is written.
func (t *Transport) DoProxyTLS(ctx context.Context, r *Request, p *Proxy) (*Response, error) {
	if r == nil || p == nil {
		return nil, errNilRequest
	}
	return t.run(ctx, ModeProxyTLS, r, p, func(ctx context.Context) (*Response, error) {
		conn, err := t.dial(ctx, p.endpoint)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		if err := t.openTunnel(conn, r, p); err != nil {
			return nil, err
		}
		tc, err := r.tls.Upgrade(ctx, conn, r.host)
		if err != nil {
			return nil, newError(ErrTLSHandshake, "handshake", err)
		}
		resp, err := exchange(tc, r.raw)
		if err != nil {
			return nil, err
		}
		t.shutdown(ctx, conn)
		return resp, nil
	})
}

// run wraps a dispatch with ID assignment, logging, metrics and recording.
func (t *Transport) run(ctx context.Context, mode Mode, r *Request, p *Proxy, fn func(context.Context) (*Response, error)) (*Response, error) {
	id, ok := DispatchIDFrom(ctx)
	if !ok {
		id = genID()
		ctx = WithDispatchID(ctx, id)
	}
	modeLabel := obs.Label{Key: "mode", Value: string(mode)}
	ex := Exchange{
		ID:       id,
		Mode:     mode,
		Host:     r.host,
		Endpoint: r.endpoint,
		Request:  r.Bytes(),
		Started:  time.Now(),
	}
	if p != nil {
		ex.Proxy = p.String()
		t.logf(obs.Debug, "dispatch %s: %s %s (%s) via proxy %s", id, mode, r.host, r.endpoint, p)
	} else {
		t.logf(obs.Debug, "dispatch %s: %s %s (%s)", id, mode, r.host, r.endpoint)
	}

	resp, err := fn(ctx)
	ex.Duration = time.Since(ex.Started)
	t.metricCounter("rawhttp_dispatch_total", 1, modeLabel)
	if err != nil {
		stage := "unknown"
		var e *Error
		if errors.As(err, &e) {
			stage = e.Op
		}
		t.metricCounter("rawhttp_dispatch_error_total", 1, modeLabel, obs.Label{Key: "stage", Value: stage})
		t.logf(obs.Warn, "dispatch %s: %s failed: %v", id, mode, err)
		ex.Err = err
	} else {
		ex.Response = resp.raw
		ex.StatusCode = resp.ReadStatusCode()
		t.metricHistogram("rawhttp_dispatch_duration_ms", float64(ex.Duration.Milliseconds()), modeLabel)
		t.logf(obs.Info, "dispatch %s: %s %s -> %d (%d bytes in %s)", id, mode, r.host, ex.StatusCode, resp.Len(), ex.Duration)
	}
	if t.Recorder != nil {
		if rerr := t.Recorder.Record(ctx, ex); rerr != nil {
			t.logf(obs.Warn, "dispatch %s: record failed: %v", id, rerr)
		}
	}
	return resp, err
}

func (t *Transport) dial(ctx context.Context, ep netip.AddrPort) (net.Conn, error) {
	dial := t.Dial
	if dial == nil {
		var d net.Dialer
		dial = d.DialContext
	}
	conn, err := dial(ctx, "tcp", ep.String())
	if err != nil {
		return nil, newError(ErrConnect, "dial "+ep.String(), err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	return conn, nil
}

// openTunnel performs the CONNECT handshake on conn. The reply is consumed
// byte by byte up to its blank line so no tunnelled byte is lost.
func (t *Transport) openTunnel(conn net.Conn, r *Request, p *Proxy) error {
	target := wire.Target(r.host, r.endpoint.Port())
	if err := wire.WriteConnect(conn, target, p.authHeader); err != nil {
		return newError(ErrIO, "connect write", err)
	}
	head, err := wire.ReadTunnelHead(conn, t.MaxTunnelHeadBytes)
	if err != nil {
		return newError(ErrIO, "connect read", err)
	}
	if !wire.TunnelAccepted(head) {
		return newError(ErrProxyTunnelRejected, "connect", &TunnelError{StatusLine: wire.StatusLine(head)})
	}
	t.logf(obs.Debug, "tunnel to %s through %s established", target, p)
	return nil
}

// shutdown closes both directions of a tunnel socket. The response is
// already complete, so failures are only logged.
func (t *Transport) shutdown(ctx context.Context, conn net.Conn) {
	type halfCloser interface {
		CloseRead() error
		CloseWrite() error
	}
	hc, ok := conn.(halfCloser)
	if !ok {
		return
	}
	id, _ := DispatchIDFrom(ctx)
	if err := hc.CloseWrite(); err != nil {
		t.logf(obs.Debug, "dispatch %s: shutdown write: %v", id, err)
	}
	if err := hc.CloseRead(); err != nil {
		t.logf(obs.Debug, "dispatch %s: shutdown read: %v", id, err)
	}
}

// exchange writes raw and reads until EOF. Partial reads are discarded.
func exchange(conn net.Conn, raw []byte) (*Response, error) {
	if _, err := conn.Write(raw); err != nil {
		return nil, newError(ErrIO, "write", err)
	}
	b, err := wire.ReadToEOF(conn)
	if err != nil {
		return nil, newError(ErrIO, "read", err)
	}
	return &Response{raw: b}, nil
}

func (t *Transport) logf(level obs.Level, format string, args ...interface{}) {
	lg := t.Logger
	if lg == nil {
		lg = obs.NopLogger{}
	}
	lg.Logf(level, format, args...)
}

func (t *Transport) metricCounter(name string, value float64, labels ...obs.Label) {
	t.getMeter().Counter(name, value, labels...)
}

func (t *Transport) metricHistogram(name string, value float64, labels ...obs.Label) {
	t.getMeter().Histogram(name, value, labels...)
}

func (t *Transport) getMeter() obs.Meter {
	if t.Meter != nil {
		return t.Meter
	}
	return obs.NopMeter{}
}
