package rawhttp

import (
	"bufio"
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixedResolver resolves every host:port to ep.
func fixedResolver(ep netip.AddrPort) Resolver {
	return ResolverFunc(func(ctx context.Context, hostport string) ([]netip.AddrPort, error) {
		return []netip.AddrPort{ep}, nil
	})
}

// startServer accepts connections on 127.0.0.1 and hands each to handle in
// its own goroutine. The connection is closed when handle returns.
func startServer(t *testing.T, ln net.Listener, handle func(net.Conn)) netip.AddrPort {
	t.Helper()
	var wg sync.WaitGroup
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer c.Close()
				handle(c)
			}()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		wg.Wait()
	})
	ap := ln.Addr().(*net.TCPAddr).AddrPort()
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

// httpServer answers each request with reply after handing the parsed
// request to seen (which may be nil).
func httpServer(t *testing.T, ln net.Listener, reply string, seen chan<- *http.Request) netip.AddrPort {
	return startServer(t, ln, func(c net.Conn) {
		req, err := http.ReadRequest(bufio.NewReader(c))
		if err != nil {
			return
		}
		if req.ContentLength > 0 {
			body, _ := io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(body))
			req.ContentLength = int64(len(body))
		}
		if seen != nil {
			seen <- req
		}
		_, _ = io.WriteString(c, reply)
	})
}

// testCert returns a self-signed certificate valid for example.test and
// 127.0.0.1, and a pool that trusts it.
func testCert(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{Organization: []string{"rawhttp test"}, CommonName: "example.test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"example.test"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	pool := x509.NewCertPool()
	pool.AddCert(leaf)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}, pool
}

func tlsListen(t *testing.T, cert tls.Certificate) net.Listener {
	t.Helper()
	return tls.NewListener(listen(t), &tls.Config{Certificates: []tls.Certificate{cert}})
}

// connectProxy is a CONNECT-only proxy. It answers every CONNECT with reply;
// when reply is a 200 it relays bytes to upstream. The CONNECT request is
// passed to seen, and any bytes the client sends after a rejection are
// passed to leftover.
type connectProxy struct {
	reply    string
	upstream netip.AddrPort
	seen     chan *http.Request
	leftover chan []byte
}

func (p *connectProxy) start(t *testing.T) netip.AddrPort {
	return startServer(t, listen(t), func(c net.Conn) {
		br := bufio.NewReader(c)
		req, err := http.ReadRequest(br)
		if err != nil {
			return
		}
		if p.seen != nil {
			p.seen <- req
		}
		if _, err := io.WriteString(c, p.reply); err != nil {
			return
		}
		if len(p.reply) < 12 || p.reply[:12] != "HTTP/1.1 200" {
			_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
			rest, _ := io.ReadAll(br)
			if p.leftover != nil {
				p.leftover <- rest
			}
			return
		}
		up, err := net.Dial("tcp", p.upstream.String())
		if err != nil {
			return
		}
		defer up.Close()
		go func() {
			_, _ = io.Copy(up, br)
			if tc, ok := up.(*net.TCPConn); ok {
				_ = tc.CloseWrite()
			}
		}()
		_, _ = io.Copy(c, up)
	})
}

type recorderFunc func(ctx context.Context, ex Exchange) error

func (f recorderFunc) Record(ctx context.Context, ex Exchange) error { return f(ctx, ex) }

func itoa(n uint16) string { return strconv.FormatUint(uint64(n), 10) }
