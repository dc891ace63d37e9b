package rawhttp

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
)

// TLSUpgrader turns an established byte stream into an encrypted one,
// verifying the peer against serverName.
type TLSUpgrader interface {
	Upgrade(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error)
}

// TLSConnector is the crypto/tls backed TLSUpgrader. It is immutable after
// construction and safe to share between requests and their clones.
type TLSConnector struct {
	config *tls.Config
}

// NewTLSConnector builds a connector from cfg. A nil cfg loads the system
// root pool; failing to do so is reported as ErrTLSSetup. ALPN defaults to
// http/1.1.
func NewTLSConnector(cfg *tls.Config) (*TLSConnector, error) {
	if cfg == nil {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, newError(ErrTLSSetup, "load system roots", err)
		}
		cfg = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	} else {
		cfg = cfg.Clone()
	}
	if len(cfg.NextProtos) == 0 {
		cfg.NextProtos = []string{"http/1.1"}
	}
	return &TLSConnector{config: cfg}, nil
}

// Upgrade performs the client handshake over conn. serverName is used for
// SNI and certificate verification unless the config pins its own.
func (c *TLSConnector) Upgrade(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	cfg := c.config
	if cfg.ServerName == "" {
		cfg = cfg.Clone()
		cfg.ServerName = serverName
	}
	tc := tls.Client(conn, cfg)
	if err := tc.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return tc, nil
}
