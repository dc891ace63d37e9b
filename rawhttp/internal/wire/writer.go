package wire

import (
	"fmt"
	"io"
	"net"
	"strconv"
)

// Target formats host and port the way a CONNECT request line and its Host
// header expect them. IPv6 literals are bracketed.
func Target(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}

// WriteConnect writes a complete CONNECT request head in a single write:
//
//	CONNECT <target> HTTP/1.1\r\n
//	Host: <target>\r\n
//	<authLine>\r\n
//
// authLine must already end in CRLF, or be empty.
func WriteConnect(w io.Writer, target, authLine string) error {
	head := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n%s\r\n", target, target, authLine)
	_, err := io.WriteString(w, head)
	return err
}
