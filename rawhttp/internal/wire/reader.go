package wire

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// ErrHeadTooLarge is returned by ReadTunnelHead when the proxy reply grows
// past the configured limit without a blank line.
var ErrHeadTooLarge = errors.New("wire: tunnel reply head too large")

var headTerminator = []byte("\r\n\r\n")

// ReadTunnelHead reads r one byte at a time until the accumulated bytes end
// with CRLF CRLF and returns them as text. It never consumes a byte past the
// terminator, so whatever follows belongs to the tunnelled stream.
//
// A limit <= 0 means no limit. EOF before the terminator yields
// io.ErrUnexpectedEOF.
func ReadTunnelHead(r io.Reader, limit int) (string, error) {
	var head []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return string(head), io.ErrUnexpectedEOF
			}
			return string(head), err
		}
		head = append(head, b[0])
		if bytes.HasSuffix(head, headTerminator) {
			return string(head), nil
		}
		if limit > 0 && len(head) >= limit {
			return string(head), ErrHeadTooLarge
		}
	}
}

// TunnelAccepted reports whether a CONNECT reply head signals an
// established tunnel. Only a literal "HTTP/1.1 200" prefix counts.
func TunnelAccepted(head string) bool {
	return strings.HasPrefix(head, "HTTP/1.1 200")
}

// StatusLine returns the first line of head without its line terminator.
func StatusLine(head string) string {
	if i := strings.IndexAny(head, "\r\n"); i >= 0 {
		return head[:i]
	}
	return head
}

// ReadToEOF drains r until the peer signals orderly shutdown. There is no
// length awareness: the peer closing the stream is the only completion
// signal. On error the partial bytes are dropped.
func ReadToEOF(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return b, nil
}
