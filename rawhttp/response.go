package rawhttp

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Response holds the bytes read from the transport, status line through
// body, exactly as received. All accessors are read-only and never fail:
// missing or malformed data yields zero values.
type Response struct {
	raw []byte
}

// NewResponse wraps a copy of raw.
func NewResponse(raw []byte) *Response {
	return &Response{raw: append([]byte(nil), raw...)}
}

// Bytes returns a copy of the raw response.
func (r *Response) Bytes() []byte { return append([]byte(nil), r.raw...) }

// Len is the number of raw bytes received.
func (r *Response) Len() int { return len(r.raw) }

// ReadBody returns everything after the first run of four consecutive bytes
// drawn from {'\r', '\n'}. Any mix counts, so "\n\n\n\n" ends the header
// block as well as "\r\n\r\n". No such run means an empty body.
func (r *Response) ReadBody() []byte {
	count := 0
	pos := len(r.raw)
	for i, c := range r.raw {
		if c == '\r' || c == '\n' {
			count++
		} else {
			count = 0
		}
		if count == 4 {
			pos = i + 1
			break
		}
	}
	return append([]byte{}, r.raw[pos:]...)
}

// ReadBodyString is ReadBody as text; a body that is not valid UTF-8 yields "".
func (r *Response) ReadBodyString() string {
	b := r.ReadBody()
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}

// ReadStatusCode parses the text between the first and second space. It
// returns 0 when there is no second space or the text is not a number.
func (r *Response) ReadStatusCode() uint16 {
	first := -1
	for i, c := range r.raw {
		if c != ' ' {
			continue
		}
		if first < 0 {
			first = i
			continue
		}
		n, err := strconv.ParseUint(string(r.raw[first+1:i]), 10, 16)
		if err != nil {
			return 0
		}
		return uint16(n)
	}
	return 0
}

// ReadHeaders returns the header block as a map. Lines are split on the
// first ": "; lines without it are skipped. Keys keep their case and the last
// duplicate wins. A response that is not valid UTF-8 yields an empty map.
func (r *Response) ReadHeaders() map[string]string {
	headers := make(map[string]string)
	if !utf8.Valid(r.raw) {
		return headers
	}
	block, _, _ := strings.Cut(string(r.raw), "\r\n\r\n")
	lines := strings.Split(block, "\r\n")
	for _, line := range lines[1:] {
		if k, v, ok := strings.Cut(line, ": "); ok {
			headers[k] = v
		}
	}
	return headers
}
