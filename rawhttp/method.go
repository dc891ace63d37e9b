package rawhttp

import (
	"fmt"
	"strings"
)

// Method is the request-line verb. The set is closed.
type Method int

const (
	MethodGet Method = iota
	MethodPut
	MethodPost
	MethodHead
	MethodPatch
	MethodDelete
	MethodOptions
)

// String returns the verb token written on the request line.
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPut:
		return "PUT"
	case MethodPost:
		return "POST"
	case MethodHead:
		return "HEAD"
	case MethodPatch:
		return "PATCH"
	case MethodDelete:
		return "DELETE"
	case MethodOptions:
		return "OPTIONS"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Methods lists every supported method in declaration order.
func Methods() []Method {
	return []Method{MethodGet, MethodPut, MethodPost, MethodHead, MethodPatch, MethodDelete, MethodOptions}
}

// ParseMethod maps a verb token (any case) back to a Method.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}
