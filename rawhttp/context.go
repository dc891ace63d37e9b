package rawhttp

import "context"

type ctxKey int

const ctxKeyDispatchID ctxKey = iota

// WithDispatchID returns a context carrying id. Transport uses it in logs
// and journal entries instead of generating a new one.
func WithDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyDispatchID, id)
}

// DispatchIDFrom extracts the dispatch ID from ctx.
func DispatchIDFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(ctxKeyDispatchID)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
