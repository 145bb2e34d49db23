package ports

import "context"

// Viewer identifies who a request acts for. Upstream adapters read it from
// the context to attach the bearer token.
type Viewer struct {
	// SessionID is the gateway session the request belongs to.
	SessionID string

	// UserID is empty for guests.
	UserID string

	// Token is the upstream session token; empty for guests.
	Token string
}

// Anonymous reports whether the viewer is a guest.
func (v *Viewer) Anonymous() bool {
	return v == nil || v.Token == ""
}

type viewerKey struct{}

// WithViewer stores the viewer in ctx.
func WithViewer(ctx context.Context, v *Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFromContext returns the viewer stored in ctx, or nil.
func ViewerFromContext(ctx context.Context) *Viewer {
	if ctx == nil {
		return nil
	}

	if v, ok := ctx.Value(viewerKey{}).(*Viewer); ok {
		return v
	}

	return nil
}

// TokenFromContext returns the viewer's upstream token, or empty.
func TokenFromContext(ctx context.Context) string {
	if v := ViewerFromContext(ctx); v != nil {
		return v.Token
	}

	return ""
}
