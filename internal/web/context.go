package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/invitespark/internal/core"
)

// WithRequestMetadata records the requesting client on ctx so status
// changes can be attributed in the logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithClient(ctx, core.Client{IP: clientIP(r), UserAgent: r.UserAgent()})
}

// clientIP returns the host part of RemoteAddr, which TrustedRealIP has
// already resolved.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
