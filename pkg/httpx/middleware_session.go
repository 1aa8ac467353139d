package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
)

// SessionResolver inspects the request and returns the context downstream
// handlers should see. An error means the request carries no usable session.
type SessionResolver func(r *http.Request) (context.Context, error)

// DenyFunc answers a request whose session could not be resolved.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

// RequireSession only lets requests with a resolvable session through.
func RequireSession(resolve SessionResolver, deny DenyFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := resolve(r)
			if err != nil {
				slogx.FromContext(r.Context()).Debug("session rejected", "error", err)
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectWhenSession sends requests that already carry a session to
// location. It guards pages such as the login form.
func RedirectWhenSession(resolve SessionResolver, location string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := resolve(r); err == nil {
				SeeOther(w, r, location)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
