package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/internal/console/service"
	"github.com/aussiebroadwan/forgeconsole/internal/console/web"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/aussiebroadwan/forgeconsole/pkg/httpx"
	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
)

// SessionCookie carries the console session token.
const SessionCookie = "forgeconsole_session"

var errNoCookie = errors.New("no session cookie")

type authKey struct{}

// authState is what the guard resolved for the request.
type authState struct {
	Session   domain.Session
	Backend   *forgesdk.Session
	Workspace *service.Workspace
}

func authFrom(ctx context.Context) *authState {
	a, _ := ctx.Value(authKey{}).(*authState)
	return a
}

// resolve turns the session cookie into a request context carrying the
// session, its backend credential and its screens.
func (r *Router) resolve(req *http.Request) (context.Context, error) {
	c, err := req.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, errNoCookie
	}

	ctx := req.Context()
	sess, backend, err := r.Sessions.Resolve(ctx, c.Value)
	if err != nil {
		return nil, err
	}

	ctx = httpx.WithSessionID(ctx, sess.ID)
	ctx = slogx.With(ctx, "session_id", sess.ID)
	return context.WithValue(ctx, authKey{}, &authState{
		Session:   sess,
		Backend:   backend,
		Workspace: r.Workspaces.Get(sess.ID, backend),
	}), nil
}

// deny sends the browser to /login. A cookie that no longer maps to a live
// session is cleared and explained with a flash.
func (r *Router) deny(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, errNoCookie):
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionExpired):
		r.clearSessionCookie(w)
		r.Flash.Set(w, web.FlashMessage{Type: "warning", Message: domain.MsgSessionExpired})
	default:
		slogx.FromContext(req.Context()).Error("failed to resolve session", "error", err)
		httpx.NoCache(w)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	httpx.SeeOther(w, req, "/login")
}

func (r *Router) setSessionCookie(w http.ResponseWriter, token string, sess domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (r *Router) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
