package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/forgeconsole/internal/console/crud"
	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/internal/console/service"
	"github.com/aussiebroadwan/forgeconsole/internal/console/web"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/aussiebroadwan/forgeconsole/pkg/httpx"
	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
)

type loginContent struct {
	Username string
	Error    string
}

func (r *Router) handleLoginPage(w http.ResponseWriter, req *http.Request) {
	r.render(w, req, http.StatusOK, "login", web.Page{Title: "Login", Content: loginContent{}})
}

func (r *Router) handleLoginSubmit(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	log := slogx.FromContext(ctx)

	if err := req.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(req.PostForm.Get("username"))
	password := req.PostForm.Get("password")

	res, err := r.Sessions.Login(ctx, username, password)
	if err != nil {
		status, msg := loginFailure(err)
		if status >= http.StatusInternalServerError {
			log.Error("login failed", "error", err)
		}
		r.render(w, req, status, "login", web.Page{
			Title:   "Login",
			Content: loginContent{Username: username, Error: msg},
		})
		return
	}

	r.setSessionCookie(w, res.CookieToken, res.Session)
	httpx.SeeOther(w, req, "/")
}

// loginFailure maps a Login error to the status and banner of the re-rendered form.
func loginFailure(err error) (int, string) {
	var apiErr *forgesdk.APIError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		if errors.As(err, &apiErr) {
			return http.StatusUnauthorized, crud.ErrorMessage(apiErr, domain.MsgLoginFailed)
		}
		return http.StatusUnauthorized, domain.MsgLoginFailed
	case errors.Is(err, service.ErrInactiveUser):
		return http.StatusUnauthorized, domain.MsgInactiveUser
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, crud.ErrorMessage(apiErr, domain.MsgLoginFailed)
	default:
		return http.StatusBadGateway, domain.MsgLoginFailed
	}
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	auth := authFrom(ctx)

	if err := r.Sessions.Logout(ctx, auth.Session, auth.Backend); err != nil {
		slogx.FromContext(ctx).Error("failed to end session", "error", err)
	}

	r.clearSessionCookie(w)
	r.Flash.Set(w, web.FlashMessage{Type: "info", Message: domain.MsgLoggedOut})
	httpx.SeeOther(w, req, "/login")
}
