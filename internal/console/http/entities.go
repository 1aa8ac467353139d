package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aussiebroadwan/forgeconsole/internal/console/crud"
	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/internal/console/service"
	"github.com/aussiebroadwan/forgeconsole/internal/console/web"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/aussiebroadwan/forgeconsole/pkg/httpx"
)

// entityRoutes describes one CRUD screen mounted under base.
type entityRoutes[T, D any] struct {
	base       string
	page       string
	text       domain.EntityText
	screen     func(*service.Workspace) *crud.Screen[T, D]
	draft      func(url.Values) D
	valueTypes domain.ValueTypeSet
}

type entityContent[T, D any] struct {
	Base       string
	Text       domain.EntityText
	View       crud.View[T, D]
	Open       bool
	Editing    bool
	ValueTypes domain.ValueTypeSet
}

type confirmContent struct {
	Prompt string
	Action string
}

func clientRoutes() entityRoutes[forgesdk.Client, domain.ClientDraft] {
	return entityRoutes[forgesdk.Client, domain.ClientDraft]{
		base:   "/clients",
		page:   "clients",
		text:   domain.ClientText,
		screen: func(ws *service.Workspace) *service.ClientsScreen { return ws.Clients },
		draft: func(f url.Values) domain.ClientDraft {
			return domain.ClientDraft{
				Name:            f.Get("name"),
				Code:            f.Get("code"),
				Email:           f.Get("email"),
				NamespacePrefix: f.Get("namespace_prefix"),
				Domain:          f.Get("domain"),
			}
		},
	}
}

func configurationRoutes(valueTypes domain.ValueTypeSet) entityRoutes[forgesdk.Configuration, domain.ConfigurationDraft] {
	return entityRoutes[forgesdk.Configuration, domain.ConfigurationDraft]{
		base:   "/configurations",
		page:   "configurations",
		text:   domain.ConfigurationText,
		screen: func(ws *service.Workspace) *service.ConfigurationsScreen { return ws.Configurations },
		draft: func(f url.Values) domain.ConfigurationDraft {
			return domain.ConfigurationDraft{
				Key:         f.Get("key"),
				Value:       f.Get("value"),
				ValueType:   f.Get("value_type"),
				Description: f.Get("description"),
			}
		},
		valueTypes: valueTypes,
	}
}

func registerEntity[T, D any](r *Router, e entityRoutes[T, D]) {
	r.Mux.Handle("GET "+e.base, r.page(func(w http.ResponseWriter, req *http.Request) {
		s := e.screen(authFrom(req.Context()).Workspace)
		_ = s.Mount(req.Context())
		e.render(r, w, req, http.StatusOK, s)
	}))

	r.Mux.Handle("POST "+e.base+"/new", r.page(func(w http.ResponseWriter, req *http.Request) {
		s := e.screen(authFrom(req.Context()).Workspace)
		s.Form.Open()
		e.render(r, w, req, http.StatusOK, s)
	}))

	r.Mux.Handle("POST "+e.base+"/cancel", r.page(func(w http.ResponseWriter, req *http.Request) {
		s := e.screen(authFrom(req.Context()).Workspace)
		s.Form.Cancel()
		e.render(r, w, req, http.StatusOK, s)
	}))

	r.Mux.Handle("POST "+e.base+"/{id}/edit", r.page(func(w http.ResponseWriter, req *http.Request) {
		s := e.screen(authFrom(req.Context()).Workspace)
		id, err := strconv.ParseInt(req.PathValue("id"), 10, 64)
		row, found := s.Find(id)
		if err != nil || !found {
			s.SetError(domain.MsgUnknownRecord)
		} else {
			s.Form.Edit(row)
		}
		e.render(r, w, req, http.StatusOK, s)
	}))

	r.Mux.Handle("POST "+e.base+"/save", r.action(func(w http.ResponseWriter, req *http.Request) {
		s := e.screen(authFrom(req.Context()).Workspace)
		if err := req.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		s.Form.SetDraft(e.draft(req.PostForm))
		err := s.Form.Submit(req.Context())
		switch {
		case errors.Is(err, crud.ErrFormHidden):
			httpx.SeeOther(w, req, e.base)
		case err != nil:
			e.render(r, w, req, http.StatusUnprocessableEntity, s)
		default:
			e.render(r, w, req, http.StatusOK, s)
		}
	}))

	r.Mux.Handle("GET "+e.base+"/{id}/delete", r.page(func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.ParseInt(req.PathValue("id"), 10, 64)
		if err != nil {
			httpx.SeeOther(w, req, e.base)
			return
		}
		r.render(w, req, http.StatusOK, "confirm", web.Page{
			Title:  e.text.Title,
			Active: e.page,
			Content: confirmContent{
				Prompt: e.text.ConfirmDelete,
				Action: e.base + "/" + strconv.FormatInt(id, 10) + "/delete",
			},
		})
	}))

	r.Mux.Handle("POST "+e.base+"/{id}/delete", r.action(func(w http.ResponseWriter, req *http.Request) {
		s := e.screen(authFrom(req.Context()).Workspace)
		id, err := strconv.ParseInt(req.PathValue("id"), 10, 64)
		if err != nil {
			httpx.SeeOther(w, req, e.base)
			return
		}
		if err := req.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		confirmed := crud.ConfirmFunc(func(string) bool { return req.PostForm.Get("confirm") == "yes" })
		_, _ = s.Delete(req.Context(), id, confirmed)
		e.render(r, w, req, http.StatusOK, s)
	}))
}

func (e entityRoutes[T, D]) render(r *Router, w http.ResponseWriter, req *http.Request, status int, s *crud.Screen[T, D]) {
	view := s.View()
	r.render(w, req, status, e.page, web.Page{
		Title:  e.text.Title,
		Active: e.page,
		Content: entityContent[T, D]{
			Base:       e.base,
			Text:       e.text,
			View:       view,
			Open:       view.Mode != crud.Hidden,
			Editing:    view.Mode == crud.Editing,
			ValueTypes: e.valueTypes,
		},
	})
}
