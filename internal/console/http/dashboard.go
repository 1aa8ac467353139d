package http

import (
	"net/http"

	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/internal/console/service"
	"github.com/aussiebroadwan/forgeconsole/internal/console/web"
)

type dashboardContent struct {
	Text domain.DashboardStrings
	View service.DashboardView
}

func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) {
	dash := authFrom(req.Context()).Workspace.Dashboard

	// A failed load leaves the banner set; the page still renders.
	_ = dash.Load(req.Context())

	r.render(w, req, http.StatusOK, "dashboard", web.Page{
		Title:   "Dashboard",
		Active:  "dashboard",
		Content: dashboardContent{Text: domain.DashboardText, View: dash.View()},
	})
}
