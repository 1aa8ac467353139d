package service

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/forgeconsole/internal/console/crud"
	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/aussiebroadwan/forgeconsole/pkg/slogx"
	"golang.org/x/sync/errgroup"
)

// DashboardAPI is what the dashboard reads.
type DashboardAPI interface {
	UserAPI
	ListClients(ctx context.Context) (*forgesdk.ClientList, error)
}

// Dashboard summarises the signed-in user and the clients.
type Dashboard struct {
	api    DashboardAPI
	banner crud.Banner

	mu       sync.Mutex
	user     *forgesdk.User
	clients  []forgesdk.Client
	inFlight int
}

// DashboardView is what the dashboard renders.
type DashboardView struct {
	Loading     bool
	Error       string
	ClientCount int
	Role        string
	Status      string
	Rows        []forgesdk.Client
	Placeholder string
}

func NewDashboard(api DashboardAPI) *Dashboard {
	return &Dashboard{api: api}
}

// Load fetches the current user and the clients together. If either fails
// the previous data stays and the banner shows the error.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	d.inFlight++
	d.mu.Unlock()

	var (
		user    *forgesdk.User
		clients *forgesdk.ClientList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = d.api.CurrentUser(gctx)
		observe("user", "get", err)
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = d.api.ListClients(gctx)
		observe("client", "list", err)
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight--

	if err != nil {
		slogx.FromContext(ctx).Warn("backend operation failed", "entity", "dashboard", "operation", "load", "error", err)
		d.banner.Set(crud.ErrorMessage(err, domain.DashboardText.LoadFailed))
		return err
	}

	d.user, d.clients = user, clients.Clients
	d.banner.Clear()
	return nil
}

// View snapshots the dashboard.
func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := DashboardView{
		Loading:     d.inFlight > 0,
		Error:       d.banner.String(),
		ClientCount: len(d.clients),
		Role:        domain.MsgNotAvailable,
		Status:      domain.MsgStatusActive,
		Rows:        append([]forgesdk.Client(nil), d.clients...),
	}
	if d.user != nil && d.user.Role != "" {
		v.Role = d.user.Role
	}
	if !v.Loading && len(v.Rows) == 0 {
		v.Placeholder = domain.DashboardText.Empty
	}
	return v
}
