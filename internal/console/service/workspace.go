package service

import (
	"sync"

	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
)

// Workspace is the screen state of one console session.
type Workspace struct {
	Backend        BackendAPI
	Dashboard      *Dashboard
	Clients        *ClientsScreen
	Configurations *ConfigurationsScreen
}

// Workspaces keeps one Workspace per console session id.
type Workspaces struct {
	ValueTypes domain.ValueTypeSet

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewWorkspaces(valueTypes domain.ValueTypeSet) *Workspaces {
	return &Workspaces{ValueTypes: valueTypes, items: make(map[string]*Workspace)}
}

// Get returns the workspace of sessionID, creating it over api on first use.
// An existing workspace keeps the api it was created with.
func (w *Workspaces) Get(sessionID string, api BackendAPI) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ws, ok := w.items[sessionID]; ok {
		return ws
	}

	ws := &Workspace{
		Backend:        api,
		Dashboard:      NewDashboard(api),
		Clients:        NewClientsScreen(api, domain.ClientText),
		Configurations: NewConfigurationsScreen(api, w.ValueTypes, domain.ConfigurationText),
	}
	w.items[sessionID] = ws
	return ws
}

// Drop forgets the workspaces of ids.
func (w *Workspaces) Drop(ids ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range ids {
		delete(w.items, id)
	}
}

// Len returns the number of live workspaces.
func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
