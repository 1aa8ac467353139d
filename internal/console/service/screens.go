package service

import (
	"context"

	"github.com/aussiebroadwan/forgeconsole/internal/console/crud"
	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
)

// ClientsAPI is the part of the backend the clients screen uses.
type ClientsAPI interface {
	ListClients(ctx context.Context) (*forgesdk.ClientList, error)
	CreateClient(ctx context.Context, body forgesdk.ClientCreate) (*forgesdk.Client, error)
	UpdateClient(ctx context.Context, id int64, body forgesdk.ClientUpdate) (*forgesdk.Client, error)
	DeleteClient(ctx context.Context, id int64) error
}

// ConfigurationsAPI is the part of the backend the configurations screen uses.
type ConfigurationsAPI interface {
	ListConfigurations(ctx context.Context) (*forgesdk.ConfigurationList, error)
	CreateConfiguration(ctx context.Context, body forgesdk.ConfigurationCreate) (*forgesdk.Configuration, error)
	UpdateConfiguration(ctx context.Context, id int64, body forgesdk.ConfigurationUpdate) (*forgesdk.Configuration, error)
	DeleteConfiguration(ctx context.Context, id int64) error
}

// UserAPI reads the signed-in backend user.
type UserAPI interface {
	CurrentUser(ctx context.Context) (*forgesdk.User, error)
}

// BackendAPI is everything a workspace needs. *forgesdk.Session implements it.
type BackendAPI interface {
	ClientsAPI
	ConfigurationsAPI
	UserAPI
}

type (
	ClientsScreen        = crud.Screen[forgesdk.Client, domain.ClientDraft]
	ConfigurationsScreen = crud.Screen[forgesdk.Configuration, domain.ConfigurationDraft]
)

func messagesOf(t domain.EntityText) crud.Messages {
	return crud.Messages{
		Empty:         t.Empty,
		ConfirmDelete: t.ConfirmDelete,
		LoadFailed:    t.LoadFailed,
		SaveFailed:    t.SaveFailed,
		DeleteFailed:  t.DeleteFailed,
	}
}

// NewClientsScreen builds the clients screen over api.
func NewClientsScreen(api ClientsAPI, text domain.EntityText) *ClientsScreen {
	return crud.NewScreen(crud.Resource[forgesdk.Client, domain.ClientDraft]{
		Name: "client",
		List: func(ctx context.Context) ([]forgesdk.Client, error) {
			list, err := api.ListClients(ctx)
			observe("client", "list", err)
			if err != nil {
				return nil, err
			}
			return list.Clients, nil
		},
		Create: func(ctx context.Context, d domain.ClientDraft) error {
			_, err := api.CreateClient(ctx, d.CreateRequest())
			observe("client", "create", err)
			return err
		},
		Update: func(ctx context.Context, id int64, d domain.ClientDraft) error {
			_, err := api.UpdateClient(ctx, id, d.UpdateRequest())
			observe("client", "update", err)
			return err
		},
		Delete: func(ctx context.Context, id int64) error {
			err := api.DeleteClient(ctx, id)
			observe("client", "delete", err)
			return err
		},
		ID:       func(c forgesdk.Client) int64 { return c.ID },
		Defaults: func() domain.ClientDraft { return domain.ClientDraft{} },
		DraftOf:  domain.ClientDraftFrom,
		Freeze:   domain.FreezeClientDraft,
		Validate: domain.ClientDraft.Validate,
		Messages: messagesOf(text),
	})
}

// NewConfigurationsScreen builds the configurations screen over api. Value
// types are checked against valueTypes.
func NewConfigurationsScreen(api ConfigurationsAPI, valueTypes domain.ValueTypeSet, text domain.EntityText) *ConfigurationsScreen {
	return crud.NewScreen(crud.Resource[forgesdk.Configuration, domain.ConfigurationDraft]{
		Name: "configuration",
		List: func(ctx context.Context) ([]forgesdk.Configuration, error) {
			list, err := api.ListConfigurations(ctx)
			observe("configuration", "list", err)
			if err != nil {
				return nil, err
			}
			return list.Configurations, nil
		},
		Create: func(ctx context.Context, d domain.ConfigurationDraft) error {
			_, err := api.CreateConfiguration(ctx, d.CreateRequest())
			observe("configuration", "create", err)
			return err
		},
		Update: func(ctx context.Context, id int64, d domain.ConfigurationDraft) error {
			_, err := api.UpdateConfiguration(ctx, id, d.UpdateRequest())
			observe("configuration", "update", err)
			return err
		},
		Delete: func(ctx context.Context, id int64) error {
			err := api.DeleteConfiguration(ctx, id)
			observe("configuration", "delete", err)
			return err
		},
		ID:       func(c forgesdk.Configuration) int64 { return c.ID },
		Defaults: domain.NewConfigurationDraft,
		DraftOf:  domain.ConfigurationDraftFrom,
		Freeze:   domain.FreezeConfigurationDraft,
		Validate: func(d domain.ConfigurationDraft) error { return d.Validate(valueTypes) },
		Messages: messagesOf(text),
	})
}
