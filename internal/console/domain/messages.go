package domain

// Display strings. The UI has one canonical set, in Portuguese; the error
// fallbacks are only shown when an error carries no text.

const (
	MsgSessionExpired = "Sessão expirada"
	MsgLoggedOut      = "Sessão encerrada"
	MsgUnknownRecord  = "Registro não encontrado"
	MsgNotAvailable   = "N/A"
	MsgStatusActive   = "Ativo"
	MsgInactiveUser   = "Usuário inativo"
	MsgLoginFailed    = "Falha ao entrar"
)

// EntityText groups the strings of one entity screen.
type EntityText struct {
	Title         string
	NewTitle      string
	EditTitle     string
	Loading       string
	Empty         string
	ConfirmDelete string
	LoadFailed    string
	SaveFailed    string
	DeleteFailed  string
}

var ClientText = EntityText{
	Title:         "Clientes",
	NewTitle:      "Novo Cliente",
	EditTitle:     "Editar Cliente",
	Loading:       "Carregando clientes...",
	Empty:         "Nenhum cliente cadastrado",
	ConfirmDelete: "Tem certeza que deseja deletar este cliente?",
	LoadFailed:    "Failed to load clients",
	SaveFailed:    "Failed to save client",
	DeleteFailed:  "Failed to delete client",
}

var ConfigurationText = EntityText{
	Title:         "Configurações",
	NewTitle:      "Nova Configuração",
	EditTitle:     "Editar Configuração",
	Loading:       "Carregando configurações...",
	Empty:         "Nenhuma configuração cadastrada",
	ConfirmDelete: "Tem certeza que deseja deletar esta configuração?",
	LoadFailed:    "Failed to load configurations",
	SaveFailed:    "Failed to save configuration",
	DeleteFailed:  "Failed to delete configuration",
}

// DashboardStrings are the strings of the dashboard.
type DashboardStrings struct {
	Loading      string
	Empty        string
	LoadFailed   string
	ClientsLabel string
	UserLabel    string
	StatusLabel  string
	RecentTitle  string
}

var DashboardText = DashboardStrings{
	Loading:      "Carregando...",
	Empty:        "Nenhum cliente cadastrado",
	LoadFailed:   "Failed to load dashboard",
	ClientsLabel: "Clientes",
	UserLabel:    "Usuário",
	StatusLabel:  "Status",
	RecentTitle:  "Clientes Recentes",
}
