package forgesdk

// ============================================================================
// Auth
// ============================================================================

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated backend user.
type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    *string    `json:"full_name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLoginAt *Timestamp `json:"last_login_at"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   Timestamp  `json:"updated_at"`
}

// DisplayName is the full name when set, otherwise the username.
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ============================================================================
// Clients
// ============================================================================

// Client is a tenant of the ERP.
type Client struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Code                string     `json:"code"`
	Email               *string    `json:"email"`
	Domain              *string    `json:"domain"`
	NamespacePrefix     string     `json:"namespace_prefix"`
	IsActive            bool       `json:"is_active"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	LastSyncAt          *Timestamp `json:"last_sync_at"`
	CreatedAt           Timestamp  `json:"created_at"`
	UpdatedAt           Timestamp  `json:"updated_at"`
}

// ClientList is the body of GET /api/v1/clients.
type ClientList struct {
	Clients []Client `json:"clients"`
	Total   int      `json:"total"`
}

// ClientCreate is the body of POST /api/v1/clients.
type ClientCreate struct {
	Name            string  `json:"name"`
	Code            string  `json:"code"`
	Email           *string `json:"email"`
	NamespacePrefix string  `json:"namespace_prefix"`
	Domain          *string `json:"domain"`
}

// ClientUpdate is the body of PATCH /api/v1/clients/{id}.
type ClientUpdate struct {
	Name   string  `json:"name"`
	Email  *string `json:"email"`
	Domain *string `json:"domain"`
}

// ============================================================================
// Configurations
// ============================================================================

// Configuration is a key/value setting, optionally scoped to a client or module.
type Configuration struct {
	ID          int64   `json:"id"`
	ClientID    *int64  `json:"client_id"`
	ModuleID    *int64  `json:"module_id"`
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	ValueType   string  `json:"value_type"`
	Description *string `json:"description"`
	IsActive    bool    `json:"is_active"`
}

// ConfigurationList is the body of GET /api/v1/configurations.
type ConfigurationList struct {
	Configurations []Configuration `json:"configurations"`
	Total          int             `json:"total"`
}

// ConfigurationCreate is the body of POST /api/v1/configurations.
type ConfigurationCreate struct {
	ClientID    *int64  `json:"client_id,omitempty"`
	ModuleID    *int64  `json:"module_id,omitempty"`
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	ValueType   string  `json:"value_type"`
	Description *string `json:"description"`
}

// ConfigurationUpdate is the body of PATCH /api/v1/configurations/{id}.
type ConfigurationUpdate struct {
	Value       string  `json:"value"`
	ValueType   string  `json:"value_type"`
	Description *string `json:"description"`
}
