package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	// ForgeERP REST base URL (default: http://localhost:8000)
	BackendURL string `validate:"required,url"`
	// SDK request timeout (default: 10s)
	BackendTimeout time.Duration `validate:"gt=0"`
	// SQLite file for console sessions (default: ./console.db)
	DatabaseFile string `validate:"required"`
	// Optional: file holding the master secret. Wins over MasterKey.
	MasterKeyPath string
	// Optional: master secret given inline
	MasterKey string
	// Upper bound on a console session (default: 8h)
	SessionTTL time.Duration `validate:"gt=0"`
	// How guarded requests check the session: token or remote (default: token)
	AuthCheck string `validate:"oneof=token remote"`
	// value_type variant offered by the configuration form (default: integer)
	ValueTypes string `validate:"oneof=integer number"`
	// Secure attribute on cookies (default: false in dev, true otherwise)
	CookieSecure bool
	// Optional: reload templates from this directory on every render
	TemplateDir string

	Env                  string        `validate:"oneof=dev staging prod"` // Environment (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `validate:"oneof=json text"` // Log format (default: json)
	Port                 int           `validate:"min=1,max=65535"` // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `validate:"gt=0"`            // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `validate:"gt=0"`            // Housekeeping interval (default: 1h)
}

// fileConfig is the optional TOML file. Durations are strings such as "30s".
type fileConfig struct {
	BackendURL           string `toml:"backend_url"`
	BackendTimeout       string `toml:"backend_timeout"`
	DatabaseFile         string `toml:"database_file"`
	MasterKeyPath        string `toml:"master_key_path"`
	SessionTTL           string `toml:"session_ttl"`
	AuthCheck            string `toml:"auth_check"`
	ValueTypes           string `toml:"value_types"`
	CookieSecure         *bool  `toml:"cookie_secure"`
	TemplateDir          string `toml:"template_dir"`
	Env                  string `toml:"env"`
	LogLevel             string `toml:"log_level"`
	LogFormat            string `toml:"log_format"`
	Port                 int    `toml:"port"`
	ShutdownGracePeriod  string `toml:"shutdown_grace_period"`
	HousekeepingInterval string `toml:"housekeeping_interval"`
}

func defaultConfig() Config {
	return Config{
		BackendURL:           "http://localhost:8000",
		BackendTimeout:       10 * time.Second,
		DatabaseFile:         "console.db",
		SessionTTL:           8 * time.Hour,
		AuthCheck:            "token",
		ValueTypes:           "integer",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: 1 * time.Hour,
	}
}

// LoadConfig builds the configuration from defaults, then the TOML file named
// by CONSOLE_CONFIG_FILE, then the environment.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	cookieSecureSet := false
	if path := os.Getenv("CONSOLE_CONFIG_FILE"); path != "" {
		fc, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := fc.apply(&cfg); err != nil {
			return Config{}, err
		}
		cookieSecureSet = fc.CookieSecure != nil
	}

	cfg.BackendURL = getEnvOrDefault("CONSOLE_BACKEND_URL", cfg.BackendURL)
	cfg.BackendTimeout = getEnvDurationOrDefault("CONSOLE_BACKEND_TIMEOUT", cfg.BackendTimeout)
	cfg.DatabaseFile = getEnvOrDefault("CONSOLE_DATABASE_FILE", cfg.DatabaseFile)
	cfg.MasterKeyPath = getEnvOrDefault("CONSOLE_MASTER_KEY_PATH", cfg.MasterKeyPath)
	cfg.MasterKey = os.Getenv("CONSOLE_MASTER_KEY")
	cfg.SessionTTL = getEnvDurationOrDefault("CONSOLE_SESSION_TTL", cfg.SessionTTL)
	cfg.AuthCheck = getEnvOrDefault("CONSOLE_AUTH_CHECK", cfg.AuthCheck)
	cfg.ValueTypes = getEnvOrDefault("CONSOLE_VALUE_TYPES", cfg.ValueTypes)
	cfg.TemplateDir = getEnvOrDefault("CONSOLE_TEMPLATE_DIR", cfg.TemplateDir)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)

	if !cookieSecureSet {
		cfg.CookieSecure = cfg.Env != "dev"
	}
	if v, ok := getEnvBool("CONSOLE_COOKIE_SECURE"); ok {
		cfg.CookieSecure = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfigFile(path string) (*fileConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(content, &fc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("failed to parse config file %s at line %d, column %d: %s", path, row, col, derr.Error())
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &fc, nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key, v string) error {
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config file: %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString(&cfg.BackendURL, fc.BackendURL)
	setString(&cfg.DatabaseFile, fc.DatabaseFile)
	setString(&cfg.MasterKeyPath, fc.MasterKeyPath)
	setString(&cfg.AuthCheck, fc.AuthCheck)
	setString(&cfg.ValueTypes, fc.ValueTypes)
	setString(&cfg.TemplateDir, fc.TemplateDir)
	setString(&cfg.Env, fc.Env)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.CookieSecure != nil {
		cfg.CookieSecure = *fc.CookieSecure
	}

	return errors.Join(
		setDuration(&cfg.BackendTimeout, "backend_timeout", fc.BackendTimeout),
		setDuration(&cfg.SessionTTL, "session_ttl", fc.SessionTTL),
		setDuration(&cfg.ShutdownGracePeriod, "shutdown_grace_period", fc.ShutdownGracePeriod),
		setDuration(&cfg.HousekeepingInterval, "housekeeping_interval", fc.HousekeepingInterval),
	)
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", e.Field(), validationMessage(e)))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", e.Param())
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func getEnvBool(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return b, true
}
