package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/forgeconsole/pkg/cryptox"
)

// Secrets are the keys derived from the master secret.
type Secrets struct {
	Sealer   *cryptox.Sealer
	FlashKey []byte
}

// InitSecrets loads the master key and derives the token sealing and flash
// signing keys from it.
//
// Without a configured master key a random one is generated. That is only
// allowed in dev: every session is lost when the process restarts.
func InitSecrets(cfg Config, logger *slog.Logger) (*Secrets, error) {
	master, err := cryptox.LoadMasterKey(cfg.MasterKeyPath, cfg.MasterKey)
	if err != nil {
		return nil, err
	}

	if master.Ephemeral {
		if cfg.Env != "dev" {
			return nil, errors.New("a master key is required outside dev: set CONSOLE_MASTER_KEY_PATH or CONSOLE_MASTER_KEY")
		}
		logger.Warn("using an ephemeral master key, sessions will not survive a restart")
	} else if cfg.MasterKeyPath != "" {
		logger.Info("master key loaded", "path", cfg.MasterKeyPath)
	}

	sealingKey, err := master.DeriveKey(cryptox.PurposeTokenSealing)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token sealing key: %w", err)
	}
	sealer, err := cryptox.NewSealer(sealingKey)
	if err != nil {
		return nil, err
	}

	flashKey, err := master.DeriveKey(cryptox.PurposeFlashSigning)
	if err != nil {
		return nil, fmt.Errorf("failed to derive flash signing key: %w", err)
	}

	return &Secrets{Sealer: sealer, FlashKey: flashKey}, nil
}
