package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// Key purposes passed as HKDF info. Changing one invalidates everything
// derived from it.
const (
	PurposeTokenSealing = "forgeconsole/token-sealing/v1"
	PurposeFlashSigning = "forgeconsole/flash-signing/v1"
)

var ErrEmptyMasterKey = errors.New("cryptox: master key is empty")

// MasterKey is the operator secret every console key is derived from.
type MasterKey struct {
	material  []byte
	Ephemeral bool
}

// LoadMasterKey reads key material from path when set, otherwise from the
// env value. With neither, a random key is generated and marked Ephemeral:
// sessions will not survive a restart.
func LoadMasterKey(path, env string) (MasterKey, error) {
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return MasterKey{}, fmt.Errorf("cryptox: failed to read master key file: %w", err)
		}
		data = []byte(strings.TrimSpace(string(data)))
		if len(data) == 0 {
			return MasterKey{}, ErrEmptyMasterKey
		}
		return MasterKey{material: data}, nil

	case env != "":
		return MasterKey{material: []byte(env)}, nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return MasterKey{}, fmt.Errorf("cryptox: failed to generate ephemeral master key: %w", err)
	}
	return MasterKey{material: buf, Ephemeral: true}, nil
}

// NewMasterKey wraps raw material. Tests use it to get a stable key.
func NewMasterKey(material []byte) MasterKey {
	return MasterKey{material: material}
}

// DeriveKey expands the master key into a 32-byte key bound to purpose.
func (m MasterKey) DeriveKey(purpose string) ([]byte, error) {
	if len(m.material) == 0 {
		return nil, ErrEmptyMasterKey
	}

	key := make([]byte, 32)
	r := hkdf.New(sha256.New, m.material, nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cryptox: failed to derive key: %w", err)
	}
	return key, nil
}
