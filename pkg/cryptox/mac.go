package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var ErrBadSignature = errors.New("cryptox: signature mismatch")

// Sign returns "<payload>.<mac>" with both halves base64url-encoded.
func Sign(key, payload []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)

	return base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks a value produced by Sign and returns its payload.
func Verify(key []byte, signed string) ([]byte, error) {
	encPayload, encMAC, ok := strings.Cut(signed, ".")
	if !ok {
		return nil, ErrBadSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(encPayload)
	if err != nil {
		return nil, ErrBadSignature
	}
	got, err := base64.RawURLEncoding.DecodeString(encMAC)
	if err != nil {
		return nil, ErrBadSignature
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return nil, ErrBadSignature
	}
	return payload, nil
}
