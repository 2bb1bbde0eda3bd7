// Package auth issues and verifies the bearer tokens that identify a caller.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyFileName is the token key file kept under the data directory.
const KeyFileName = "auth.key"

// keySize is the v4.local symmetric key size in bytes.
const keySize = 32

// ErrInvalidKey reports a key file that is not keySize hex-encoded bytes.
var ErrInvalidKey = errors.New("invalid auth key")

// LoadOrGenerateKey returns the token signing key stored hex-encoded in
// dataPath/auth.key, creating the directory and a fresh random key on first run.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, KeyFileName)

	key, err := readKey(keyPath)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return key, err
	}

	key = make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}
	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("write auth key: %w", err)
	}
	return key, nil
}

func readKey(keyPath string) ([]byte, error) {
	raw, err := os.ReadFile(keyPath) //#nosec G304 -- fixed file name under the configured data directory
	if err != nil {
		return nil, err
	}

	encoded := strings.TrimSpace(string(raw))
	if len(encoded) != hex.EncodedLen(keySize) {
		return nil, fmt.Errorf("%w: %s holds %d hex chars, want %d",
			ErrInvalidKey, keyPath, len(encoded), hex.EncodedLen(keySize))
	}
	key, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidKey, keyPath, err)
	}
	return key, nil
}
