package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const masterKeyBytes = 32

// LoadOrGenerateMasterKey reads the master secret from path, generating and
// writing a fresh random one (mode 0600) if the file does not exist yet.
func LoadOrGenerateMasterKey(path string) ([]byte, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err == nil {
		key := strings.TrimSpace(string(data))
		if key == "" {
			return nil, fmt.Errorf("master key file %q is empty", path)
		}
		return []byte(key), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read master key file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	raw := make([]byte, masterKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	key := base64.RawURLEncoding.EncodeToString(raw)

	if err := os.WriteFile(path, []byte(key), 0600); err != nil {
		return nil, fmt.Errorf("failed to write master key file: %w", err)
	}

	return []byte(key), nil
}
