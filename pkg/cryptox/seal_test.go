package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/kingpanel/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	t.Parallel()

	s, err := cryptox.NewSealer([]byte("test-master-key-for-encryption-12345"))
	require.NoError(t, err)

	plaintext := []byte("eyJhbGciOiJIUzI1NiJ9.refresh.token")

	sealed, err := s.Seal(plaintext)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, sealed)

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestSealRandomNonce(t *testing.T) {
	t.Parallel()

	s, err := cryptox.NewSealer([]byte("nonce-test-secret"))
	require.NoError(t, err)

	a, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"))
	require.NoError(t, err)

	require.NotEqual(t, a, b, "two seals of the same value should differ")
}

func TestOpenWrongSecret(t *testing.T) {
	t.Parallel()

	s1, err := cryptox.NewSealer([]byte("secret-one"))
	require.NoError(t, err)
	s2, err := cryptox.NewSealer([]byte("secret-two"))
	require.NoError(t, err)

	sealed, err := s1.Seal([]byte("token"))
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decryption failed")
}

func TestOpenTampered(t *testing.T) {
	t.Parallel()

	s, err := cryptox.NewSealer([]byte("tamper-secret"))
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("token"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = s.Open(sealed)
	require.Error(t, err)

	_, err = s.Open([]byte("short"))
	require.ErrorIs(t, err, cryptox.ErrCiphertextTooShort)
}

func TestNewSealerEmptySecret(t *testing.T) {
	t.Parallel()

	_, err := cryptox.NewSealer(nil)
	require.ErrorIs(t, err, cryptox.ErrEmptySecret)
}

func TestLoadOrGenerateMasterKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keys", "master.key")

	first, err := cryptox.LoadOrGenerateMasterKey(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := cryptox.LoadOrGenerateMasterKey(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "existing key should be reused")
}
