package providers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifewrapped/internal/structures"
)

func newSecretsProvider(t *testing.T, dir string) SecretsProviderInterface {
	t.Helper()
	conf := &structures.Config{}
	conf.Storage.Dir = dir
	secrets, err := NewSecretsProvider(conf)
	require.NoError(t, err)
	return secrets
}

func TestSecretsRoundTrip(t *testing.T) {
	secrets := newSecretsProvider(t, t.TempDir())

	require.NoError(t, secrets.Set("openai_api_key", "sk-round-trip"))

	got, err := secrets.Get("openai_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-round-trip", got)

	require.NoError(t, secrets.Delete("openai_api_key"))
	got, err = secrets.Get("openai_api_key")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSecretsAbsentKeyIsNotAnError(t *testing.T) {
	secrets := newSecretsProvider(t, t.TempDir())

	got, err := secrets.Get("never_set")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, secrets.Delete("never_set"))
}

func TestSecretsEncryptedAtRest(t *testing.T) {
	dir := t.TempDir()
	secrets := newSecretsProvider(t, dir)
	require.NoError(t, secrets.Set("anthropic_api_key", "sk-plaintext-must-not-appear"))

	data, err := os.ReadFile(filepath.Join(dir, "secrets", "anthropic_api_key.enc"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-plaintext-must-not-appear")
}

func TestSecretsSurviveProviderRestart(t *testing.T) {
	dir := t.TempDir()
	first := newSecretsProvider(t, dir)
	require.NoError(t, first.Set("openai_api_key", "sk-persistent"))

	second := newSecretsProvider(t, dir)
	got, err := second.Get("openai_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-persistent", got)
}

func TestSecretsOverwrite(t *testing.T) {
	secrets := newSecretsProvider(t, t.TempDir())

	require.NoError(t, secrets.Set("openai_api_key", strings.Repeat("a", 64)))
	require.NoError(t, secrets.Set("openai_api_key", "replacement"))

	got, err := secrets.Get("openai_api_key")
	require.NoError(t, err)
	assert.Equal(t, "replacement", got)
}
