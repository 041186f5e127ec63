package settingsstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-wardrobe/internal/domain/settings"
)

func TestEncodeDecodeEncryptsSecrets(t *testing.T) {
	sl, err := newSealer("passphrase")
	require.NoError(t, err)
	value := settings.Settings{APIKey: "sk-secret-value", Model: "gpt-4o", QWeatherAPIKey: "qw-key"}

	payload, err := encode(sl, value)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(payload), "sk-secret-value"))
	require.False(t, strings.Contains(string(payload), "qw-key"))
	require.Contains(t, string(payload), "gpt-4o")

	decoded, err := decode(sl, payload)
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}

func TestDecodeWithWrongSecretFails(t *testing.T) {
	sl, err := newSealer("one")
	require.NoError(t, err)
	payload, err := encode(sl, settings.Settings{APIKey: "sk"})
	require.NoError(t, err)

	other, err := newSealer("two")
	require.NoError(t, err)
	_, err = decode(other, payload)
	require.Error(t, err)
}

func TestNewSealerRequiresSecret(t *testing.T) {
	_, err := newSealer("")
	require.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	_, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Save(context.Background(), settings.Settings{Model: "m"}))
	got, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "m", got.Model)
}
