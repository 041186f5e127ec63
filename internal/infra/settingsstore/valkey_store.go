package settingsstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-wardrobe/internal/domain/settings"
)

// ValkeyStore keeps the settings document in Valkey with API keys encrypted at rest.
type ValkeyStore struct {
	client valkey.Client
	key    string
	sealer *sealer
}

// NewValkeyStore constructs a store. secret derives the encryption key.
func NewValkeyStore(client valkey.Client, prefix, secret string) (*ValkeyStore, error) {
	if prefix == "" {
		prefix = "wardrobe"
	}
	sl, err := newSealer(secret)
	if err != nil {
		return nil, err
	}
	return &ValkeyStore{client: client, key: fmt.Sprintf("%s:settings", prefix), sealer: sl}, nil
}

// Load implements settings.Store.
func (s *ValkeyStore) Load(ctx context.Context) (settings.Settings, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return settings.Settings{}, false, nil
		}
		return settings.Settings{}, false, err
	}
	value, err := decode(s.sealer, []byte(payload))
	if err != nil {
		return settings.Settings{}, false, err
	}
	return value, true, nil
}

// Save implements settings.Store.
func (s *ValkeyStore) Save(ctx context.Context, value settings.Settings) error {
	payload, err := encode(s.sealer, value)
	if err != nil {
		return err
	}
	return s.client.Do(ctx, s.client.B().Set().Key(s.key).Value(string(payload)).Build()).Error()
}

func encode(sl *sealer, value settings.Settings) ([]byte, error) {
	for _, secret := range secrets(&value) {
		sealed, err := sl.seal(*secret)
		if err != nil {
			return nil, fmt.Errorf("encrypt settings: %w", err)
		}
		*secret = sealed
	}
	return json.Marshal(value)
}

func decode(sl *sealer, payload []byte) (settings.Settings, error) {
	var value settings.Settings
	if err := json.Unmarshal(payload, &value); err != nil {
		return settings.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	for _, secret := range secrets(&value) {
		plain, err := sl.open(*secret)
		if err != nil {
			return settings.Settings{}, fmt.Errorf("decrypt settings: %w", err)
		}
		*secret = plain
	}
	return value, nil
}

func secrets(value *settings.Settings) []*string {
	return []*string{&value.APIKey, &value.RemoveBGAPIKey, &value.QWeatherAPIKey}
}

var _ settings.Store = (*ValkeyStore)(nil)
