package weathercache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
)

// ValkeyCache stores readings in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "wardrobe"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// Get implements weather.Cache.
func (c *ValkeyCache) Get(ctx context.Context, location string) (weather.Reading, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(location)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return weather.Reading{}, false, nil
		}
		return weather.Reading{}, false, err
	}
	var reading weather.Reading
	if err := json.Unmarshal([]byte(payload), &reading); err != nil {
		return weather.Reading{}, false, err
	}
	return reading, true, nil
}

// Set implements weather.Cache.
func (c *ValkeyCache) Set(ctx context.Context, location string, reading weather.Reading, ttl time.Duration) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.key(location)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) key(location string) string {
	return fmt.Sprintf("%s:weather:%s", c.prefix, location)
}

var _ weather.Cache = (*ValkeyCache)(nil)
