// Package cache stores priced odds sheets in Redis so the UI layer can
// re-read what it last displayed without re-deriving. The cache is a
// display convenience only: settlement never reads it, it regenerates
// outcomes from the bet's placement snapshot.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// TTL constants
const (
	PreMatchOddsTTL = 15 * time.Minute
	LiveOddsTTL     = 30 * time.Second
)

// OddsCache writes and reads priced odds snapshots in Redis
type OddsCache struct {
	client *redis.Client
}

// NewOddsCache creates a new odds cache
func NewOddsCache(client *redis.Client) *OddsCache {
	return &OddsCache{client: client}
}

// WritePreMatch stores a fixture's pre-match odds sheet
func (c *OddsCache) WritePreMatch(ctx context.Context, roundID, matchID string, sheet models.PricedOdds) error {
	return c.write(ctx, preMatchKey(roundID, matchID), sheet, PreMatchOddsTTL)
}

// WriteLive stores a fixture's live odds sheet with a short TTL
func (c *OddsCache) WriteLive(ctx context.Context, roundID, matchID string, sheet models.PricedOdds) error {
	return c.write(ctx, liveKey(roundID, matchID), sheet, LiveOddsTTL)
}

// ReadPreMatch returns the cached pre-match sheet, or nil on a miss
func (c *OddsCache) ReadPreMatch(ctx context.Context, roundID, matchID string) (*models.PricedOdds, error) {
	return c.read(ctx, preMatchKey(roundID, matchID))
}

// ReadLive returns the cached live sheet, or nil on a miss
func (c *OddsCache) ReadLive(ctx context.Context, roundID, matchID string) (*models.PricedOdds, error) {
	return c.read(ctx, liveKey(roundID, matchID))
}

func (c *OddsCache) write(ctx context.Context, key string, sheet models.PricedOdds, ttl time.Duration) error {
	data, err := json.Marshal(sheet)
	if err != nil {
		return fmt.Errorf("marshaling odds sheet: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *OddsCache) read(ctx context.Context, key string) (*models.PricedOdds, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading odds sheet: %w", err)
	}

	var sheet models.PricedOdds
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("unmarshaling odds sheet: %w", err)
	}
	return &sheet, nil
}

func preMatchKey(roundID, matchID string) string {
	return fmt.Sprintf("odds:prematch:%s:%s", roundID, matchID)
}

func liveKey(roundID, matchID string) string {
	return fmt.Sprintf("odds:live:%s:%s", roundID, matchID)
}
