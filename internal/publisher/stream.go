// Package publisher pushes settlement and round-close events to Redis
// Streams for downstream consumers (wallet notifications, audit, the
// websocket broadcaster in other deployments).
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/settlement"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// Stream keys
const (
	SettlementStream = "bets.settled"
	RoundStream      = "rounds.closed"
)

// StreamPublisher publishes engine events to Redis Streams
type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{client: client}
}

// PublishSettlement publishes one settled bet to the bets.settled stream
func (p *StreamPublisher) PublishSettlement(ctx context.Context, result settlement.SettleResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement: %w", err)
	}

	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: SettlementStream,
		Values: map[string]interface{}{
			"settlement": string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", SettlementStream, err)
	}

	return nil
}

// PublishRoundClosed publishes a closed round and its outcome set to
// the rounds.closed stream
func (p *StreamPublisher) PublishRoundClosed(ctx context.Context, roundID string, outcomes []models.Outcome) error {
	payload, err := json.Marshal(map[string]interface{}{
		"round_id": roundID,
		"outcomes": outcomes,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal round event: %w", err)
	}

	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: RoundStream,
		Values: map[string]interface{}{
			"round": string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", RoundStream, err)
	}

	return nil
}
