package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"checkout-service/models"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("receipt cache miss")

// ReceiptCache stores rendered receipts by payment intent id. Only receipts
// for succeeded charges are cached; they never change afterwards.
type ReceiptCache interface {
	Get(ctx context.Context, intentID string) (*models.Receipt, error)
	Set(ctx context.Context, receipt *models.Receipt) error
}

type RedisReceiptCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReceiptCache(client *redis.Client, ttl time.Duration) *RedisReceiptCache {
	return &RedisReceiptCache{client: client, ttl: ttl}
}

func (r *RedisReceiptCache) Get(ctx context.Context, intentID string) (*models.Receipt, error) {
	data, err := r.client.Get(ctx, receiptKey(intentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var receipt models.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshal receipt failed: %w", err)
	}
	return &receipt, nil
}

func (r *RedisReceiptCache) Set(ctx context.Context, receipt *models.Receipt) error {
	data, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshal receipt failed: %w", err)
	}
	if err := r.client.Set(ctx, receiptKey(receipt.IntentID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// NoopReceiptCache is used when no Redis is configured.
type NoopReceiptCache struct{}

func (NoopReceiptCache) Get(context.Context, string) (*models.Receipt, error) { return nil, ErrCacheMiss }
func (NoopReceiptCache) Set(context.Context, *models.Receipt) error { return nil }

func receiptKey(intentID string) string {
	return "checkout:receipt:" + intentID
}
