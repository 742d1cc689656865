package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aniket8745/real-estate-api/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ListingTTL bounds how stale a cached listing can get.
const ListingTTL = 5 * time.Minute

func InitRedis(cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

func GetListing(ctx context.Context, rdb *redis.Client, id string) ([]byte, error) {
	return rdb.Get(ctx, listingKey(id)).Bytes()
}

func SetListing(ctx context.Context, rdb *redis.Client, id string, listing interface{}, ttl time.Duration) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, listingKey(id), data, ttl).Err()
}

func DeleteListing(ctx context.Context, rdb *redis.Client, id string) error {
	return rdb.Del(ctx, listingKey(id)).Err()
}

func listingKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}
