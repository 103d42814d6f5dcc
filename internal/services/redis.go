package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// SetRideLocation mirrors the last driver position for a ride in Redis so
// polling clients can be served without touching the dispatch core.
func SetRideLocation(ctx context.Context, rideID string, lat, lng float64) error {
	if RedisClient == nil {
		return nil
	}
	locationData := map[string]interface{}{
		"lat":     lat,
		"lng":     lng,
		"updated": time.Now().Unix(),
	}

	data, err := json.Marshal(locationData)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("ride:location:%s", rideID)
	return RedisClient.Set(ctx, key, data, time.Hour).Err()
}

// GetRideLocation retrieves the mirrored driver position for a ride.
func GetRideLocation(ctx context.Context, rideID string) (lat, lng float64, err error) {
	if RedisClient == nil {
		return 0, 0, redis.Nil
	}
	key := fmt.Sprintf("ride:location:%s", rideID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	var locationData map[string]interface{}
	if err := json.Unmarshal([]byte(data), &locationData); err != nil {
		return 0, 0, err
	}

	lat, _ = locationData["lat"].(float64)
	lng, _ = locationData["lng"].(float64)

	return lat, lng, nil
}

// PublishRideUpdate publishes a ride lifecycle event to Redis pub/sub so
// other processes (admin dashboards, notification workers) can follow along.
func PublishRideUpdate(ctx context.Context, rideID, status, event string) error {
	if RedisClient == nil {
		return nil
	}
	updateData := map[string]interface{}{
		"rideId":    rideID,
		"status":    status,
		"event":     event,
		"timestamp": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "ride:updates", jsonData).Err()
}
