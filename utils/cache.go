package utils

import (
	"context"
	"log"
	"time"

	"gigbook/config"

	"github.com/go-redis/redis/v8"
)

// LockClient backs the distributed booking and payment locks.
var LockClient *redis.Client

// InitLockCache connects the lock client (REDIS_LOCK_DB).
func InitLockCache() {
	LockClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := LockClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Lock): %v", err)
	}
}

// GetLockClient returns the lock client, connecting on first use.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitLockCache()
	}
	return LockClient
}
