/*
 * @module service/cache/redis_store
 * @description Redis缓存存储，可选后端，多实例部署时共享检测结果
 * @architecture 分层架构 - 缓存层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 环境变量读取Redis配置 -> 连接测试 -> TTL由Redis原生管理
 * @rules TTL过期由Redis负责，清扫任务对Redis后端为空操作
 * @dependencies github.com/go-redis/redis/v8
 * @refs cache.go
 */

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "dataquality:cache:"

// RedisStore Redis缓存存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 从环境变量创建Redis缓存存储
func NewRedisStore() (*RedisStore, error) {
	host := getEnvWithDefault("REDIS_HOST", "localhost")
	port := getEnvWithDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, _ = strconv.Atoi(dbStr)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	slog.Info("Redis缓存后端初始化成功", "redis_host", host, "redis_port", port)
	return &RedisStore{client: client}, nil
}

// Set 写入缓存项
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err()
}

// Get 读取缓存项
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis读取失败: %w", err)
	}
	return data, true, nil
}

// Delete 删除缓存项
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Keys 返回指定前缀的全部键
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	full, err := s.client.Keys(ctx, redisKeyPrefix+prefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("redis键扫描失败: %w", err)
	}
	keys := make([]string, 0, len(full))
	for _, k := range full {
		keys = append(keys, k[len(redisKeyPrefix):])
	}
	return keys, nil
}

// Cleanup Redis的TTL由服务端管理，清扫为空操作
func (s *RedisStore) Cleanup(_ context.Context) int {
	return 0
}

// getEnvWithDefault 读取环境变量，为空时返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
