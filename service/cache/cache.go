/*
 * @module service/cache/cache
 * @description 检测结果缓存，以不透明令牌为键缓存已准备的数据集与检测报告
 * @architecture 分层架构 - 缓存层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 上传后写入数据集条目 -> 检测后写入结果条目 -> 定时清扫过期条目
 * @rules 缓存是调用方关注点，检测引擎本身无状态；最近一次条目通过指针键维护，
 *        内存与Redis两种后端行为一致
 * @dependencies github.com/google/uuid, github.com/robfig/cron/v3
 * @refs memory_store.go, redis_store.go, api/controllers
 */

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"dataquality-service/service/etl"
	"dataquality-service/service/models"
)

// 缓存键前缀与指针键
const (
	DatasetKeyPrefix = "data_"
	ResultKeyPrefix  = "results_"
	latestDatasetKey = "latest_dataset"
	latestResultKey  = "latest_result"

	// DefaultTTL 缓存条目默认保留时长
	DefaultTTL = 2 * time.Hour
)

// Store 缓存存储后端
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Cleanup(ctx context.Context) int
}

// DatasetEntry 已准备数据集的缓存条目
type DatasetEntry struct {
	Key         string                       `json:"cache_key"`
	Dataset     *models.Dataset              `json:"dataset"`
	Summary     *etl.DatasetSummary          `json:"summary"`
	ColumnTypes map[string]models.ColumnType `json:"column_types,omitempty"`
	Warnings    []string                     `json:"warnings,omitempty"`
	CreatedAt   time.Time                    `json:"created_at"`
}

// ResultEntry 检测结果的缓存条目
type ResultEntry struct {
	Key            string                `json:"cache_key"`
	DataKey        string                `json:"data_key"`
	Report         *models.AnomalyReport `json:"report"`
	AnomalyRecords []models.Row          `json:"anomaly_records"`
	CreatedAt      time.Time             `json:"created_at"`
}

// ResultCache 检测结果缓存
type ResultCache struct {
	store Store
	ttl   time.Duration
	cron  *cron.Cron
}

// NewResultCache 按环境变量选择后端创建缓存
// CACHE_BACKEND=redis 时使用Redis，连接失败回退到内存后端
func NewResultCache() *ResultCache {
	ttl := DefaultTTL
	if val := os.Getenv("CACHE_TTL_MINUTES"); val != "" {
		if minutes, err := strconv.Atoi(val); err == nil && minutes > 0 {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	var store Store
	if os.Getenv("CACHE_BACKEND") == "redis" {
		redisStore, err := NewRedisStore()
		if err != nil {
			slog.Error("Redis缓存后端初始化失败，回退到内存后端", "error", err)
			store = NewMemoryStore()
		} else {
			store = redisStore
		}
	} else {
		store = NewMemoryStore()
	}

	return &ResultCache{
		store: store,
		ttl:   ttl,
		cron:  cron.New(),
	}
}

// NewResultCacheWithStore 使用指定后端创建缓存
func NewResultCacheWithStore(store Store, ttl time.Duration) *ResultCache {
	return &ResultCache{store: store, ttl: ttl, cron: cron.New()}
}

// StartCleanup 启动定时清扫任务，每10分钟回收过期条目
func (c *ResultCache) StartCleanup() error {
	_, err := c.cron.AddFunc("*/10 * * * *", func() {
		removed := c.store.Cleanup(context.Background())
		if removed > 0 {
			slog.Info("缓存清扫完成", "removed_count", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("注册缓存清扫任务失败: %w", err)
	}
	c.cron.Start()
	return nil
}

// Stop 停止定时清扫任务
func (c *ResultCache) Stop() {
	c.cron.Stop()
}

// PutDataset 缓存已准备的数据集，返回生成的缓存令牌
func (c *ResultCache) PutDataset(ctx context.Context, entry *DatasetEntry) (string, error) {
	key := DatasetKeyPrefix + uuid.NewString()
	entry.Key = key
	entry.CreatedAt = time.Now()

	if err := c.putJSON(ctx, key, entry); err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, latestDatasetKey, []byte(key), c.ttl); err != nil {
		return "", fmt.Errorf("更新最近数据集指针失败: %w", err)
	}
	return key, nil
}

// GetDataset 按令牌读取数据集条目
func (c *ResultCache) GetDataset(ctx context.Context, key string) (*DatasetEntry, bool, error) {
	var entry DatasetEntry
	ok, err := c.getJSON(ctx, key, &entry)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &entry, true, nil
}

// LatestDatasetKey 返回最近一次缓存的数据集令牌
func (c *ResultCache) LatestDatasetKey(ctx context.Context) (string, bool, error) {
	data, ok, err := c.store.Get(ctx, latestDatasetKey)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(data), true, nil
}

// PutResult 缓存检测结果，键由数据集令牌派生
func (c *ResultCache) PutResult(ctx context.Context, entry *ResultEntry) (string, error) {
	key := ResultKeyPrefix + entry.DataKey
	entry.Key = key
	entry.CreatedAt = time.Now()

	if err := c.putJSON(ctx, key, entry); err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, latestResultKey, []byte(key), c.ttl); err != nil {
		return "", fmt.Errorf("更新最近结果指针失败: %w", err)
	}
	return key, nil
}

// GetResult 按令牌读取检测结果条目
// 传入数据集令牌时自动换算为结果键
func (c *ResultCache) GetResult(ctx context.Context, key string) (*ResultEntry, bool, error) {
	if len(key) >= len(DatasetKeyPrefix) && key[:len(DatasetKeyPrefix)] == DatasetKeyPrefix {
		key = ResultKeyPrefix + key
	}
	var entry ResultEntry
	ok, err := c.getJSON(ctx, key, &entry)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &entry, true, nil
}

// LatestResultKey 返回最近一次缓存的结果令牌
func (c *ResultCache) LatestResultKey(ctx context.Context) (string, bool, error) {
	data, ok, err := c.store.Get(ctx, latestResultKey)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(data), true, nil
}

func (c *ResultCache) putJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("缓存条目序列化失败: %w", err)
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		return fmt.Errorf("缓存写入失败: %w", err)
	}
	return nil
}

func (c *ResultCache) getJSON(ctx context.Context, key string, target interface{}) (bool, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("缓存条目反序列化失败: %w", err)
	}
	return true, nil
}
