/*
 * @module service/cache/memory_store
 * @description 进程内缓存存储，默认后端，带TTL的并发安全键值表
 * @architecture 分层架构 - 缓存层
 * @documentReference ai_docs/anomaly_detection_design.md
 * @stateFlow 写入带过期时间 -> 读取校验过期 -> 定期清扫过期项
 * @rules 过期项读取时视为未命中，由清扫任务统一回收
 * @dependencies sync, time
 * @refs cache.go
 */

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore 进程内缓存存储
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

// NewMemoryStore 创建进程内缓存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem)}
}

// Set 写入缓存项，ttl为零表示永不过期
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = memoryItem{data: value, expiresAt: expiresAt}
	s.mu.Unlock()
	return nil
}

// Get 读取缓存项，未命中或已过期返回false
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		return nil, false, nil
	}
	return item.data, true, nil
}

// Delete 删除缓存项
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Keys 返回指定前缀的全部未过期键
func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for key, item := range s.items {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Cleanup 清扫全部过期项，返回回收数量
func (s *MemoryStore) Cleanup(_ context.Context) int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, item := range s.items {
		if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}
