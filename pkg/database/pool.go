package database

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// storePool 进程级存储缓存（无服务器环境在热启动之间复用）
type storePool struct {
	instance SiteStore
	config   DatabaseConfig
	mu       sync.RWMutex
	lastUsed time.Time
}

var (
	globalPool *storePool
	poolMutex  sync.Mutex
)

// idleTimeout is how long a cached store may sit unused before it is rebuilt.
const idleTimeout = 30 * time.Minute

// GetDatabase 获取存储实例（单例 + 配置变化/过期/不健康时重建）
func GetDatabase(ctx context.Context, config DatabaseConfig) (SiteStore, error) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool != nil && !shouldRecreateStore(ctx, globalPool, config) {
		globalPool.mu.Lock()
		globalPool.lastUsed = time.Now()
		globalPool.mu.Unlock()

		fmt.Printf("♻️  Reusing existing %s store\n", globalPool.instance.Name())
		return globalPool.instance, nil
	}

	fmt.Printf("🔄 Creating new store\n")

	// 关闭旧实例（如果存在）
	if globalPool != nil && globalPool.instance != nil {
		globalPool.instance.Close()
		globalPool = nil
	}

	instance, err := NewDatabase(config)
	if err != nil {
		return nil, err
	}

	// 初始化失败不致命：各后端会在读取时退化或报告不可用
	if err := instance.Initialize(ctx); err != nil {
		fmt.Printf("⚠️  Store initialization failed: %v\n", err)
	}

	globalPool = &storePool{
		instance: instance,
		config:   config,
		lastUsed: time.Now(),
	}
	return instance, nil
}

// shouldRecreateStore 判断是否需要重新创建存储
func shouldRecreateStore(ctx context.Context, pool *storePool, newConfig DatabaseConfig) bool {
	if pool == nil || pool.instance == nil {
		return true
	}

	if pool.config != newConfig {
		fmt.Printf("🔄 Storage configuration changed, recreating store\n")
		return true
	}

	pool.mu.RLock()
	expired := time.Since(pool.lastUsed) > idleTimeout
	pool.mu.RUnlock()
	if expired {
		fmt.Printf("⏰ Store expired, recreating\n")
		return true
	}

	// 未配置的存储重建后仍不可用
	if a, ok := pool.instance.(interface{ Available() bool }); ok && !a.Available() {
		return false
	}

	if err := pool.instance.HealthCheck(ctx); err != nil {
		fmt.Printf("❌ Store health check failed, recreating: %v\n", err)
		return true
	}

	return false
}

// ResetPool closes and forgets the cached store.
func ResetPool() {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool != nil && globalPool.instance != nil {
		globalPool.instance.Close()
	}
	globalPool = nil
}

// GetConnectionStats 获取存储缓存统计信息
func GetConnectionStats() map[string]interface{} {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return map[string]interface{}{
			"status":    "no_store",
			"last_used": nil,
		}
	}

	globalPool.mu.RLock()
	lastUsed := globalPool.lastUsed
	globalPool.mu.RUnlock()

	return map[string]interface{}{
		"status":    "ready",
		"backend":   globalPool.instance.Name(),
		"last_used": lastUsed.Format(time.RFC3339),
		"age":       time.Since(lastUsed).String(),
		"config": map[string]interface{}{
			"backend":      globalPool.config.Backend,
			"has_kv_rest":  globalPool.config.hasKVRest(),
			"has_postgres": globalPool.config.PostgresDSN != "",
			"data_file":    globalPool.config.DataFile,
		},
	}
}
