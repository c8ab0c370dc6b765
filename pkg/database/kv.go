package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"streamverse-backend/pkg/models"
)

// KVClient is the minimal key-value surface the KV store needs.
type KVClient interface {
	// Get returns ok=false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// KVDatabase 远程键值存储实现：整个站点集合序列化后存放在一个键下
type KVDatabase struct {
	client KVClient
	key    string
	opts   storeOptions

	seedMu sync.Mutex
	seeded bool
}

var _ SiteStore = (*KVDatabase)(nil)

// NewKVDatabase 创建KV存储；client为nil时存储不可用
func NewKVDatabase(client KVClient, key string, opts ...Option) *KVDatabase {
	if key == "" {
		key = DefaultKVKey
	}
	return &KVDatabase{
		client: client,
		key:    key,
		opts:   buildOptions(opts),
	}
}

// Name implements SiteStore.
func (db *KVDatabase) Name() string { return "kv" }

// Available reports whether a client was configured.
func (db *KVDatabase) Available() bool { return db.client != nil }

func (db *KVDatabase) ensureAvailable() error {
	if db.client == nil {
		return fmt.Errorf("KV storage is not available: %w", ErrStoreUnavailable)
	}
	return nil
}

// Initialize 首次访问时，如果键不存在或集合为空，写入默认集合
func (db *KVDatabase) Initialize(ctx context.Context) error {
	_, err := db.load(ctx)
	return err
}

// load reads the collection. Only the first successful access of this store
// seeds an absent or empty key; afterwards an empty value is an empty
// collection, so deleting the last site sticks.
func (db *KVDatabase) load(ctx context.Context) ([]models.Site, error) {
	if err := db.ensureAvailable(); err != nil {
		return nil, err
	}

	db.seedMu.Lock()
	seeded := db.seeded
	db.seedMu.Unlock()
	if seeded {
		return db.read(ctx)
	}

	db.seedMu.Lock()
	defer db.seedMu.Unlock()

	sites, err := db.read(ctx)
	if err != nil || db.seeded {
		return sites, err
	}

	if len(sites) == 0 {
		seed := db.opts.seedCopy()
		if err := db.save(ctx, seed); err != nil {
			return nil, err
		}
		fmt.Printf("🌱 Seeded KV key %s with %d sites\n", db.key, len(seed))
		sites = seed
	}
	db.seeded = true
	return sites, nil
}

// read decodes the stored collection; absent or blank values read as empty.
func (db *KVDatabase) read(ctx context.Context) ([]models.Site, error) {
	raw, ok, err := db.client.Get(ctx, db.key)
	if err != nil {
		fmt.Printf("❌ Error getting sites from KV: %v\n", err)
		return nil, fmt.Errorf("failed to read %s: %w", db.key, err)
	}

	sites := []models.Site{}
	if ok && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &sites); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", db.key, err)
		}
		if sites == nil {
			sites = []models.Site{}
		}
	}
	return sites, nil
}

func (db *KVDatabase) save(ctx context.Context, sites []models.Site) error {
	if sites == nil {
		sites = []models.Site{}
	}
	data, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("failed to encode sites: %w", err)
	}
	if err := db.client.Set(ctx, db.key, data); err != nil {
		fmt.Printf("❌ Error saving sites to KV: %v\n", err)
		return fmt.Errorf("failed to write %s: %w", db.key, err)
	}
	return nil
}

// ListSites 获取所有站点
func (db *KVDatabase) ListSites(ctx context.Context) ([]models.Site, error) {
	return db.load(ctx)
}

// AddSite 添加站点
func (db *KVDatabase) AddSite(ctx context.Context, in models.SiteInput) (*models.Site, error) {
	sites, err := db.load(ctx)
	if err != nil {
		return nil, err
	}
	sites, site := appendSite(sites, in, db.opts.newID())
	if err := db.save(ctx, sites); err != nil {
		return nil, err
	}
	return &site, nil
}

// UpdateSite 更新站点
func (db *KVDatabase) UpdateSite(ctx context.Context, id string, in models.SiteInput) (*models.Site, error) {
	sites, err := db.load(ctx)
	if err != nil {
		return nil, err
	}
	site, ok := replaceSite(sites, id, in)
	if !ok {
		return nil, ErrSiteNotFound
	}
	if err := db.save(ctx, sites); err != nil {
		return nil, err
	}
	return &site, nil
}

// DeleteSite 删除站点
func (db *KVDatabase) DeleteSite(ctx context.Context, id string) (bool, error) {
	sites, err := db.load(ctx)
	if err != nil {
		return false, err
	}
	remaining, ok := removeSite(sites, id)
	if !ok {
		return false, nil
	}
	if err := db.save(ctx, remaining); err != nil {
		return false, err
	}
	return true, nil
}

// HealthCheck 健康检查
func (db *KVDatabase) HealthCheck(ctx context.Context) error {
	if err := db.ensureAvailable(); err != nil {
		return err
	}
	if err := db.client.Ping(ctx); err != nil {
		return fmt.Errorf("KV ping failed: %w", err)
	}
	return nil
}

// Close 关闭连接
func (db *KVDatabase) Close() error {
	if db.client == nil {
		return nil
	}
	return db.client.Close()
}
