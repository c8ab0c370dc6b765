package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"streamverse-backend/pkg/models"
)

// FileDatabase 本地JSON文件存储实现
//
// The whole collection lives in one pretty-printed JSON document. A single
// writer is assumed; there is no file locking.
type FileDatabase struct {
	mu   sync.RWMutex // guards path
	path string
	opts storeOptions

	initOnce sync.Once
	initErr  error
}

var _ SiteStore = (*FileDatabase)(nil)

// NewFileDatabase 创建文件存储实例（Initialize 时才接触文件系统）
func NewFileDatabase(path string, opts ...Option) *FileDatabase {
	if path == "" {
		path = DefaultDataFile
	}
	return &FileDatabase{
		path: path,
		opts: buildOptions(opts),
	}
}

// Name implements SiteStore.
func (db *FileDatabase) Name() string { return "file" }

// Path returns the JSON document location.
func (db *FileDatabase) Path() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.path
}

// Initialize 确保目录存在，文件不存在时写入默认集合。只执行一次。
func (db *FileDatabase) Initialize(context.Context) error {
	db.initOnce.Do(func() {
		db.initErr = db.initialize()
		if db.initErr != nil {
			fmt.Printf("⚠️  Failed to initialize %s: %v\n", db.Path(), db.initErr)
		}
	})
	return db.initErr
}

func (db *FileDatabase) initialize() error {
	if err := db.resolveDirectory(); err != nil {
		return err
	}

	path := db.Path()
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	seed := db.opts.seedCopy()
	if err := db.saveSites(seed); err != nil {
		return err
	}
	fmt.Printf("🌱 Seeded %s with %d sites\n", path, len(seed))
	return nil
}

// resolveDirectory creates the data directory, moving the document under the
// temp dir when the configured one cannot be created. Runs once.
func (db *FileDatabase) resolveDirectory() error {
	path := db.Path()
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err == nil {
		return nil
	}
	fmt.Printf("⚠️  Failed to create data directory: %v\n", err)

	// 只读文件系统：改用临时目录
	fallback := filepath.Join(os.TempDir(), "streamverse-data", filepath.Base(path))
	if fallback == path {
		return fmt.Errorf("failed to create data directory: %w: %w", err, ErrStoreUnavailable)
	}
	if tmpErr := os.MkdirAll(filepath.Dir(fallback), 0o755); tmpErr != nil {
		return fmt.Errorf("failed to create data directory: %w: %w", err, ErrStoreUnavailable)
	}
	fmt.Printf("📁 Using %s instead\n", fallback)

	db.mu.Lock()
	db.path = fallback
	db.mu.Unlock()
	return nil
}

// getSites reads the document. Any failure degrades to the seed collection
// without repairing the file.
func (db *FileDatabase) getSites(ctx context.Context) []models.Site {
	_ = db.Initialize(ctx)
	path := db.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ Error reading sites: %v\n", err)
		return db.opts.seedCopy()
	}

	var sites []models.Site
	if err := json.Unmarshal(data, &sites); err != nil {
		fmt.Printf("❌ Error decoding %s: %v\n", path, err)
		return db.opts.seedCopy()
	}
	if sites == nil {
		sites = []models.Site{}
	}
	return sites
}

// saveSites writes the full collection. Callers must check the error.
func (db *FileDatabase) saveSites(sites []models.Site) error {
	path := db.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Printf("❌ Error saving sites: %v\n", err)
		return fmt.Errorf("failed to create data directory: %w: %w", err, ErrStoreUnavailable)
	}

	if sites == nil {
		sites = []models.Site{}
	}
	data, err := json.MarshalIndent(sites, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sites: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Printf("❌ Error saving sites: %v\n", err)
		return fmt.Errorf("failed to write %s: %w: %w", path, err, ErrStoreUnavailable)
	}
	return nil
}

// ListSites 获取所有站点（读取失败时返回默认集合）
func (db *FileDatabase) ListSites(ctx context.Context) ([]models.Site, error) {
	return db.getSites(ctx), nil
}

// AddSite 添加站点
func (db *FileDatabase) AddSite(ctx context.Context, in models.SiteInput) (*models.Site, error) {
	sites, site := appendSite(db.getSites(ctx), in, db.opts.newID())
	if err := db.saveSites(sites); err != nil {
		return nil, err
	}
	return &site, nil
}

// UpdateSite 更新站点
func (db *FileDatabase) UpdateSite(ctx context.Context, id string, in models.SiteInput) (*models.Site, error) {
	sites := db.getSites(ctx)
	site, ok := replaceSite(sites, id, in)
	if !ok {
		return nil, ErrSiteNotFound
	}
	if err := db.saveSites(sites); err != nil {
		return nil, err
	}
	return &site, nil
}

// DeleteSite 删除站点
func (db *FileDatabase) DeleteSite(ctx context.Context, id string) (bool, error) {
	remaining, ok := removeSite(db.getSites(ctx), id)
	if !ok {
		return false, nil
	}
	if err := db.saveSites(remaining); err != nil {
		return false, err
	}
	return true, nil
}

// HealthCheck 检查数据目录是否可访问
func (db *FileDatabase) HealthCheck(context.Context) error {
	dir := filepath.Dir(db.Path())
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("data directory %s: %w: %w", dir, err, ErrStoreUnavailable)
	}
	return nil
}

// Close 关闭连接（文件存储无需关闭）
func (db *FileDatabase) Close() error {
	return nil
}
