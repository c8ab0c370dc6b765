package database

import (
	"context"
	"encoding/json"
	"fmt"

	"streamverse-backend/pkg/models"
)

// DefaultLocalSlot is the slot name used by the client-side store.
const DefaultLocalSlot = "streamverse-sites"

// SlotStore is a localStorage-like string map scoped to one client.
type SlotStore interface {
	// GetItem returns ok=false when the slot is empty.
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Close() error
}

// LocalStorage 客户端本地存储实现（兜底后端）
type LocalStorage struct {
	slots SlotStore
	slot  string
	opts  storeOptions
}

var _ SiteStore = (*LocalStorage)(nil)

// NewLocalStorage 创建本地存储
func NewLocalStorage(slots SlotStore, slot string, opts ...Option) *LocalStorage {
	if slot == "" {
		slot = DefaultLocalSlot
	}
	return &LocalStorage{
		slots: slots,
		slot:  slot,
		opts:  buildOptions(opts),
	}
}

// Name implements SiteStore.
func (s *LocalStorage) Name() string { return "local" }

// Initialize 槽位为空时写入默认集合
func (s *LocalStorage) Initialize(context.Context) error {
	_, ok, err := s.slots.GetItem(s.slot)
	if err != nil {
		fmt.Printf("⚠️  Error reading local slot %s: %v\n", s.slot, err)
	}
	if ok {
		return nil
	}
	return s.saveToStorage(s.opts.seedCopy())
}

// getFromStorage degrades to the seed on a missing or corrupt slot.
func (s *LocalStorage) getFromStorage() []models.Site {
	raw, ok, err := s.slots.GetItem(s.slot)
	if err != nil {
		fmt.Printf("❌ Error reading from local storage: %v\n", err)
		return s.opts.seedCopy()
	}
	if !ok {
		return s.opts.seedCopy()
	}

	var sites []models.Site
	if err := json.Unmarshal([]byte(raw), &sites); err != nil {
		fmt.Printf("❌ Error decoding local storage slot %s: %v\n", s.slot, err)
		return s.opts.seedCopy()
	}
	if sites == nil {
		sites = []models.Site{}
	}
	return sites
}

func (s *LocalStorage) saveToStorage(sites []models.Site) error {
	if sites == nil {
		sites = []models.Site{}
	}
	data, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("failed to encode sites: %w", err)
	}
	if err := s.slots.SetItem(s.slot, string(data)); err != nil {
		fmt.Printf("❌ Error saving to local storage: %v\n", err)
		return fmt.Errorf("failed to save slot %s: %w: %w", s.slot, err, ErrStoreUnavailable)
	}
	return nil
}

// ListSites 获取所有站点
func (s *LocalStorage) ListSites(context.Context) ([]models.Site, error) {
	return s.getFromStorage(), nil
}

// AddSite 添加站点
func (s *LocalStorage) AddSite(_ context.Context, in models.SiteInput) (*models.Site, error) {
	sites, site := appendSite(s.getFromStorage(), in, s.opts.newID())
	if err := s.saveToStorage(sites); err != nil {
		return nil, err
	}
	return &site, nil
}

// UpdateSite 更新站点
func (s *LocalStorage) UpdateSite(_ context.Context, id string, in models.SiteInput) (*models.Site, error) {
	sites := s.getFromStorage()
	site, ok := replaceSite(sites, id, in)
	if !ok {
		return nil, ErrSiteNotFound
	}
	if err := s.saveToStorage(sites); err != nil {
		return nil, err
	}
	return &site, nil
}

// DeleteSite 删除站点
func (s *LocalStorage) DeleteSite(_ context.Context, id string) (bool, error) {
	remaining, ok := removeSite(s.getFromStorage(), id)
	if !ok {
		return false, nil
	}
	if err := s.saveToStorage(remaining); err != nil {
		return false, err
	}
	return true, nil
}

// Clear empties the slot; the next read falls back to the seed.
func (s *LocalStorage) Clear() error {
	return s.slots.RemoveItem(s.slot)
}

// HealthCheck 本地存储总是可用
func (s *LocalStorage) HealthCheck(context.Context) error {
	return nil
}

// Close 关闭底层槽位存储
func (s *LocalStorage) Close() error {
	return s.slots.Close()
}
