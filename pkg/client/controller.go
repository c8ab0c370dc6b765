package client

import (
	"context"
	"fmt"
	"sync"

	"streamverse-backend/pkg/database"
	"streamverse-backend/pkg/models"
)

// Controller holds the collection currently shown to the user. Every
// successful mutation re-reads the whole collection, so the view always
// matches what the store returned last.
type Controller struct {
	store database.SiteStore

	mu    sync.RWMutex
	sites []models.Site
}

func NewController(store database.SiteStore) *Controller {
	return &Controller{store: store}
}

// Sites 当前显示的站点（副本）
func (c *Controller) Sites() []models.Site {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Site, len(c.sites))
	copy(out, c.sites)
	return out
}

// Refresh 重新获取完整集合
func (c *Controller) Refresh(ctx context.Context) error {
	sites, err := c.store.ListSites(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.sites = sites
	c.mu.Unlock()
	return nil
}

func (c *Controller) Add(ctx context.Context, in models.SiteInput) (*models.Site, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	site, err := c.store.AddSite(ctx, in)
	if err != nil {
		return nil, err
	}
	return site, c.Refresh(ctx)
}

// Update returns an error wrapping database.ErrSiteNotFound when no store has id.
func (c *Controller) Update(ctx context.Context, id string, in models.SiteInput) (*models.Site, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	site, err := c.store.UpdateSite(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return site, c.Refresh(ctx)
}

// Delete reports false, with no refresh, when no store has id.
func (c *Controller) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := c.store.DeleteSite(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	return true, c.Refresh(ctx)
}

// siteFinder is implemented by stores that can look one site up across media.
type siteFinder interface {
	FindSite(ctx context.Context, id string) (*models.Site, error)
}

// Find returns the site with id from the displayed collection, or asks the
// store when it is not displayed (the site may live in a fallback store).
func (c *Controller) Find(ctx context.Context, id string) (*models.Site, error) {
	if site, ok := database.FindSite(c.Sites(), id); ok {
		return site, nil
	}
	if finder, ok := c.store.(siteFinder); ok {
		return finder.FindSite(ctx, id)
	}
	return nil, fmt.Errorf("site %s: %w", id, database.ErrSiteNotFound)
}

// Search filters the displayed sites by name or description.
func (c *Controller) Search(query string) []models.Site {
	return models.FilterSites(c.Sites(), query)
}

// Groups 按分类分组当前显示的站点
func (c *Controller) Groups() []models.CategoryGroup {
	return models.GroupByCategory(c.Sites())
}
