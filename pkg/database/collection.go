package database

import (
	"github.com/google/uuid"

	"streamverse-backend/pkg/models"
)

// NewSiteID 生成新的站点ID（UUIDv7，按时间有序）
func NewSiteID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Option 存储后端的可选配置
type Option func(*storeOptions)

type storeOptions struct {
	seed  []models.Site
	newID func() string
}

// WithSeed replaces the built-in default collection used for seeding and
// degraded reads. An empty slice seeds an empty store.
func WithSeed(sites []models.Site) Option {
	return func(o *storeOptions) {
		o.seed = cloneSites(sites)
		if o.seed == nil {
			o.seed = []models.Site{}
		}
	}
}

// WithIDGenerator overrides NewSiteID.
func WithIDGenerator(fn func() string) Option {
	return func(o *storeOptions) { o.newID = fn }
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{newID: NewSiteID}
	for _, opt := range opts {
		opt(&o)
	}
	if o.seed == nil {
		o.seed = models.DefaultSites()
	}
	return o
}

func (o storeOptions) seedCopy() []models.Site {
	return cloneSites(o.seed)
}

func cloneSites(sites []models.Site) []models.Site {
	if sites == nil {
		return nil
	}
	out := make([]models.Site, len(sites))
	copy(out, sites)
	return out
}

// appendSite assigns a fresh id and appends the new site.
func appendSite(sites []models.Site, in models.SiteInput, id string) ([]models.Site, models.Site) {
	site := in.WithID(id)
	return append(sites, site), site
}

// replaceSite swaps the entry with the given id in place, keeping the id.
func replaceSite(sites []models.Site, id string, in models.SiteInput) (models.Site, bool) {
	for i := range sites {
		if sites[i].ID == id {
			sites[i] = in.WithID(id)
			return sites[i], true
		}
	}
	return models.Site{}, false
}

// removeSite drops the entry with the given id, keeping the order of the rest.
func removeSite(sites []models.Site, id string) ([]models.Site, bool) {
	out := make([]models.Site, 0, len(sites))
	for _, s := range sites {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out, len(out) != len(sites)
}

// FindSite 按ID查找站点
func FindSite(sites []models.Site, id string) (*models.Site, bool) {
	for i := range sites {
		if sites[i].ID == id {
			s := sites[i]
			return &s, true
		}
	}
	return nil, false
}
