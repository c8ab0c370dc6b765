package models

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

var (
	seedSites []Site
	seedErr   error
	seedOnce  sync.Once
)

// ParseSites decodes a YAML list of sites.
func ParseSites(data []byte) ([]Site, error) {
	var sites []Site
	if err := yaml.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("failed to parse sites: %w", err)
	}
	return sites, nil
}

// DefaultSites 返回内置的默认站点集合（每次返回新副本）
func DefaultSites() []Site {
	seedOnce.Do(func() {
		seedSites, seedErr = ParseSites(seedYAML)
	})
	if seedErr != nil {
		// 内嵌文件损坏属于构建错误
		panic(seedErr)
	}
	out := make([]Site, len(seedSites))
	copy(out, seedSites)
	return out
}
