package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Casers are stateful, so each call builds its own.
func foldText(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// FilterSites keeps sites whose name or description contains query,
// ignoring case. A blank query returns sites unchanged.
func FilterSites(sites []Site, query string) []Site {
	q := strings.TrimSpace(query)
	if q == "" {
		return sites
	}
	q = foldText(q)

	out := make([]Site, 0, len(sites))
	for _, s := range sites {
		if strings.Contains(foldText(s.Name), q) || strings.Contains(foldText(s.Description), q) {
			out = append(out, s)
		}
	}
	return out
}

// FilterByCategory 按分类过滤，空分类不过滤
func FilterByCategory(sites []Site, category Category) []Site {
	if category == "" {
		return sites
	}
	out := make([]Site, 0, len(sites))
	for _, s := range sites {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// CategoryGroup 一个分类下的站点
type CategoryGroup struct {
	Category Category `json:"category"`
	Accent   string   `json:"accent"`
	Count    int      `json:"count"`
	Sites    []Site   `json:"sites"`
}

// GroupByCategory groups sites by category in first-seen order. Sites keep
// their insertion order inside a group.
func GroupByCategory(sites []Site) []CategoryGroup {
	index := make(map[Category]int)
	groups := make([]CategoryGroup, 0)
	for _, s := range sites {
		i, ok := index[s.Category]
		if !ok {
			i = len(groups)
			index[s.Category] = i
			groups = append(groups, CategoryGroup{
				Category: s.Category,
				Accent:   s.Category.Accent(),
			})
		}
		groups[i].Sites = append(groups[i].Sites, s)
		groups[i].Count++
	}
	return groups
}
