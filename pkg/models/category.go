package models

// Category 站点分类
type Category string

const (
	CategoryMovies    Category = "Movies"
	CategoryTVShows   Category = "TV Shows"
	CategoryAnime     Category = "Anime"
	CategorySports    Category = "Sports"
	CategoryStreaming Category = "Streaming"
	CategoryNews      Category = "News"
	CategoryOther     Category = "Other"
)

// DefaultAccent is used for any category outside the enumeration.
const DefaultAccent = "#6B7280"

var categoryAccents = map[Category]string{
	CategoryMovies:    "#ED4592",
	CategoryTVShows:   "#A855F7",
	CategoryAnime:     "#3B82F6",
	CategorySports:    "#22C55E",
	CategoryStreaming: "#06B6D4",
	CategoryNews:      "#F59E0B",
	CategoryOther:     DefaultAccent,
}

// Categories 返回所有分类（展示顺序）
func Categories() []Category {
	return []Category{
		CategoryMovies,
		CategoryTVShows,
		CategoryAnime,
		CategorySports,
		CategoryStreaming,
		CategoryNews,
		CategoryOther,
	}
}

// Known reports whether c is part of the enumeration.
func (c Category) Known() bool {
	_, ok := categoryAccents[c]
	return ok
}

// Accent 返回分类的强调色，未知分类退化为灰色
func (c Category) Accent() string {
	if accent, ok := categoryAccents[c]; ok {
		return accent
	}
	return DefaultAccent
}

// CategoryNames 用于校验与CLI帮助信息
func CategoryNames() []string {
	cats := Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return names
}
