package models

// Site 目录中的一个站点
type Site struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	URL         string   `json:"url" yaml:"url"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`
	ImageURL    string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
}

// SiteInput is a Site without its id: the payload of add and update.
type SiteInput struct {
	Name        string   `json:"name" validate:"required,nonblank"`
	URL         string   `json:"url" validate:"required,httpurl"`
	Description string   `json:"description" validate:"required,nonblank"`
	Category    Category `json:"category" validate:"required,category"`
	ImageURL    string   `json:"imageUrl,omitempty" validate:"omitempty,httpurl"`
}

// WithID 生成带ID的站点
func (in SiteInput) WithID(id string) Site {
	return Site{
		ID:          id,
		Name:        in.Name,
		URL:         in.URL,
		Description: in.Description,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
	}
}

// Input strips the id.
func (s Site) Input() SiteInput {
	return SiteInput{
		Name:        s.Name,
		URL:         s.URL,
		Description: s.Description,
		Category:    s.Category,
		ImageURL:    s.ImageURL,
	}
}
