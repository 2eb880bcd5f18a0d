package model

import "time"

// Default presentation settings applied when a client leaves them empty.
const (
	DefaultStyleTemplate = "modern"
	DefaultFontSize      = 16
	DefaultPrimaryColor  = "#007aff"
)

// Article is a user's document: raw markdown-ish content plus its rendered HTML
// and the presentation settings used to produce it.
type Article struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	HTMLContent   string    `json:"htmlContent"`
	StyleTemplate string    `json:"styleTemplate"`
	FontSize      int       `json:"fontSize"`
	PrimaryColor  string    `json:"primaryColor"`
	IsPublished   bool      `json:"isPublished"`
	ViewCount     int64     `json:"viewCount"`
	LikeCount     int64     `json:"likeCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ArticleSummary is the list projection of an Article: no content bodies.
type ArticleSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	StyleTemplate string    `json:"styleTemplate"`
	IsPublished   bool      `json:"isPublished"`
	ViewCount     int64     `json:"viewCount"`
	LikeCount     int64     `json:"likeCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ArticleInput holds the client-editable fields of an Article, shared by create
// and update. Update is a full overwrite, so every field is always written.
type ArticleInput struct {
	Title         string
	Content       string
	HTMLContent   string
	StyleTemplate string
	FontSize      int
	PrimaryColor  string
	IsPublished   bool
}

// ApplyDefaults fills empty presentation settings with the package defaults.
func (in *ArticleInput) ApplyDefaults() {
	if in.StyleTemplate == "" {
		in.StyleTemplate = DefaultStyleTemplate
	}
	if in.FontSize <= 0 {
		in.FontSize = DefaultFontSize
	}
	if in.PrimaryColor == "" {
		in.PrimaryColor = DefaultPrimaryColor
	}
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count as ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ArticlePage is one page of article summaries.
type ArticlePage struct {
	Articles   []ArticleSummary `json:"articles"`
	Pagination Pagination       `json:"pagination"`
}
