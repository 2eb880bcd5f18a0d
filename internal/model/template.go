package model

import "time"

// Template is a named set of CSS rules used to render articles.
//
// UserID is nil for system templates, which are seeded at startup and are
// visible to everyone. StyleConfig maps a role ("titleStyle", "paragraphStyle",
// "quoteStyle", "highlightStyle", ...) to an inline CSS declaration list.
type Template struct {
	ID          int64             `json:"id"`
	UserID      *int64            `json:"userId"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	StyleConfig map[string]string `json:"styleConfig"`
	IsPublic    bool              `json:"isPublic"`
	UseCount    int64             `json:"useCount"`
	AuthorName  string            `json:"authorName,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// IsSystem reports whether the template belongs to no user.
func (t *Template) IsSystem() bool {
	return t.UserID == nil
}
