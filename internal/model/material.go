package model

import "time"

// MaterialKind classifies a reusable asset.
type MaterialKind string

const (
	MaterialImage   MaterialKind = "image"
	MaterialEmoji   MaterialKind = "emoji"
	MaterialDivider MaterialKind = "divider"
)

// Valid reports whether k is one of the known kinds.
func (k MaterialKind) Valid() bool {
	switch k {
	case MaterialImage, MaterialEmoji, MaterialDivider:
		return true
	}
	return false
}

// Material is an uploaded or linked asset owned by a user.
//
// FilePath is set for files stored on local disk (relative to the working
// directory, e.g. "uploads/abc.png"); ExternalURL for assets that live
// elsewhere. URL is the servable address derived from the two.
type Material struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"userId"`
	Type        MaterialKind `json:"type"`
	Name        string       `json:"name"`
	FilePath    string       `json:"-"`
	ExternalURL string       `json:"-"`
	URL         string       `json:"url"`
	Tags        []string     `json:"tags"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ResolveURL derives the servable URL: "/"+FilePath when a local path is
// stored, otherwise the external URL.
func (m *Material) ResolveURL() string {
	if m.FilePath != "" {
		return "/" + m.FilePath
	}
	return m.ExternalURL
}
