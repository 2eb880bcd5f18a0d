package model

import "time"

// SuggestionRecord is the audit entry persisted for every suggestion handed to
// a user. Records are append-only; only IsApplied may change afterwards.
type SuggestionRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ArticleID *int64    `json:"articleId"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	IsApplied bool      `json:"isApplied"`
	CreatedAt time.Time `json:"createdAt"`
}
