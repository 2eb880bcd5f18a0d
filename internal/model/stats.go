package model

// Stats aggregates a user's article counters.
type Stats struct {
	TotalArticles     int64 `json:"totalArticles"`
	PublishedArticles int64 `json:"publishedArticles"`
	TotalViews        int64 `json:"totalViews"`
	TotalLikes        int64 `json:"totalLikes"`
}
