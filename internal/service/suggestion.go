package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ly-yang/wechat-editor/internal/metrics"
	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/repository"
	"github.com/Ly-yang/wechat-editor/internal/suggest"
)

// SuggestionService runs the writing heuristics and keeps an audit trail of
// every suggestion handed out.
type SuggestionService struct {
	repo     repository.SuggestionRepository
	articles repository.ArticleRepository
	logger   *slog.Logger
}

func NewSuggestionService(repo repository.SuggestionRepository, articles repository.ArticleRepository, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{repo: repo, articles: articles, logger: logger}
}

// SuggestionResult is a suggestion together with the id of its audit record,
// which the client passes back to MarkApplied.
type SuggestionResult struct {
	ID int64 `json:"id"`
	suggest.Suggestion
}

// Suggest evaluates content and records each suggestion. When articleID is
// set it must name one of the owner's articles.
func (s *SuggestionService) Suggest(ctx context.Context, owner int64, content string, articleID *int64) ([]SuggestionResult, error) {
	if articleID != nil {
		if _, err := s.articles.GetArticle(ctx, owner, *articleID); err != nil {
			return nil, err
		}
	}

	suggestions := suggest.Generate(content)

	records := make([]model.SuggestionRecord, len(suggestions))
	for i, sg := range suggestions {
		records[i] = model.SuggestionRecord{
			UserID:    owner,
			ArticleID: articleID,
			Type:      string(sg.Type),
			Content:   sg.Text,
		}
	}
	if err := s.repo.CreateSuggestions(ctx, records); err != nil {
		return nil, fmt.Errorf("recording suggestions: %w", err)
	}

	results := make([]SuggestionResult, len(suggestions))
	for i, sg := range suggestions {
		results[i] = SuggestionResult{ID: records[i].ID, Suggestion: sg}
		metrics.SuggestionsTotal.WithLabelValues(string(sg.Type)).Inc()
	}

	s.logger.Debug("suggestions generated",
		slog.Int64("userID", owner),
		slog.Int("count", len(results)),
	)
	return results, nil
}

// MarkApplied flags one of the owner's suggestions as applied.
func (s *SuggestionService) MarkApplied(ctx context.Context, owner, id int64) error {
	return s.repo.MarkSuggestionApplied(ctx, owner, id)
}
