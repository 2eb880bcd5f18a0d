package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/metrics"
	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/repository"
)

// Validation limits for articles.
const (
	MaxTitleLength   = 200
	MaxContentBytes  = 1 << 20 // 1 MiB of source text
	MinFontSize      = 10
	MaxFontSize      = 40
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// ArticleService handles the business rules for articles.
//
// Every method takes the owner's user id from the verified token. The
// repository scopes every query by it, so an article owned by someone else
// behaves exactly like one that does not exist.
type ArticleService struct {
	repo     repository.ArticleRepository
	renderer *RenderService
	logger   *slog.Logger
}

func NewArticleService(repo repository.ArticleRepository, renderer *RenderService, logger *slog.Logger) *ArticleService {
	return &ArticleService{repo: repo, renderer: renderer, logger: logger}
}

// Create validates in, fills defaults and stores a new article.
//
// When the client sends no rendered HTML the service renders the content
// itself with the article's style, so a stored article always has HTML.
func (s *ArticleService) Create(ctx context.Context, owner int64, in model.ArticleInput) (*model.Article, error) {
	if err := s.prepare(ctx, owner, &in); err != nil {
		return nil, err
	}

	a := &model.Article{
		UserID:        owner,
		Title:         in.Title,
		Content:       in.Content,
		HTMLContent:   in.HTMLContent,
		StyleTemplate: in.StyleTemplate,
		FontSize:      in.FontSize,
		PrimaryColor:  in.PrimaryColor,
		IsPublished:   in.IsPublished,
	}
	if err := s.repo.CreateArticle(ctx, a); err != nil {
		return nil, fmt.Errorf("creating article: %w", err)
	}

	metrics.ArticleOpsTotal.WithLabelValues("create").Inc()
	s.logger.Info("article created",
		slog.Int64("articleID", a.ID),
		slog.Int64("userID", owner),
	)
	return a, nil
}

// Get returns one of the owner's articles.
func (s *ArticleService) Get(ctx context.Context, owner, id int64) (*model.Article, error) {
	return s.repo.GetArticle(ctx, owner, id)
}

// List returns one page of the owner's articles, most recently updated first.
//
// Out-of-range paging is coerced, not rejected: page < 1 becomes 1, a
// missing limit becomes DefaultListLimit and a huge one is capped.
func (s *ArticleService) List(ctx context.Context, owner int64, page, limit int) (*model.ArticlePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// A page far past the end must not wrap around to a negative offset,
	// which SQLite would read as 0 and answer with the first page.
	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}

	summaries, total, err := s.repo.ListArticles(ctx, owner, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	if summaries == nil {
		summaries = []model.ArticleSummary{}
	}

	return &model.ArticlePage{
		Articles:   summaries,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// Update overwrites every editable field of an article. Fields the client
// leaves empty are reset to their defaults, not kept.
func (s *ArticleService) Update(ctx context.Context, owner, id int64, in model.ArticleInput) error {
	if err := s.prepare(ctx, owner, &in); err != nil {
		return err
	}
	if err := s.repo.UpdateArticle(ctx, owner, id, in); err != nil {
		return err
	}

	metrics.ArticleOpsTotal.WithLabelValues("update").Inc()
	s.logger.Info("article updated",
		slog.Int64("articleID", id),
		slog.Int64("userID", owner),
	)
	return nil
}

// Delete removes an article. Suggestions that referenced it keep their
// history with the article link cleared.
func (s *ArticleService) Delete(ctx context.Context, owner, id int64) error {
	if err := s.repo.DeleteArticle(ctx, owner, id); err != nil {
		return err
	}

	metrics.ArticleOpsTotal.WithLabelValues("delete").Inc()
	s.logger.Info("article deleted",
		slog.Int64("articleID", id),
		slog.Int64("userID", owner),
	)
	return nil
}

// prepare trims and validates in, applies defaults and renders the HTML
// when it is missing.
func (s *ArticleService) prepare(ctx context.Context, owner int64, in *model.ArticleInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.StyleTemplate = strings.TrimSpace(in.StyleTemplate)
	in.PrimaryColor = strings.TrimSpace(in.PrimaryColor)

	switch {
	case in.Title == "":
		return apperror.ValidationFailed("title", "title is required")
	case utf8.RuneCountInString(in.Title) > MaxTitleLength:
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	case len(in.Content) > MaxContentBytes:
		return apperror.ValidationFailed("content", "content exceeds the 1 MiB limit")
	case in.FontSize != 0 && (in.FontSize < MinFontSize || in.FontSize > MaxFontSize):
		return apperror.ValidationFailed("fontSize",
			fmt.Sprintf("fontSize must be between %d and %d", MinFontSize, MaxFontSize))
	}

	in.ApplyDefaults()

	if strings.TrimSpace(in.HTMLContent) == "" && in.Content != "" && s.renderer != nil {
		html, err := s.renderer.Render(ctx, owner, RenderRequest{
			Content:       in.Content,
			StyleTemplate: in.StyleTemplate,
			FontSize:      in.FontSize,
			PrimaryColor:  in.PrimaryColor,
		})
		if err != nil {
			return fmt.Errorf("rendering article: %w", err)
		}
		in.HTMLContent = html
	}
	return nil
}
