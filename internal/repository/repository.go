// Package repository declares the persistence interfaces the service layer
// depends on. The sqlite subpackage implements all of them on one *sql.DB.
//
// Every article, material and suggestion method takes the owner's user id and
// scopes its SQL with "user_id = ?". A row owned by someone else is reported
// exactly like a missing row (apperror.ErrNotFound).
package repository

import (
	"context"

	"github.com/Ly-yang/wechat-editor/internal/model"
)

// ListOptions selects one page of a listing.
type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// CreateUser inserts u and fills its ID and timestamps. A taken username or
	// email yields apperror.ErrDuplicate.
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	UpdateUserAvatar(ctx context.Context, id int64, avatar string) error
}

type ArticleRepository interface {
	CreateArticle(ctx context.Context, a *model.Article) error
	GetArticle(ctx context.Context, owner, id int64) (*model.Article, error)
	// ListArticles returns one page of summaries, newest update first, and the
	// owner's total article count.
	ListArticles(ctx context.Context, owner int64, opts ListOptions) ([]model.ArticleSummary, int, error)
	UpdateArticle(ctx context.Context, owner, id int64, in model.ArticleInput) error
	DeleteArticle(ctx context.Context, owner, id int64) error
}

type MaterialRepository interface {
	CreateMaterial(ctx context.Context, m *model.Material) error
	ListMaterials(ctx context.Context, owner int64, kind model.MaterialKind) ([]model.Material, error)
}

type TemplateRepository interface {
	// ListVisibleTemplates returns public templates plus the owner's private
	// ones, most used first.
	ListVisibleTemplates(ctx context.Context, owner int64) ([]model.Template, error)
	CreateTemplate(ctx context.Context, t *model.Template) error
	// FindVisibleTemplate looks a template up by name, preferring the owner's
	// own over a public one.
	FindVisibleTemplate(ctx context.Context, owner int64, name string) (*model.Template, error)
	IncrementTemplateUse(ctx context.Context, id int64) error
	// EnsureSystemTemplates inserts the given owner-less templates unless a
	// system template with the same name already exists.
	EnsureSystemTemplates(ctx context.Context, templates []model.Template) error
}

type SuggestionRepository interface {
	// CreateSuggestions appends records in a single statement and fills
	// their IDs.
	CreateSuggestions(ctx context.Context, records []model.SuggestionRecord) error
	MarkSuggestionApplied(ctx context.Context, owner, id int64) error
}

type StatsRepository interface {
	ArticleStats(ctx context.Context, owner int64) (*model.Stats, error)
}
