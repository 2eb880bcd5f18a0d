package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// In-memory repositories. They follow the same contracts as the sqlite
// implementations (owner scoping, NotFound for foreign rows) so the services
// can be tested with plain function calls.

var (
	_ repository.UserRepository       = (*fakeUserRepo)(nil)
	_ repository.ArticleRepository    = (*fakeArticleRepo)(nil)
	_ repository.TemplateRepository   = (*fakeTemplateRepo)(nil)
	_ repository.MaterialRepository   = (*fakeMaterialRepo)(nil)
	_ repository.SuggestionRepository = (*fakeSuggestionRepo)(nil)
	_ repository.StatsRepository      = (*fakeStatsRepo)(nil)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fakeNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ---- users ----

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
	// set to a non-nil error to simulate a database failure
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return apperror.Duplicate("username")
		}
		if existing.Email == u.Email {
			return apperror.Duplicate("email")
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt, u.UpdatedAt = fakeNow, fakeNow
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"}
}

func (f *fakeUserRepo) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	for _, u := range f.users {
		if u.GitHubID != nil && *u.GitHubID == githubID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"}
}

func (f *fakeUserRepo) UpdateUserAvatar(ctx context.Context, id int64, avatar string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Avatar = avatar
	return nil
}

// ---- articles ----

type fakeArticleRepo struct {
	articles map[int64]*model.Article
	nextID   int64
	// lastList records the options of the most recent ListArticles call.
	lastList repository.ListOptions
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: make(map[int64]*model.Article), nextID: 1}
}

func (f *fakeArticleRepo) CreateArticle(ctx context.Context, a *model.Article) error {
	a.ID = f.nextID
	f.nextID++
	a.CreatedAt, a.UpdatedAt = fakeNow, fakeNow
	copied := *a
	f.articles[a.ID] = &copied
	return nil
}

func (f *fakeArticleRepo) GetArticle(ctx context.Context, owner, id int64) (*model.Article, error) {
	a, ok := f.articles[id]
	if !ok || a.UserID != owner {
		return nil, apperror.NotFound("article", id)
	}
	copied := *a
	return &copied, nil
}

func (f *fakeArticleRepo) ListArticles(ctx context.Context, owner int64, opts repository.ListOptions) ([]model.ArticleSummary, int, error) {
	f.lastList = opts

	var all []model.ArticleSummary
	for _, a := range f.articles {
		if a.UserID == owner {
			all = append(all, model.ArticleSummary{ID: a.ID, Title: a.Title})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := len(all)
	if opts.Offset >= total {
		return nil, total, nil
	}
	end := min(opts.Offset+opts.Limit, total)
	return all[opts.Offset:end], total, nil
}

func (f *fakeArticleRepo) UpdateArticle(ctx context.Context, owner, id int64, in model.ArticleInput) error {
	a, ok := f.articles[id]
	if !ok || a.UserID != owner {
		return apperror.NotFound("article", id)
	}
	a.Title = in.Title
	a.Content = in.Content
	a.HTMLContent = in.HTMLContent
	a.StyleTemplate = in.StyleTemplate
	a.FontSize = in.FontSize
	a.PrimaryColor = in.PrimaryColor
	a.IsPublished = in.IsPublished
	return nil
}

func (f *fakeArticleRepo) DeleteArticle(ctx context.Context, owner, id int64) error {
	a, ok := f.articles[id]
	if !ok || a.UserID != owner {
		return apperror.NotFound("article", id)
	}
	delete(f.articles, id)
	return nil
}

// ---- templates ----

type fakeTemplateRepo struct {
	templates []*model.Template
	nextID    int64
	// incrementErr simulates a failing use-count update.
	incrementErr error
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{nextID: 1}
}

func (f *fakeTemplateRepo) ListVisibleTemplates(ctx context.Context, owner int64) ([]model.Template, error) {
	var out []model.Template
	for _, t := range f.templates {
		if t.IsPublic || (t.UserID != nil && *t.UserID == owner) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) CreateTemplate(ctx context.Context, t *model.Template) error {
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = fakeNow
	copied := *t
	f.templates = append(f.templates, &copied)
	return nil
}

func (f *fakeTemplateRepo) FindVisibleTemplate(ctx context.Context, owner int64, name string) (*model.Template, error) {
	var public *model.Template
	for _, t := range f.templates {
		if t.Name != name {
			continue
		}
		if t.UserID != nil && *t.UserID == owner {
			copied := *t
			return &copied, nil
		}
		if t.IsPublic && public == nil {
			public = t
		}
	}
	if public == nil {
		return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "template not found"}
	}
	copied := *public
	return &copied, nil
}

func (f *fakeTemplateRepo) IncrementTemplateUse(ctx context.Context, id int64) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	for _, t := range f.templates {
		if t.ID == id {
			t.UseCount++
			return nil
		}
	}
	return apperror.NotFound("template", id)
}

func (f *fakeTemplateRepo) EnsureSystemTemplates(ctx context.Context, templates []model.Template) error {
	for _, in := range templates {
		exists := false
		for _, t := range f.templates {
			if t.UserID == nil && t.Name == in.Name {
				exists = true
				break
			}
		}
		if !exists {
			in.UserID = nil
			if err := f.CreateTemplate(ctx, &in); err != nil {
				return err
			}
		}
	}
	return nil
}

// ---- materials ----

type fakeMaterialRepo struct {
	materials []model.Material
	createErr error
}

func (f *fakeMaterialRepo) CreateMaterial(ctx context.Context, m *model.Material) error {
	if f.createErr != nil {
		return f.createErr
	}
	m.ID = int64(len(f.materials) + 1)
	m.CreatedAt = fakeNow
	m.URL = m.ResolveURL()
	f.materials = append(f.materials, *m)
	return nil
}

func (f *fakeMaterialRepo) ListMaterials(ctx context.Context, owner int64, kind model.MaterialKind) ([]model.Material, error) {
	var out []model.Material
	for _, m := range f.materials {
		if m.UserID == owner && m.Type == kind {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeFileStore keeps saved files in memory.
type fakeFileStore struct {
	files   map[string][]byte
	removed []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[string][]byte)}
}

func (f *fakeFileStore) Save(ctx context.Context, ext string, data []byte) (string, error) {
	path := "uploads/file" + string(rune('a'+len(f.files))) + ext
	f.files[path] = data
	return path, nil
}

func (f *fakeFileStore) Remove(publicPath string) error {
	delete(f.files, publicPath)
	f.removed = append(f.removed, publicPath)
	return nil
}

// ---- suggestions ----

type fakeSuggestionRepo struct {
	records []model.SuggestionRecord
}

func (f *fakeSuggestionRepo) CreateSuggestions(ctx context.Context, records []model.SuggestionRecord) error {
	for i := range records {
		records[i].ID = int64(len(f.records) + 1)
		records[i].CreatedAt = fakeNow
		f.records = append(f.records, records[i])
	}
	return nil
}

func (f *fakeSuggestionRepo) MarkSuggestionApplied(ctx context.Context, owner, id int64) error {
	for i := range f.records {
		if f.records[i].ID == id && f.records[i].UserID == owner {
			f.records[i].IsApplied = true
			return nil
		}
	}
	return apperror.NotFound("suggestion", id)
}

// ---- stats ----

type fakeStatsRepo struct {
	stats *model.Stats
	err   error
}

func (f *fakeStatsRepo) ArticleStats(ctx context.Context, owner int64) (*model.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}
