// Package seed fills a database with demo users and articles for local
// development. Data goes through the services, so every seeded article is
// validated and rendered exactly like one saved from the editor.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/render"
	"github.com/Ly-yang/wechat-editor/internal/service"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "password123"

// Options controls how much data Run creates.
type Options struct {
	Users            int
	ArticlesPerUser  int
	TemplatesPerUser int
	// Seed makes the generated data reproducible. Zero picks a random seed.
	Seed int64
}

// Summary reports what Run created.
type Summary struct {
	Users     int
	Articles  int
	Templates int
}

// Seeder builds demo entities with gofakeit and stores them via the services.
type Seeder struct {
	auth      *service.AuthService
	articles  *service.ArticleService
	templates *service.TemplateService
	logger    *slog.Logger
}

func NewSeeder(auth *service.AuthService, articles *service.ArticleService, templates *service.TemplateService, logger *slog.Logger) *Seeder {
	return &Seeder{auth: auth, articles: articles, templates: templates, logger: logger}
}

// Run creates opts.Users accounts, each with articles and templates.
// Usernames carry an index suffix so repeated fake names do not collide.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	f := gofakeit.New(opts.Seed)

	if err := s.templates.EnsureSystemTemplates(ctx); err != nil {
		return sum, err
	}

	for i := range opts.Users {
		username := fmt.Sprintf("%s%d", sanitizeUsername(f.Username()), i+1)
		email := strings.ToLower(username) + "@example.com"

		res, err := s.auth.Register(ctx, username, email, DefaultPassword)
		if err != nil {
			return sum, fmt.Errorf("seeding user %s: %w", username, err)
		}
		sum.Users++

		for range opts.ArticlesPerUser {
			if _, err := s.articles.Create(ctx, res.User.ID, BuildArticle(f)); err != nil {
				return sum, fmt.Errorf("seeding article for %s: %w", username, err)
			}
			sum.Articles++
		}

		for range opts.TemplatesPerUser {
			if _, err := s.templates.Create(ctx, res.User.ID, BuildTemplate(f)); err != nil {
				return sum, fmt.Errorf("seeding template for %s: %w", username, err)
			}
			sum.Templates++
		}

		s.logger.Debug("seeded user", slog.String("username", username), slog.Int64("userID", res.User.ID))
	}

	return sum, nil
}

// BuildArticle returns an unsaved article with headings, emphasis, quotes
// and a closing question, so the renderer and the suggestion rules both have
// something to work on.
func BuildArticle(f *gofakeit.Faker) model.ArticleInput {
	var b strings.Builder

	b.WriteString("# " + strings.TrimSuffix(f.Sentence(4), ".") + "\n\n")
	for range f.Number(2, 4) {
		b.WriteString("## " + strings.TrimSuffix(f.Sentence(3), ".") + "\n\n")
		b.WriteString(f.Paragraph(1, 3, 12, " ") + "\n\n")
		b.WriteString("Remember: **" + f.Sentence(4) + "**\n\n")
		if f.Bool() {
			b.WriteString("> " + f.Quote() + "\n\n")
		}
	}
	b.WriteString(f.Question())

	return model.ArticleInput{
		Title:         strings.TrimSuffix(f.Sentence(5), "."),
		Content:       b.String(),
		StyleTemplate: f.RandomString(render.BuiltinNames()),
		FontSize:      f.Number(14, 18),
		PrimaryColor:  f.HexColor(),
		IsPublished:   f.Bool(),
	}
}

// BuildTemplate returns a template input derived from a random built-in
// style with a new accent color.
func BuildTemplate(f *gofakeit.Faker) service.TemplateInput {
	base, _ := render.Builtin(f.RandomString(render.BuiltinNames()))
	color := f.HexColor()
	base.Highlight = fmt.Sprintf("background: %s; color: #fff; padding: 2px 6px; border-radius: 3px;", color)

	return service.TemplateInput{
		Name:        f.Color() + " " + f.Word(),
		Description: f.Sentence(8),
		StyleConfig: base.Config(),
		IsPublic:    f.Bool(),
	}
}

// sanitizeUsername keeps ASCII letters and digits so the derived email
// address is always valid.
func sanitizeUsername(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return -1
	}, name)
	if name == "" {
		name = "user"
	}
	if len(name) > 30 {
		name = name[:30]
	}
	return name
}
