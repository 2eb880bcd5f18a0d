package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/render"
	"github.com/Ly-yang/wechat-editor/internal/repository"
)

const (
	MaxTemplateNameLength        = 100
	MaxTemplateDescriptionLength = 500
	MaxStyleConfigKeys           = 50
	MaxStyleValueLength          = 2000
)

// TemplateService manages style templates.
type TemplateService struct {
	repo   repository.TemplateRepository
	logger *slog.Logger
}

func NewTemplateService(repo repository.TemplateRepository, logger *slog.Logger) *TemplateService {
	return &TemplateService{repo: repo, logger: logger}
}

// List returns every public template plus the caller's private ones.
func (s *TemplateService) List(ctx context.Context, owner int64) ([]model.Template, error) {
	templates, err := s.repo.ListVisibleTemplates(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	if templates == nil {
		templates = []model.Template{}
	}
	return templates, nil
}

// TemplateInput is the client-supplied part of a new template.
type TemplateInput struct {
	Name        string
	Description string
	StyleConfig map[string]string
	IsPublic    bool
}

// Create stores a template owned by the caller.
func (s *TemplateService) Create(ctx context.Context, owner int64, in TemplateInput) (*model.Template, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)

	switch {
	case name == "":
		return nil, apperror.ValidationFailed("name", "name is required")
	case utf8.RuneCountInString(name) > MaxTemplateNameLength:
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxTemplateNameLength))
	case utf8.RuneCountInString(description) > MaxTemplateDescriptionLength:
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxTemplateDescriptionLength))
	case len(in.StyleConfig) == 0:
		return nil, apperror.ValidationFailed("styleConfig", "styleConfig must contain at least one style")
	case len(in.StyleConfig) > MaxStyleConfigKeys:
		return nil, apperror.ValidationFailed("styleConfig",
			fmt.Sprintf("styleConfig may contain at most %d styles", MaxStyleConfigKeys))
	}
	for key, value := range in.StyleConfig {
		if strings.TrimSpace(key) == "" {
			return nil, apperror.ValidationFailed("styleConfig", "style names must not be empty")
		}
		if len(value) > MaxStyleValueLength {
			return nil, apperror.ValidationFailed("styleConfig",
				fmt.Sprintf("style %q exceeds %d characters", key, MaxStyleValueLength))
		}
	}

	ownerID := owner
	t := &model.Template{
		UserID:      &ownerID,
		Name:        name,
		Description: description,
		StyleConfig: in.StyleConfig,
		IsPublic:    in.IsPublic,
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}

	s.logger.Info("template created",
		slog.Int64("templateID", t.ID),
		slog.Int64("userID", owner),
		slog.Bool("public", t.IsPublic),
	)
	return t, nil
}

// EnsureSystemTemplates stores the built-in styles as owner-less public
// templates. It is idempotent and runs on every start.
func (s *TemplateService) EnsureSystemTemplates(ctx context.Context) error {
	names := render.BuiltinNames()
	templates := make([]model.Template, 0, len(names))
	for _, name := range names {
		style, _ := render.Builtin(name)
		templates = append(templates, model.Template{
			Name:        name,
			Description: render.BuiltinDescription(name),
			StyleConfig: style.Config(),
			IsPublic:    true,
		})
	}

	if err := s.repo.EnsureSystemTemplates(ctx, templates); err != nil {
		return fmt.Errorf("seeding system templates: %w", err)
	}
	s.logger.Debug("system templates ensured", slog.Int("count", len(templates)))
	return nil
}
