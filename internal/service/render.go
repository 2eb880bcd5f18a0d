package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/render"
	"github.com/Ly-yang/wechat-editor/internal/repository"
)

// RenderService turns article text into styled HTML.
//
// A style name is resolved against the templates visible to the caller
// first (their own, then public ones), then against the built-in styles.
// An unknown name falls back to the default style rather than failing: a
// deleted template must not make an article unrenderable.
type RenderService struct {
	templates repository.TemplateRepository
	logger    *slog.Logger
}

func NewRenderService(templates repository.TemplateRepository, logger *slog.Logger) *RenderService {
	return &RenderService{templates: templates, logger: logger}
}

// RenderRequest is the input to Render.
type RenderRequest struct {
	Content       string `json:"content"`
	StyleTemplate string `json:"styleTemplate"`
	FontSize      int    `json:"fontSize"`
	PrimaryColor  string `json:"primaryColor"`
}

// Render produces HTML for req.Content using the resolved style.
func (s *RenderService) Render(ctx context.Context, owner int64, req RenderRequest) (string, error) {
	style, err := s.ResolveStyle(ctx, owner, req.StyleTemplate)
	if err != nil {
		return "", err
	}
	return render.HTML(req.Content, style, render.Options{
		FontSize:     req.FontSize,
		PrimaryColor: req.PrimaryColor,
	}), nil
}

// ResolveStyle finds the Style called name. Template roles left empty are
// filled from the built-in of the same name, or from the default style.
func (s *RenderService) ResolveStyle(ctx context.Context, owner int64, name string) (render.Style, error) {
	if name == "" {
		name = render.DefaultStyle
	}

	fallback, ok := render.Builtin(name)
	if !ok {
		fallback, _ = render.Builtin(render.DefaultStyle)
	}

	tpl, err := s.templates.FindVisibleTemplate(ctx, owner, name)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return fallback, nil
		}
		return render.Style{}, err
	}

	// The use counter is informational; a failed bump must not fail the render.
	if err := s.templates.IncrementTemplateUse(ctx, tpl.ID); err != nil {
		s.logger.Warn("failed to count template use",
			slog.Int64("templateID", tpl.ID),
			slog.String("error", err.Error()),
		)
	}

	return render.FromConfig(tpl.StyleConfig, fallback), nil
}
