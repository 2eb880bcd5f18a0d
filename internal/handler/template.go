package handler

import (
	"log/slog"
	"net/http"

	"github.com/Ly-yang/wechat-editor/internal/service"
)

// TemplateHandler serves the style template routes and the render preview.
type TemplateHandler struct {
	templates *service.TemplateService
	renderer  *service.RenderService
	logger    *slog.Logger
}

func NewTemplateHandler(templates *service.TemplateService, renderer *service.RenderService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, renderer: renderer, logger: logger}
}

type templateRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	StyleConfig map[string]string `json:"styleConfig"`
	IsPublic    bool              `json:"isPublic"`
}

func (req *templateRequest) Bind(r *http.Request) error { return nil }

// HandleList returns public templates plus the caller's own.
//
// HTTP: GET /api/templates
func (h *TemplateHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	templates, err := h.templates.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, templates)
}

// HandleCreate saves a template owned by the caller.
//
// HTTP: POST /api/templates {name, description, styleConfig, isPublic} → {id, message}
func (h *TemplateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req templateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	t, err := h.templates.Create(r.Context(), owner, service.TemplateInput{
		Name:        req.Name,
		Description: req.Description,
		StyleConfig: req.StyleConfig,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, MessageResponse{ID: t.ID, Message: "template saved"})
}

type renderRequest struct {
	service.RenderRequest
}

func (req *renderRequest) Bind(r *http.Request) error { return nil }

// RenderResponse carries the preview HTML.
type RenderResponse struct {
	HTML string `json:"html"`
}

// HandleRender previews content with a style.
//
// HTTP: POST /api/render {content, styleTemplate, fontSize, primaryColor} → {html}
func (h *TemplateHandler) HandleRender(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req renderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	html, err := h.renderer.Render(r.Context(), owner, req.RenderRequest)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, RenderResponse{HTML: html})
}
