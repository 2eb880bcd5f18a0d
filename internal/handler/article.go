package handler

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Ly-yang/wechat-editor/internal/export"
	"github.com/Ly-yang/wechat-editor/internal/metrics"
	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/service"
)

// ArticleHandler serves the article CRUD routes and exports.
type ArticleHandler struct {
	articles *service.ArticleService
	logger   *slog.Logger
}

func NewArticleHandler(articles *service.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, logger: logger}
}

// articleRequest is the body of create and update.
type articleRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	HTMLContent   string `json:"htmlContent"`
	StyleTemplate string `json:"styleTemplate"`
	FontSize      int    `json:"fontSize"`
	PrimaryColor  string `json:"primaryColor"`
	IsPublished   bool   `json:"isPublished"`
}

func (req *articleRequest) Bind(r *http.Request) error { return nil }

func (req *articleRequest) input() model.ArticleInput {
	return model.ArticleInput{
		Title:         req.Title,
		Content:       req.Content,
		HTMLContent:   req.HTMLContent,
		StyleTemplate: req.StyleTemplate,
		FontSize:      req.FontSize,
		PrimaryColor:  req.PrimaryColor,
		IsPublished:   req.IsPublished,
	}
}

// HandleCreate stores a new article.
//
// HTTP: POST /api/articles → {id, message}
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req articleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	a, err := h.articles.Create(r.Context(), owner, req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, MessageResponse{ID: a.ID, Message: "article saved"})
}

// HandleList returns one page of the caller's articles.
//
// HTTP: GET /api/articles?page=1&limit=10
func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.articles.List(r.Context(), owner, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

// HandleGet returns a single article.
//
// HTTP: GET /api/articles/{id}
func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	a, err := h.articles.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, a)
}

// HandleUpdate overwrites an article.
//
// HTTP: PUT /api/articles/{id} → {message}
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req articleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.articles.Update(r.Context(), owner, id, req.input()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, MessageResponse{Message: "article updated"})
}

// HandleDelete removes an article.
//
// HTTP: DELETE /api/articles/{id} → {message}
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.articles.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, MessageResponse{Message: "article deleted"})
}

// HandleExport streams an article as a downloadable file.
//
// HTTP: GET /api/articles/{id}/export/{format}   format ∈ html, markdown, pdf
func (h *ArticleHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	format := chi.URLParam(r, "format")
	a, err := h.articles.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	doc, err := export.Export(a, export.Format(format))
	if err != nil {
		metrics.ExportsTotal.WithLabelValues(metricFormat(format), "rejected").Inc()
		writeError(w, r, h.logger, err)
		return
	}
	metrics.ExportsTotal.WithLabelValues(format, "ok").Inc()

	// FormatMediaType switches to the RFC 2231 filename* form for non-ASCII
	// titles.
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		h.logger.Warn("export write failed",
			slog.Int64("articleID", id),
			slog.String("error", err.Error()),
		)
	}
}

// metricFormat keeps arbitrary path values out of the metric label set.
func metricFormat(format string) string {
	switch export.Format(format) {
	case export.FormatHTML, export.FormatMarkdown, export.FormatPDF:
		return format
	}
	return "other"
}
