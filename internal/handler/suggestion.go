package handler

import (
	"log/slog"
	"net/http"

	"github.com/Ly-yang/wechat-editor/internal/service"
)

// SuggestionHandler serves the writing suggestion routes.
type SuggestionHandler struct {
	suggestions *service.SuggestionService
	logger      *slog.Logger
}

func NewSuggestionHandler(suggestions *service.SuggestionService, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions, logger: logger}
}

type suggestionRequest struct {
	Content   string `json:"content"`
	ArticleID *int64 `json:"articleId"`
}

func (req *suggestionRequest) Bind(r *http.Request) error { return nil }

// SuggestionsResponse wraps the generated suggestions.
type SuggestionsResponse struct {
	Suggestions []service.SuggestionResult `json:"suggestions"`
}

// HandleSuggest runs the heuristics over content.
//
// HTTP: POST /api/ai/suggestions {content, articleId} → {suggestions}
func (h *SuggestionHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req suggestionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// The frontend sends articleId 0 (or null) for an unsaved draft.
	if req.ArticleID != nil && *req.ArticleID <= 0 {
		req.ArticleID = nil
	}

	results, err := h.suggestions.Suggest(r.Context(), owner, req.Content, req.ArticleID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, SuggestionsResponse{Suggestions: results})
}

// HandleApply marks a suggestion as applied.
//
// HTTP: POST /api/ai/suggestions/{id}/apply → {message}
func (h *SuggestionHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
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

	if err := h.suggestions.MarkApplied(r.Context(), owner, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, MessageResponse{Message: "suggestion applied"})
}
