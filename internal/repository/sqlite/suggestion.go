package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/model"
)

// CreateSuggestions appends all records with one multi-row INSERT, so either
// every record of a request is stored or none is.
func (db *DB) CreateSuggestions(ctx context.Context, records []model.SuggestionRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := db.now()
	placeholders := make([]string, len(records))
	args := make([]any, 0, len(records)*6)
	for i := range records {
		records[i].CreatedAt = now
		placeholders[i] = "(?, ?, ?, ?, ?, ?)"
		args = append(args,
			records[i].UserID,
			nullInt64(records[i].ArticleID),
			records[i].Type,
			records[i].Content,
			records[i].IsApplied,
			now,
		)
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO ai_suggestions (user_id, article_id, suggestion_type, suggestion_content, is_applied, created_at)
		 VALUES `+strings.Join(placeholders, ", "),
		args...,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &apperror.AppError{Err: apperror.ErrNotFound, Message: "article not found", Field: "articleId"}
		}
		return fmt.Errorf("sqlite: creating suggestions: %w", err)
	}

	// SQLite assigns consecutive rowids to the rows of one INSERT; the last
	// insert id belongs to the final row.
	last, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading suggestion ids: %w", err)
	}
	first := last - int64(len(records)) + 1
	for i := range records {
		records[i].ID = first + int64(i)
	}
	return nil
}

func (db *DB) MarkSuggestionApplied(ctx context.Context, owner, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE ai_suggestions SET is_applied = 1 WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("sqlite: marking suggestion %d applied: %w", id, err)
	}
	return checkAffected(res, apperror.NotFound("suggestion", id))
}
