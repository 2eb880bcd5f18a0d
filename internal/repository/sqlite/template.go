package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/model"
)

const templateSelect = `
	SELECT t.id, t.user_id, t.name, t.description, t.style_config, t.is_public,
	       t.use_count, t.created_at, COALESCE(u.username, '')
	FROM templates t
	LEFT JOIN users u ON u.id = t.user_id`

// ListVisibleTemplates returns every public template plus the owner's own.
func (db *DB) ListVisibleTemplates(ctx context.Context, owner int64) ([]model.Template, error) {
	rows, err := db.conn.QueryContext(ctx, templateSelect+`
		WHERE t.is_public = 1 OR t.user_id = ?
		ORDER BY t.use_count DESC, t.created_at DESC, t.id DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing templates: %w", err)
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning template row: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating templates: %w", err)
	}
	return templates, nil
}

// CreateTemplate stores t with its style configuration serialised as JSON.
func (db *DB) CreateTemplate(ctx context.Context, t *model.Template) error {
	cfg, err := json.Marshal(t.StyleConfig)
	if err != nil {
		return fmt.Errorf("sqlite: encoding style config: %w", err)
	}
	t.CreatedAt = db.now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO templates (user_id, name, description, style_config, is_public, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullInt64(t.UserID),
		t.Name,
		t.Description,
		string(cfg),
		t.IsPublic,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating template: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading template id: %w", err)
	}
	t.ID = id
	return nil
}

// FindVisibleTemplate prefers the owner's template of that name, then a
// public one (the most used wins when several share the name).
func (db *DB) FindVisibleTemplate(ctx context.Context, owner int64, name string) (*model.Template, error) {
	row := db.conn.QueryRowContext(ctx, templateSelect+`
		WHERE t.name = ? AND (t.user_id = ? OR t.is_public = 1)
		ORDER BY CASE WHEN t.user_id = ? THEN 0 ELSE 1 END, t.use_count DESC, t.id ASC
		LIMIT 1`,
		name, owner, owner,
	)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: fmt.Sprintf("template %q not found", name),
			Field:   "styleTemplate",
		}
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: finding template %q: %w", name, err)
	}
	return t, nil
}

func (db *DB) IncrementTemplateUse(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE templates SET use_count = use_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing template %d use count: %w", id, err)
	}
	return checkAffected(res, apperror.NotFound("template", id))
}

// EnsureSystemTemplates relies on the partial unique index on name for
// owner-less rows, so running it on every start is a no-op after the first.
func (db *DB) EnsureSystemTemplates(ctx context.Context, templates []model.Template) error {
	now := db.now()
	for _, t := range templates {
		cfg, err := json.Marshal(t.StyleConfig)
		if err != nil {
			return fmt.Errorf("sqlite: encoding style config of %q: %w", t.Name, err)
		}
		_, err = db.conn.ExecContext(ctx,
			`INSERT OR IGNORE INTO templates (user_id, name, description, style_config, is_public, created_at)
			 VALUES (NULL, ?, ?, ?, 1, ?)`,
			t.Name, t.Description, string(cfg), now,
		)
		if err != nil {
			return fmt.Errorf("sqlite: seeding template %q: %w", t.Name, err)
		}
	}
	return nil
}

func scanTemplate(row rowScanner) (*model.Template, error) {
	var (
		t      model.Template
		userID sql.NullInt64
		cfg    string
	)
	if err := row.Scan(
		&t.ID, &userID, &t.Name, &t.Description, &cfg,
		&t.IsPublic, &t.UseCount, &t.CreatedAt, &t.AuthorName,
	); err != nil {
		return nil, err
	}
	if userID.Valid {
		t.UserID = &userID.Int64
	}
	if err := json.Unmarshal([]byte(cfg), &t.StyleConfig); err != nil {
		return nil, fmt.Errorf("decoding style config of template %d: %w", t.ID, err)
	}
	return &t, nil
}
