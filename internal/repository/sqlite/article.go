package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/repository"
)

// CreateArticle inserts a and fills its ID and timestamps. The caller has
// already applied presentation defaults.
func (db *DB) CreateArticle(ctx context.Context, a *model.Article) error {
	now := db.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO articles (user_id, title, content, html_content, style_template,
		                       font_size, primary_color, is_published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID,
		a.Title,
		a.Content,
		a.HTMLContent,
		a.StyleTemplate,
		a.FontSize,
		a.PrimaryColor,
		a.IsPublished,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", a.UserID)
		}
		return fmt.Errorf("sqlite: creating article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading article id: %w", err)
	}
	a.ID = id
	return nil
}

// GetArticle returns the full record. Another user's article is NotFound.
func (db *DB) GetArticle(ctx context.Context, owner, id int64) (*model.Article, error) {
	var a model.Article
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, html_content, style_template, font_size,
		        primary_color, is_published, view_count, like_count, created_at, updated_at
		 FROM articles
		 WHERE id = ? AND user_id = ?`,
		id, owner,
	).Scan(
		&a.ID,
		&a.UserID,
		&a.Title,
		&a.Content,
		&a.HTMLContent,
		&a.StyleTemplate,
		&a.FontSize,
		&a.PrimaryColor,
		&a.IsPublished,
		&a.ViewCount,
		&a.LikeCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("article", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting article %d: %w", id, err)
	}
	return &a, nil
}

// ListArticles counts first, then fetches the page. Both statements filter on
// the same owner, so total and items agree unless a write lands in between.
func (db *DB) ListArticles(ctx context.Context, owner int64, opts repository.ListOptions) ([]model.ArticleSummary, int, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE user_id = ?`, owner,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting articles: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, style_template, is_published, view_count, like_count, created_at, updated_at
		 FROM articles
		 WHERE user_id = ?
		 ORDER BY updated_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		owner, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing articles: %w", err)
	}
	defer rows.Close()

	items := make([]model.ArticleSummary, 0, opts.Limit)
	for rows.Next() {
		var s model.ArticleSummary
		if err := rows.Scan(
			&s.ID, &s.Title, &s.StyleTemplate, &s.IsPublished,
			&s.ViewCount, &s.LikeCount, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning article row: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating articles: %w", err)
	}

	return items, total, nil
}

// UpdateArticle overwrites every editable field and bumps updated_at.
func (db *DB) UpdateArticle(ctx context.Context, owner, id int64, in model.ArticleInput) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE articles
		 SET title = ?, content = ?, html_content = ?, style_template = ?,
		     font_size = ?, primary_color = ?, is_published = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		in.Title,
		in.Content,
		in.HTMLContent,
		in.StyleTemplate,
		in.FontSize,
		in.PrimaryColor,
		in.IsPublished,
		db.now(),
		id,
		owner,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating article %d: %w", id, err)
	}
	return checkAffected(res, apperror.NotFound("article", id))
}

func (db *DB) DeleteArticle(ctx context.Context, owner, id int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM articles WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("sqlite: deleting article %d: %w", id, err)
	}
	return checkAffected(res, apperror.NotFound("article", id))
}
