package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Ly-yang/wechat-editor/internal/model"
)

// ArticleStats runs four independent aggregate queries concurrently. If any
// of them fails the whole call fails; partial stats are never returned.
func (db *DB) ArticleStats(ctx context.Context, owner int64) (*model.Stats, error) {
	var (
		stats            model.Stats
		views, likes     sql.NullInt64
		total, published int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return db.conn.QueryRowContext(gctx,
			`SELECT COUNT(*) FROM articles WHERE user_id = ?`, owner).Scan(&total)
	})
	g.Go(func() error {
		return db.conn.QueryRowContext(gctx,
			`SELECT COUNT(*) FROM articles WHERE user_id = ? AND is_published = 1`, owner).Scan(&published)
	})
	g.Go(func() error {
		return db.conn.QueryRowContext(gctx,
			`SELECT SUM(view_count) FROM articles WHERE user_id = ?`, owner).Scan(&views)
	})
	g.Go(func() error {
		return db.conn.QueryRowContext(gctx,
			`SELECT SUM(like_count) FROM articles WHERE user_id = ?`, owner).Scan(&likes)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sqlite: computing article stats: %w", err)
	}

	stats.TotalArticles = total
	stats.PublishedArticles = published
	stats.TotalViews = views.Int64
	stats.TotalLikes = likes.Int64
	return &stats, nil
}
