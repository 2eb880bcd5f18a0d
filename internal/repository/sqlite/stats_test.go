package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	a1 := createTestArticle(t, db, alice.ID, "one")
	a2 := createTestArticle(t, db, alice.ID, "two")
	createTestArticle(t, db, alice.ID, "three")
	createTestArticle(t, db, bob.ID, "bob's")

	_, err := db.conn.Exec(`UPDATE articles SET is_published = 1, view_count = 10, like_count = 3 WHERE id = ?`, a1.ID)
	require.NoError(t, err)
	_, err = db.conn.Exec(`UPDATE articles SET view_count = 5, like_count = 1 WHERE id = ?`, a2.ID)
	require.NoError(t, err)

	stats, err := db.ArticleStats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalArticles)
	assert.Equal(t, int64(1), stats.PublishedArticles)
	assert.Equal(t, int64(15), stats.TotalViews)
	assert.Equal(t, int64(4), stats.TotalLikes)
}

func TestArticleStats_NoArticlesReportsZero(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	stats, err := db.ArticleStats(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Zero(t, *stats)
}

// The four aggregates run concurrently; sqlmock is told to match them in
// any order.
func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	t.Cleanup(func() { conn.Close() })
	return NewFromConn(conn), mock
}

func TestArticleStats_AllOrNothing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COUNT(*) FROM articles WHERE user_id = ?`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT COUNT(*) FROM articles WHERE user_id = ? AND is_published = 1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT SUM(view_count) FROM articles WHERE user_id = ?`).
		WithArgs(7).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectQuery(`SELECT SUM(like_count) FROM articles WHERE user_id = ?`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(4))

	stats, err := db.ArticleStats(context.Background(), 7)

	assert.Error(t, err)
	assert.Nil(t, stats, "no partial stats on failure")
}

func TestArticleStats_Mocked(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COUNT(*) FROM articles WHERE user_id = ?`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT COUNT(*) FROM articles WHERE user_id = ? AND is_published = 1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT SUM(view_count) FROM articles WHERE user_id = ?`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))
	mock.ExpectQuery(`SELECT SUM(like_count) FROM articles WHERE user_id = ?`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(9))

	stats, err := db.ArticleStats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalArticles)
	assert.Equal(t, int64(2), stats.PublishedArticles)
	assert.Zero(t, stats.TotalViews, "NULL sum reads as zero")
	assert.Equal(t, int64(9), stats.TotalLikes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
