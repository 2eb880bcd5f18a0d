package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Ly-yang/wechat-editor/internal/model"
)

// newTestDB opens a fresh migrated in-memory database per test. Its clock
// advances one second per call so orderings by timestamp are deterministic.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$04$not-a-real-hash",
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return u
}

func createTestArticle(t *testing.T, db *DB, owner int64, title string) *model.Article {
	t.Helper()
	a := &model.Article{
		UserID:        owner,
		Title:         title,
		Content:       fmt.Sprintf("# %s\n\nbody", title),
		StyleTemplate: model.DefaultStyleTemplate,
		FontSize:      model.DefaultFontSize,
		PrimaryColor:  model.DefaultPrimaryColor,
	}
	if err := db.CreateArticle(context.Background(), a); err != nil {
		t.Fatalf("failed to create test article %q: %v", title, err)
	}
	return a
}
