package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ly-yang/wechat-editor/internal/model"
	"github.com/Ly-yang/wechat-editor/internal/render"
)

func TestResolveStyle_BuiltinWhenNoTemplate(t *testing.T) {
	svc := NewRenderService(newFakeTemplateRepo(), discardLogger())

	got, err := svc.ResolveStyle(context.Background(), 1, "tech")
	require.NoError(t, err)

	want, _ := render.Builtin("tech")
	assert.Equal(t, want, got)
}

func TestResolveStyle_UnknownFallsBackToDefault(t *testing.T) {
	svc := NewRenderService(newFakeTemplateRepo(), discardLogger())

	got, err := svc.ResolveStyle(context.Background(), 1, "does-not-exist")
	require.NoError(t, err)

	want, _ := render.Builtin(render.DefaultStyle)
	assert.Equal(t, want, got)
}

func TestResolveStyle_OwnTemplateWinsAndCountsUse(t *testing.T) {
	repo := newFakeTemplateRepo()
	ctx := context.Background()

	owner := int64(1)
	other := int64(2)
	require.NoError(t, repo.CreateTemplate(ctx, &model.Template{
		UserID: &other, Name: "mine", IsPublic: true,
		StyleConfig: map[string]string{render.KeyQuote: "color: blue;"},
	}))
	require.NoError(t, repo.CreateTemplate(ctx, &model.Template{
		UserID: &owner, Name: "mine",
		StyleConfig: map[string]string{render.KeyQuote: "color: red;"},
	}))

	svc := NewRenderService(repo, discardLogger())
	got, err := svc.ResolveStyle(ctx, owner, "mine")
	require.NoError(t, err)

	modern, _ := render.Builtin(render.DefaultStyle)
	assert.Equal(t, "color: red;", got.Quote)
	assert.Equal(t, modern.Title, got.Title, "roles missing from the template come from the default style")
	assert.Equal(t, int64(1), repo.templates[1].UseCount)
	assert.Equal(t, int64(0), repo.templates[0].UseCount)
}

func TestResolveStyle_UseCountFailureIsIgnored(t *testing.T) {
	repo := newFakeTemplateRepo()
	repo.incrementErr = errors.New("database is locked")
	require.NoError(t, repo.CreateTemplate(context.Background(), &model.Template{
		Name: "shared", IsPublic: true,
		StyleConfig: map[string]string{render.KeyTitle: "color: green;"},
	}))

	svc := NewRenderService(repo, discardLogger())
	got, err := svc.ResolveStyle(context.Background(), 1, "shared")
	require.NoError(t, err)
	assert.Equal(t, "color: green;", got.Title)
}

func TestRender_AppliesOptions(t *testing.T) {
	svc := NewRenderService(newFakeTemplateRepo(), discardLogger())

	html, err := svc.Render(context.Background(), 1, RenderRequest{
		Content:  "plain <b>text</b>",
		FontSize: 18,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "font-size: 18px;")
	assert.Contains(t, html, "plain &lt;b&gt;text&lt;/b&gt;")
}
