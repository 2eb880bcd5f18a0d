package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ly-yang/wechat-editor/internal/config"
	sqliteRepo "github.com/Ly-yang/wechat-editor/internal/repository/sqlite"
)

// =========================================================================
// HELPERS
// =========================================================================

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:              3001,
		Env:               "test",
		DBPath:            ":memory:",
		UploadDir:         t.TempDir(),
		MaxUploadMB:       1,
		JWTSecret:         "server-test-secret-0123456789",
		BcryptCost:        4,
		AuthRatePerMinute: 6000,
		AuthRateBurst:     1000,
		AllowedOrigins:    []string{"*"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(cfg, db, logger)
	require.NoError(t, err)
	return srv.Router()
}

// call sends a JSON request and returns the recorder.
func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field"`
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

func register(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	rec := call(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password-" + username,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[authBody](t, rec).Token
}

func createArticle(t *testing.T, h http.Handler, token string, body map[string]any) int64 {
	t.Helper()
	rec := call(t, h, http.MethodPost, "/api/articles", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[struct {
		ID int64 `json:"id"`
	}](t, rec).ID
}

// =========================================================================
// AUTH
// =========================================================================

func TestRegisterLoginProfile(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	rec := call(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "Alice@Example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reg := decodeBody[authBody](t, rec)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.NotContains(t, rec.Body.String(), "password", "hash must never be serialized")

	rec = call(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeBody[authBody](t, rec)
	assert.Equal(t, reg.User.ID, login.User.ID)

	rec = call(t, h, http.MethodGet, "/api/user/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody[struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}](t, rec)
	assert.Equal(t, reg.User.ID, profile.ID)
	assert.Equal(t, "alice", profile.Username)
}

func TestRegister_Errors(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	register(t, h, "alice")

	rec := call(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "duplicate_identity", body.Code)
	assert.Equal(t, "email", body.Field)

	rec = call(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeBody[errorBody](t, rec).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "body", decodeBody[errorBody](t, rec).Field)
}

func TestLogin_InvalidCredentialsAreUniform(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	register(t, h, "alice")

	wrongPassword := call(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "nope",
	})
	unknownEmail := call(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "nope",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "invalid_credentials", decodeBody[errorBody](t, wrongPassword).Code)
}

func TestAuthRequired(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	rec := call(t, h, http.MethodGet, "/api/articles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", decodeBody[errorBody](t, rec).Code)

	rec = call(t, h, http.MethodGet, "/api/articles", "not.a.token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "invalid_token", decodeBody[errorBody](t, rec).Code)
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthRatePerMinute = 1
	cfg.AuthRateBurst = 2
	h := newTestServer(t, cfg)

	creds := map[string]string{"email": "a@example.com", "password": "x"}
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodPost, "/api/auth/login", "", creds).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodPost, "/api/auth/login", "", creds).Code)

	rec := call(t, h, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decodeBody[errorBody](t, rec).Code)
}

// loginFrom posts a failing login carrying the given X-Forwarded-For value.
func loginFrom(t *testing.T, h http.Handler, forwardedFor string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"a@example.com","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthRateLimit_ForwardedFor(t *testing.T) {
	t.Run("ignored by default", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.AuthRatePerMinute = 1
		cfg.AuthRateBurst = 2
		h := newTestServer(t, cfg)

		assert.Equal(t, http.StatusUnauthorized, loginFrom(t, h, "10.0.0.1"))
		assert.Equal(t, http.StatusUnauthorized, loginFrom(t, h, "10.0.0.2"))
		assert.Equal(t, http.StatusTooManyRequests, loginFrom(t, h, "10.0.0.3"),
			"a spoofed header must not open a fresh bucket")
	})

	t.Run("honoured behind a trusted proxy", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.AuthRatePerMinute = 1
		cfg.AuthRateBurst = 2
		cfg.TrustProxy = true
		h := newTestServer(t, cfg)

		assert.Equal(t, http.StatusUnauthorized, loginFrom(t, h, "10.0.0.1"))
		assert.Equal(t, http.StatusUnauthorized, loginFrom(t, h, "10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, loginFrom(t, h, "10.0.0.1"))
		assert.Equal(t, http.StatusUnauthorized, loginFrom(t, h, "10.0.0.2"))
	})
}

// =========================================================================
// ARTICLES
// =========================================================================

type articleBody struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	HTMLContent   string `json:"htmlContent"`
	StyleTemplate string `json:"styleTemplate"`
	FontSize      int    `json:"fontSize"`
	PrimaryColor  string `json:"primaryColor"`
	CreatedAt     string `json:"createdAt"`
}

func TestArticleLifecycle(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	token := register(t, h, "alice")

	id := createArticle(t, h, token, map[string]any{
		"title":   "First post",
		"content": "# Hello\n\nworld",
	})

	rec := call(t, h, http.MethodGet, "/api/articles/"+itoa(id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	a := decodeBody[articleBody](t, rec)
	assert.Equal(t, "First post", a.Title)
	assert.Equal(t, "modern", a.StyleTemplate)
	assert.Equal(t, 16, a.FontSize)
	assert.Equal(t, "#007aff", a.PrimaryColor)
	assert.Contains(t, a.HTMLContent, ">Hello</h1>")
	assert.NotEmpty(t, a.CreatedAt)

	rec = call(t, h, http.MethodPut, "/api/articles/"+itoa(id), token, map[string]any{
		"title": "Renamed", "content": "text", "htmlContent": "<p>text</p>", "fontSize": 18,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodGet, "/api/articles/"+itoa(id), token, nil)
	a = decodeBody[articleBody](t, rec)
	assert.Equal(t, "Renamed", a.Title)
	assert.Equal(t, 18, a.FontSize)

	rec = call(t, h, http.MethodDelete, "/api/articles/"+itoa(id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/api/articles/"+itoa(id), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[errorBody](t, rec).Code)
}

func TestArticleIsolation(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	alice := register(t, h, "alice")
	bob := register(t, h, "bob")

	id := createArticle(t, h, alice, map[string]any{"title": "private", "htmlContent": "<p>x</p>"})

	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/api/articles/"+itoa(id), bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodPut, "/api/articles/"+itoa(id), bob, map[string]any{"title": "mine now"}).Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodDelete, "/api/articles/"+itoa(id), bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/api/articles/"+itoa(id)+"/export/markdown", bob, nil).Code)

	rec := call(t, h, http.MethodGet, "/api/articles", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[struct {
		Articles   []articleBody `json:"articles"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}](t, rec)
	assert.Empty(t, page.Articles)
	assert.Equal(t, 0, page.Pagination.Total)
}

func TestArticleList_Pagination(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	token := register(t, h, "alice")

	for i := range 7 {
		createArticle(t, h, token, map[string]any{"title": "a" + itoa(int64(i)), "htmlContent": "x"})
	}

	rec := call(t, h, http.MethodGet, "/api/articles?page=2&limit=3", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[struct {
		Articles   []articleBody `json:"articles"`
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
			Pages int `json:"pages"`
		} `json:"pagination"`
	}](t, rec)
	assert.Len(t, page.Articles, 3)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 3, page.Pagination.Limit)
	assert.Equal(t, 7, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.Pages)
	assert.NotContains(t, rec.Body.String(), "htmlContent", "list carries summaries only")

	rec = call(t, h, http.MethodGet, "/api/articles?page=184467440737095517&limit=100", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"articles":[]`, "a page past the end is empty, never page 1 again")
	assert.Contains(t, rec.Body.String(), `"total":7`)

	rec = call(t, h, http.MethodGet, "/api/articles?page=abc&limit=-4", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"page":1`)
	assert.Contains(t, rec.Body.String(), `"limit":10`)
}

func TestArticle_BadID(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	token := register(t, h, "alice")

	rec := call(t, h, http.MethodGet, "/api/articles/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id", decodeBody[errorBody](t, rec).Field)
}

// =========================================================================
// EXPORT
// =========================================================================

func TestExport(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	token := register(t, h, "alice")
	id := createArticle(t, h, token, map[string]any{
		"title":       "微信 排版",
		"content":     "# raw **markdown**",
		"htmlContent": "<h1>rendered</h1>",
	})
	base := "/api/articles/" + itoa(id) + "/export/"

	rec := call(t, h, http.MethodGet, base+"markdown", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "# raw **markdown**", rec.Body.String())
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "微信 排版.md", params["filename"])

	rec = call(t, h, http.MethodGet, base+"html", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<h1>rendered</h1>")
	assert.Contains(t, rec.Body.String(), "max-width: 677px")

	rec = call(t, h, http.MethodGet, base+"pdf", token, nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, "not_implemented", decodeBody[errorBody](t, rec).Code)

	rec = call(t, h, http.MethodGet, base+"docx", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unsupported_media_type", decodeBody[errorBody](t, rec).Code)
}

// =========================================================================
// UPLOADS AND MATERIALS
// =========================================================================

func pngFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, token, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadAndServe(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	token := register(t, h, "alice")
	data := pngFile(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, token, "cover.png", "image/png", data))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	up := decodeBody[struct {
		ID   int64  `json:"id"`
		URL  string `json:"url"`
		Name string `json:"name"`
	}](t, rec)
	assert.Equal(t, "cover.png", up.Name)
	require.True(t, strings.HasPrefix(up.URL, "/uploads/"), up.URL)

	rec = call(t, h, http.MethodGet, up.URL, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, data, rec.Body.Bytes())

	stored := strings.TrimPrefix(up.URL, "/uploads/")
	rec = call(t, h, http.MethodGet, "/uploads/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "the upload directory must not be listed")
	assert.NotContains(t, rec.Body.String(), stored)

	rec = call(t, h, http.MethodGet, "/api/materials", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	materials := decodeBody[[]struct {
		ID   int64  `json:"id"`
		URL  string `json:"url"`
		Type string `json:"type"`
	}](t, rec)
	require.Len(t, materials, 1)
	assert.Equal(t, up.URL, materials[0].URL)
	assert.Equal(t, "image", materials[0].Type)

	rec = call(t, h, http.MethodGet, "/api/materials?type=video", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_Rejections(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	token := register(t, h, "alice")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, token, "notes.txt", "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unsupported_media_type", decodeBody[errorBody](t, rec).Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, token, "fake.png", "image/png", []byte("definitely not a png")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unsupported_media_type", decodeBody[errorBody](t, rec).Code)

	// MaxUploadMB is 1 in the test config.
	big := append(pngFile(t), make([]byte, 2<<20)...)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, token, "big.png", "image/png", big))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeBody[errorBody](t, rec).Code)

	rec = call(t, h, http.MethodPost, "/api/upload", token, map[string]string{"image": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =========================================================================
// SUGGESTIONS, TEMPLATES, RENDER, STATS
// =========================================================================

func TestSuggestions(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	token := register(t, h, "alice")
	id := createArticle(t, h, token, map[string]any{"title": "t", "htmlContent": "x"})

	rec := call(t, h, http.MethodPost, "/api/ai/suggestions", token, map[string]any{"content": "", "articleId": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[struct {
		Suggestions []struct {
			ID       int64  `json:"id"`
			Type     string `json:"type"`
			Text     string `json:"text"`
			Priority string `json:"priority"`
		} `json:"suggestions"`
	}](t, rec)
	require.Len(t, resp.Suggestions, 3)
	assert.Equal(t, "length", resp.Suggestions[0].Type)
	assert.Equal(t, "medium", resp.Suggestions[0].Priority)

	rec = call(t, h, http.MethodPost, "/api/ai/suggestions/"+itoa(resp.Suggestions[0].ID)+"/apply", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	bob := register(t, h, "bob")
	rec = call(t, h, http.MethodPost, "/api/ai/suggestions", bob, map[string]any{"content": "x", "articleId": id})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/ai/suggestions/"+itoa(resp.Suggestions[1].ID)+"/apply", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplatesAndRender(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	alice := register(t, h, "alice")
	bob := register(t, h, "bob")

	type templateBody struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	rec := call(t, h, http.MethodGet, "/api/templates", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	system := decodeBody[[]templateBody](t, rec)
	assert.Len(t, system, 4)

	rec = call(t, h, http.MethodPost, "/api/templates", alice, map[string]any{
		"name":        "mine",
		"styleConfig": map[string]string{"quoteStyle": "color: purple;"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodGet, "/api/templates", alice, nil)
	assert.Len(t, decodeBody[[]templateBody](t, rec), 5)
	rec = call(t, h, http.MethodGet, "/api/templates", bob, nil)
	assert.Len(t, decodeBody[[]templateBody](t, rec), 4, "private templates are hidden from others")

	rec = call(t, h, http.MethodPost, "/api/render", alice, map[string]any{
		"content": "> quoted", "styleTemplate": "mine",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	html := decodeBody[struct {
		HTML string `json:"html"`
	}](t, rec).HTML
	assert.Contains(t, html, "<blockquote")
	assert.Contains(t, html, "color: purple;")

	rec = call(t, h, http.MethodPost, "/api/templates", alice, map[string]any{"name": "empty"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	h := newTestServer(t, testConfig(t))
	token := register(t, h, "alice")
	createArticle(t, h, token, map[string]any{"title": "draft", "htmlContent": "x"})
	createArticle(t, h, token, map[string]any{"title": "live", "htmlContent": "x", "isPublished": true})

	rec := call(t, h, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalArticles":2,"publishedArticles":1,"totalViews":0,"totalLikes":0}`, rec.Body.String())
}

// =========================================================================
// MISC ROUTES
// =========================================================================

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	rec := call(t, h, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.NotEmpty(t, health["timestamp"])

	rec = call(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wechat_editor_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t, testConfig(t))

	rec := call(t, h, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[errorBody](t, rec).Code)
}

func TestFilesOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o644))

	fs := filesOnly{http.Dir(dir)}

	f, err := fs.Open("/a.png")
	require.NoError(t, err)
	f.Close()

	for _, name := range []string{"/", "/nested"} {
		_, err := fs.Open(name)
		assert.ErrorIs(t, err, os.ErrNotExist, name)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
