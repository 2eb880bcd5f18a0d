// Package export converts an article into a downloadable document.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/model"
)

// Format is a requested export format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// DateLayout is how creation and update dates appear in the HTML meta block.
const DateLayout = "2006/1/2"

// Document is a rendered export ready to be streamed.
type Document struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Export renders a in the given format.
//
// "pdf" is recognised but not produced (ErrNotImplemented); any other unknown
// format is ErrUnsupported.
func Export(a *model.Article, format Format) (*Document, error) {
	switch format {
	case FormatHTML:
		body, err := ToHTML(a)
		if err != nil {
			return nil, err
		}
		return &Document{
			ContentType: "text/html; charset=utf-8",
			Filename:    filename(a.Title, "html"),
			Body:        body,
		}, nil
	case FormatMarkdown:
		return &Document{
			ContentType: "text/markdown; charset=utf-8",
			Filename:    filename(a.Title, "md"),
			Body:        ToMarkdown(a),
		}, nil
	case FormatPDF:
		return nil, apperror.NotImplemented("PDF export is not supported yet")
	default:
		return nil, apperror.Unsupported("format", fmt.Sprintf("unsupported export format %q", format))
	}
}

// ToMarkdown returns the stored content byte for byte.
func ToMarkdown(a *model.Article) []byte {
	return []byte(a.Content)
}

var page = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { max-width: 677px; margin: 0 auto; padding: 20px; font-family: -apple-system, BlinkMacSystemFont, "PingFang SC", "Microsoft YaHei", sans-serif; line-height: 1.6; color: #333; }
img { max-width: 100%; height: auto; }
.article-meta { color: #999; font-size: 14px; margin-bottom: 20px; border-bottom: 1px solid #eee; padding-bottom: 10px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="article-meta">
<p>Created: {{.Created}}</p>
<p>Updated: {{.Updated}}</p>
</div>
<div class="article-content">
{{.Body}}
</div>
</body>
</html>
`))

type pageData struct {
	Title   string
	Created string
	Updated string
	Body    template.HTML
}

// ToHTML wraps the article's rendered HTML in a standalone page.
//
// The stored html_content is inserted as-is: it was produced by the owner's
// own editor session and is what the owner sees in the preview. When no
// rendered HTML exists the raw content is escaped and line breaks kept.
func ToHTML(a *model.Article) ([]byte, error) {
	body := template.HTML(a.HTMLContent)
	if strings.TrimSpace(a.HTMLContent) == "" {
		escaped := template.HTMLEscapeString(a.Content)
		body = template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n"))
	}

	var buf bytes.Buffer
	err := page.Execute(&buf, pageData{
		Title:   a.Title,
		Created: a.CreatedAt.Format(DateLayout),
		Updated: a.UpdatedAt.Format(DateLayout),
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("export: rendering html: %w", err)
	}
	return buf.Bytes(), nil
}

// filename builds "<title>.<ext>", replacing characters that are unsafe in
// file names. An empty title becomes "article".
func filename(title, ext string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if clean == "" {
		clean = "article"
	}
	return clean + "." + ext
}
