package render

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Options are per-article overrides applied on top of a Style.
type Options struct {
	FontSize     int    // paragraph font size in px; 0 keeps the style's
	PrimaryColor string // accent for title and quote borders; "" keeps the style's
}

var (
	fontSizeRe = regexp.MustCompile(`font-size:\s*(\d+)px`)
	colorRe    = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{3,20})$`)
)

// headingShrink is how many px each heading level below h1 loses.
const headingShrink = 4

// HTML parses text and renders it in one call.
func HTML(text string, style Style, opts Options) string {
	return Render(Parse(text), style, opts)
}

// Render turns blocks into HTML with inline styles. Blocks are separated by
// a newline. All text is HTML-escaped.
func Render(blocks []Block, style Style, opts Options) string {
	titleCSS := withAccent(style.Title, opts.PrimaryColor)
	quoteCSS := withAccent(style.Quote, opts.PrimaryColor)
	paraCSS := style.Paragraph
	if opts.FontSize > 0 {
		paraCSS = appendDecl(paraCSS, "font-size: "+strconv.Itoa(opts.FontSize)+"px;")
	}

	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch blk.Kind {
		case Heading:
			tag := "h" + strconv.Itoa(blk.Level)
			writeElement(&b, tag, headingCSS(titleCSS, blk.Level), blk.Spans, style.Highlight)
		case Quote:
			writeElement(&b, "blockquote", quoteCSS, blk.Spans, style.Highlight)
		default:
			writeElement(&b, "p", paraCSS, blk.Spans, style.Highlight)
		}
	}
	return b.String()
}

func writeElement(b *strings.Builder, tag, css string, spans []Span, highlight string) {
	b.WriteString("<" + tag)
	writeStyleAttr(b, css)
	b.WriteByte('>')
	for _, sp := range spans {
		if sp.Emphasis {
			b.WriteString("<span")
			writeStyleAttr(b, highlight)
			b.WriteByte('>')
			b.WriteString(html.EscapeString(sp.Text))
			b.WriteString("</span>")
			continue
		}
		b.WriteString(html.EscapeString(sp.Text))
	}
	b.WriteString("</" + tag + ">")
}

func writeStyleAttr(b *strings.Builder, css string) {
	if css == "" {
		return
	}
	b.WriteString(` style="`)
	b.WriteString(html.EscapeString(css))
	b.WriteByte('"')
}

// headingCSS shrinks the first font-size declaration for h2 and h3.
func headingCSS(title string, level int) string {
	if level <= 1 {
		return title
	}
	shrink := headingShrink * (level - 1)
	done := false
	return fontSizeRe.ReplaceAllStringFunc(title, func(m string) string {
		if done {
			return m
		}
		done = true
		px, err := strconv.Atoi(fontSizeRe.FindStringSubmatch(m)[1])
		if err != nil || px-shrink <= 0 {
			return m
		}
		return "font-size: " + strconv.Itoa(px-shrink) + "px"
	})
}

// withAccent appends a border-color override when color is a plain hex value
// or color keyword. Anything else is ignored so user input cannot break out
// of the declaration list.
func withAccent(css, color string) string {
	if color == "" || !colorRe.MatchString(color) {
		return css
	}
	return appendDecl(css, "border-color: "+color+";")
}

func appendDecl(css, decl string) string {
	css = strings.TrimSpace(css)
	if css == "" {
		return decl
	}
	if !strings.HasSuffix(css, ";") {
		css += ";"
	}
	return css + " " + decl
}
