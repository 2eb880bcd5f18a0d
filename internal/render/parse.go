// Package render turns the editor's lightweight markdown into inline-styled
// HTML that survives being pasted into a WeChat article.
//
// Rendering happens in two steps. Parse builds a list of Blocks from the raw
// text. Render walks the blocks and maps each kind to a CSS declaration list
// taken from a Style. Keeping the two apart means headings and quotes are
// never wrapped in a stray paragraph, and every piece of text is escaped
// exactly once.
//
// Supported syntax, one construct per line:
//
//	# Heading 1
//	## Heading 2
//	### Heading 3
//	> quote
//	plain text with **emphasis**
//
// Blank lines separate blocks. Every other non-blank line becomes a paragraph.
package render

import "strings"

// BlockKind is the type of a block-level node.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	Quote
)

func (k BlockKind) String() string {
	switch k {
	case Heading:
		return "heading"
	case Quote:
		return "quote"
	default:
		return "paragraph"
	}
}

// Span is a run of inline text. Emphasis marks text written as **...**.
type Span struct {
	Text     string
	Emphasis bool
}

// Block is a block-level node. Level is 1-3 for headings and 0 otherwise.
type Block struct {
	Kind  BlockKind
	Level int
	Spans []Span
}

var headingPrefixes = []struct {
	prefix string
	level  int
}{
	// Longest prefix first so "## x" is not read as "# " + "# x".
	{"### ", 3},
	{"## ", 2},
	{"# ", 1},
}

// Parse splits text into blocks.
func Parse(text string) []Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []Block
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, parseLine(line))
	}
	return blocks
}

func parseLine(line string) Block {
	for _, h := range headingPrefixes {
		if rest, ok := strings.CutPrefix(line, h.prefix); ok {
			return Block{Kind: Heading, Level: h.level, Spans: parseInline(rest)}
		}
	}
	if rest, ok := strings.CutPrefix(line, "> "); ok {
		return Block{Kind: Quote, Spans: parseInline(rest)}
	}
	return Block{Kind: Paragraph, Spans: parseInline(line)}
}

// parseInline splits s on "**" pairs. An unmatched trailing marker is kept
// as literal text. Empty spans are dropped.
func parseInline(s string) []Span {
	parts := strings.Split(s, "**")

	// An even number of parts means an odd number of markers: the last one
	// has no partner, so glue the final two parts back together.
	if len(parts)%2 == 0 {
		n := len(parts)
		parts[n-2] = parts[n-2] + "**" + parts[n-1]
		parts = parts[:n-1]
	}

	spans := make([]Span, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		spans = append(spans, Span{Text: p, Emphasis: i%2 == 1})
	}
	return spans
}
