package render

import "sort"

// Style holds the inline CSS applied to each kind of node.
type Style struct {
	Title     string `json:"titleStyle"`
	Paragraph string `json:"paragraphStyle"`
	Quote     string `json:"quoteStyle"`
	Highlight string `json:"highlightStyle"`
}

// Keys used in a template's style configuration.
const (
	KeyTitle     = "titleStyle"
	KeyParagraph = "paragraphStyle"
	KeyQuote     = "quoteStyle"
	KeyHighlight = "highlightStyle"
)

// Config converts s to the map stored in a template's style configuration.
func (s Style) Config() map[string]string {
	return map[string]string{
		KeyTitle:     s.Title,
		KeyParagraph: s.Paragraph,
		KeyQuote:     s.Quote,
		KeyHighlight: s.Highlight,
	}
}

// FromConfig builds a Style from a template's style configuration. Roles the
// configuration leaves out are taken from fallback.
func FromConfig(cfg map[string]string, fallback Style) Style {
	s := fallback
	if v := cfg[KeyTitle]; v != "" {
		s.Title = v
	}
	if v := cfg[KeyParagraph]; v != "" {
		s.Paragraph = v
	}
	if v := cfg[KeyQuote]; v != "" {
		s.Quote = v
	}
	if v := cfg[KeyHighlight]; v != "" {
		s.Highlight = v
	}
	return s
}

// DefaultStyle is the name of the style used when none is selected.
const DefaultStyle = "modern"

var builtins = map[string]Style{
	"modern": {
		Title:     "font-size: 24px; font-weight: bold; color: #333; margin: 20px 0; text-align: center; border-bottom: 3px solid #007aff; padding-bottom: 10px;",
		Paragraph: "font-size: 16px; line-height: 1.8; color: #333; margin: 15px 0; text-indent: 2em;",
		Quote:     "background: #f8f9fa; border-left: 4px solid #007aff; padding: 15px; margin: 20px 0; font-style: italic; color: #666;",
		Highlight: "background: linear-gradient(120deg, #a8edea 0%, #fed6e3 100%); padding: 2px 8px; border-radius: 4px;",
	},
	"elegant": {
		Title:     `font-size: 22px; font-weight: 600; color: #2c3e50; margin: 25px 0; text-align: center; font-family: "PingFang SC", "Hiragino Sans GB", sans-serif;`,
		Paragraph: "font-size: 15px; line-height: 1.9; color: #34495e; margin: 18px 0; text-indent: 2em;",
		Quote:     "background: #ecf0f1; border: 1px solid #bdc3c7; padding: 20px; margin: 25px 0; border-radius: 8px; color: #7f8c8d;",
		Highlight: "color: #e74c3c; font-weight: 600; background: #ffeaa7; padding: 2px 6px; border-radius: 3px;",
	},
	"tech": {
		Title:     `font-size: 26px; font-weight: bold; color: #00d4aa; margin: 20px 0; text-align: center; text-shadow: 0 0 10px rgba(0, 212, 170, 0.3); font-family: "SF Pro Display", sans-serif;`,
		Paragraph: "font-size: 16px; line-height: 1.7; color: #2d3748; margin: 16px 0; text-indent: 2em;",
		Quote:     "background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; margin: 20px 0; border-radius: 12px; box-shadow: 0 4px 15px rgba(0,0,0,0.1);",
		Highlight: "background: linear-gradient(45deg, #ff6b6b, #feca57); color: white; padding: 3px 8px; border-radius: 20px; font-weight: 600;",
	},
	"warm": {
		Title:     "font-size: 20px; font-weight: 500; color: #d63384; margin: 25px 0; text-align: center; border-top: 2px dotted #f8d7da; border-bottom: 2px dotted #f8d7da; padding: 15px 0;",
		Paragraph: "font-size: 15px; line-height: 2; color: #495057; margin: 20px 0; text-indent: 2em;",
		Quote:     "background: #fff3cd; border: 2px solid #ffeaa7; padding: 18px; margin: 20px 0; border-radius: 15px; color: #856404; position: relative;",
		Highlight: "background: #ff7675; color: white; padding: 2px 10px; border-radius: 15px; font-size: 14px;",
	},
}

var builtinDescriptions = map[string]string{
	"modern":  "Clean modern layout with a blue accent",
	"elegant": "Understated serif-free layout for long reads",
	"tech":    "High-contrast gradients for technical posts",
	"warm":    "Soft pink tones with rounded quotes",
}

// Builtin returns the named built-in style.
func Builtin(name string) (Style, bool) {
	s, ok := builtins[name]
	return s, ok
}

// BuiltinNames lists the built-in styles in alphabetical order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BuiltinDescription returns the one-line description of a built-in style.
func BuiltinDescription(name string) string {
	return builtinDescriptions[name]
}
