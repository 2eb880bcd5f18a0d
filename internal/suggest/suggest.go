// Package suggest produces writing suggestions for article content.
//
// The rules are fixed heuristics over length and markup, not a language model.
// Generate is pure: no I/O and no state, so the same text always yields the
// same suggestions in the same order.
package suggest

import (
	"strings"
	"unicode/utf8"
)

// Kind identifies which rule produced a suggestion.
type Kind string

const (
	KindLength     Kind = "length"
	KindTitle      Kind = "title"
	KindFormat     Kind = "format"
	KindStructure  Kind = "structure"
	KindEngagement Kind = "engagement"
)

// Priority ranks how much a suggestion matters.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Suggestion is one piece of advice.
type Suggestion struct {
	Type     Kind     `json:"type"`
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// Thresholds are measured in characters (runes), not bytes, so CJK text is
// judged by how long it reads.
const (
	MinLength          = 300
	MaxLength          = 2000
	EmphasisMinLength  = 200
	StructureMinLength = 500
	MinParagraphs      = 3
)

const (
	textTooShort  = "The article is short; consider adding details, examples or data to support your points."
	textTooLong   = "The article is long; consider adding subheadings to improve readability."
	textHeadings  = "Add a heading structure using # and ## to organise the content."
	textEmphasis  = "Use **key content** to emphasise important points."
	textParagraph = "Split the content into more paragraphs; each paragraph should carry one idea."
	textQuestion  = "Add a question to invite readers to think and comment."
)

// Generate evaluates every rule against text and returns the suggestions that
// apply. The result is never nil.
func Generate(text string) []Suggestion {
	n := utf8.RuneCountInString(text)
	out := make([]Suggestion, 0, 5)

	switch {
	case n < MinLength:
		out = append(out, Suggestion{Type: KindLength, Text: textTooShort, Priority: PriorityMedium})
	case n > MaxLength:
		out = append(out, Suggestion{Type: KindLength, Text: textTooLong, Priority: PriorityHigh})
	}

	if !strings.Contains(text, "#") {
		out = append(out, Suggestion{Type: KindTitle, Text: textHeadings, Priority: PriorityHigh})
	}

	if !strings.Contains(text, "**") && n > EmphasisMinLength {
		out = append(out, Suggestion{Type: KindFormat, Text: textEmphasis, Priority: PriorityMedium})
	}

	if Paragraphs(text) < MinParagraphs && n > StructureMinLength {
		out = append(out, Suggestion{Type: KindStructure, Text: textParagraph, Priority: PriorityMedium})
	}

	if !strings.ContainsAny(text, "?？") {
		out = append(out, Suggestion{Type: KindEngagement, Text: textQuestion, Priority: PriorityLow})
	}

	return out
}

// Paragraphs counts the non-blank chunks of text separated by a blank line.
func Paragraphs(text string) int {
	count := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	return count
}
