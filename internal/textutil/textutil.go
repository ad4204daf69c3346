// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil provides the text cleanup and length-control helpers
// shared by the generation stages: stable word counting, word/character
// trimming, XML tag stripping, and Markdown flattening.
package textutil

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// wordRe tokenizes words the same way at trim time and at check time, so a
// trimmed text never fails its own limit.
var wordRe = regexp.MustCompile(`[A-Za-z0-9']+`)

// xmlTagRe matches any XML-ish tag, open or close.
var xmlTagRe = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9_]*[^>]*>`)

// wrapperRe matches a whole-output XML wrapper: one opening tag at the very
// start and its matching closing tag at the very end.
var wrapperRe = regexp.MustCompile(`(?s)\A\s*<([a-zA-Z][a-zA-Z0-9_]*)>\s*(.*?)\s*</([a-zA-Z][a-zA-Z0-9_]*)>\s*\z`)

// whitespaceRe collapses any whitespace run.
var whitespaceRe = regexp.MustCompile(`\s+`)

// blankRunRe collapses runs of blank lines left by empty Markdown blocks.
var blankRunRe = regexp.MustCompile(`\n{3,}`)

// ExtractWords returns the word tokens of a text.
func ExtractWords(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// CountWords counts words using the stable tokenizer.
func CountWords(text string) int {
	return len(ExtractWords(text))
}

// TrimToWordLimit trims text to at most limit words, appending an ellipsis
// when anything was cut. Whitespace structure inside the kept prefix is
// flattened to single spaces.
func TrimToWordLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if CountWords(text) <= limit {
		return strings.TrimSpace(text)
	}

	remaining := limit
	var kept []string
	for _, raw := range strings.Fields(text) {
		n := CountWords(raw)
		if n == 0 {
			continue
		}
		if n > remaining {
			break
		}
		kept = append(kept, raw)
		remaining -= n
		if remaining == 0 {
			break
		}
	}
	if len(kept) == 0 {
		return ""
	}
	trimmed := strings.TrimSpace(strings.Join(kept, " "))
	if !strings.HasSuffix(trimmed, "...") {
		trimmed += " ..."
	}
	return trimmed
}

// TrimToCharLimit trims text to at most limit characters, appending an
// ellipsis when anything was cut.
func TrimToCharLimit(text string, limit int) string {
	clean := strings.TrimSpace(text)
	if limit <= 0 {
		return ""
	}
	if len(clean) <= limit {
		return clean
	}
	if limit <= 3 {
		return clean[:limit]
	}
	return strings.TrimRight(clean[:limit-3], " \t\n") + "..."
}

// StripXMLWrapper removes whole-output wrapper tags that models like to add
// around their answer (<outline>...</outline>, <post>...</post>). Nested
// wrappers are peeled one at a time. Mismatched open/close names are left
// alone.
func StripXMLWrapper(text string) string {
	clean := strings.TrimSpace(text)
	for {
		m := wrapperRe.FindStringSubmatch(clean)
		if m == nil || !strings.EqualFold(m[1], m[3]) {
			return clean
		}
		clean = m[2]
	}
}

// StripAllXMLTags removes every XML-ish tag anywhere in the text. Hardened
// fallback for outputs that interleave tags with prose.
func StripAllXMLTags(text string) string {
	return strings.TrimSpace(xmlTagRe.ReplaceAllString(text, ""))
}

// NormalizeLine flattens text into one clean line: wrapper and inline tags
// stripped, asterisks dropped, whitespace collapsed.
func NormalizeLine(text string) string {
	clean := StripXMLWrapper(strings.TrimSpace(text))
	clean = StripAllXMLTags(clean)
	clean = strings.ReplaceAll(clean, "*", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))
}

// MarkdownToPlain flattens Markdown to plain prose: headings and paragraphs
// become text blocks, inline markup is dropped, code blocks are skipped.
func MarkdownToPlain(source string) string {
	src := []byte(source)
	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			switch node := n.(type) {
			case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
				return ast.WalkSkipChildren, nil
			case *ast.Text:
				b.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte(' ')
				}
			}
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			b.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})

	flat := strings.TrimSpace(b.String())
	return blankRunRe.ReplaceAllString(flat, "\n\n")
}
