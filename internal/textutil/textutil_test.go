package textutil

import (
	"strings"
	"testing"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"two words", 2},
		{"it's one token", 3},
		{"punctuation, doesn't; split!", 3},
		{"line\nbreaks\tand   spaces", 4},
		{"numbers 42 count", 3},
	}
	for _, tt := range tests {
		if got := CountWords(tt.text); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestTrimToWordLimit(t *testing.T) {
	text := "alpha beta gamma delta epsilon"

	if got := TrimToWordLimit(text, 10); got != text {
		t.Errorf("under-limit text was modified: %q", got)
	}
	got := TrimToWordLimit(text, 3)
	if got != "alpha beta gamma ..." {
		t.Errorf("TrimToWordLimit = %q, want %q", got, "alpha beta gamma ...")
	}
	if CountWords(got) > 3 {
		t.Errorf("trimmed text exceeds its own limit: %q", got)
	}
	if got := TrimToWordLimit(text, 0); got != "" {
		t.Errorf("limit 0 returned %q, want empty", got)
	}
}

func TestTrimToCharLimit(t *testing.T) {
	if got := TrimToCharLimit("short", 300); got != "short" {
		t.Errorf("under-limit text was modified: %q", got)
	}
	long := strings.Repeat("x", 50)
	got := TrimToCharLimit(long, 20)
	if len(got) > 20 {
		t.Errorf("trimmed length %d exceeds limit 20", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("trimmed text missing ellipsis: %q", got)
	}
	if got := TrimToCharLimit("abcdef", 2); got != "ab" {
		t.Errorf("tiny limit = %q, want %q", got, "ab")
	}
}

func TestStripXMLWrapper(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple wrapper", "<outline>body text</outline>", "body text"},
		{"nested wrappers", "<answer><post>hello</post></answer>", "hello"},
		{"no wrapper", "plain text", "plain text"},
		{"mismatched tags left alone", "<a>text</b>", "<a>text</b>"},
		{"interior tags untouched", "<post>keep <b>this</b></post>", "keep <b>this</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripXMLWrapper(tt.in); got != tt.want {
				t.Errorf("StripXMLWrapper(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeLine(t *testing.T) {
	in := "<post>A  *bold*\nclaim <i>with</i>\ttags</post>"
	want := "A bold claim with tags"
	if got := NormalizeLine(in); got != want {
		t.Errorf("NormalizeLine = %q, want %q", got, want)
	}
}

func TestMarkdownToPlain(t *testing.T) {
	src := "# Title\n\nFirst paragraph with *emphasis* and [a link](https://example.com).\n\n```\ncode stays out\n```\n\nSecond paragraph.\n"
	got := MarkdownToPlain(src)
	for _, want := range []string{"Title", "First paragraph with emphasis", "a link", "Second paragraph."} {
		if !strings.Contains(got, want) {
			t.Errorf("MarkdownToPlain missing %q in %q", want, got)
		}
	}
	for _, banned := range []string{"#", "*", "](", "code stays out"} {
		if strings.Contains(got, banned) {
			t.Errorf("MarkdownToPlain kept %q in %q", banned, got)
		}
	}
}
