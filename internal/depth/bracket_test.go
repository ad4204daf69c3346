package depth

import (
	"reflect"
	"testing"
)

func TestBuildBrackets(t *testing.T) {
	tests := []struct {
		name   string
		drafts []string
		want   []Bracket
	}{
		{
			name:   "four drafts",
			drafts: []string{"a", "b", "c", "d"},
			want:   []Bracket{{A: "a", B: "b"}, {A: "c", B: "d"}},
		},
		{
			name:   "two drafts",
			drafts: []string{"x", "y"},
			want:   []Bracket{{A: "x", B: "y"}},
		},
		{
			name:   "odd count drops the trailing draft",
			drafts: []string{"a", "b", "c"},
			want:   []Bracket{{A: "a", B: "b"}},
		},
		{
			name:   "single draft",
			drafts: []string{"a"},
			want:   nil,
		},
		{
			name:   "empty",
			drafts: nil,
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildBrackets(tt.drafts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildBrackets(%v) = %v, want %v", tt.drafts, got, tt.want)
			}
		})
	}
}

func TestParseWinner(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		wantDiag bool
	}{
		{name: "label A", raw: "<winner>A</winner>", want: "A"},
		{name: "label B", raw: "<winner>B</winner>", want: "B"},
		{name: "case insensitive tag", raw: "<WINNER>a</WINNER>", want: "A"},
		{name: "surrounding prose", raw: "Both are fine.\n<winner> A </winner>\nThanks.", want: "A"},
		{name: "no marker", raw: "no marker here", want: "B", wantDiag: true},
		{name: "unknown label", raw: "<winner>Z</winner>", want: "B", wantDiag: true},
		{name: "empty marker", raw: "<winner></winner>", want: "B", wantDiag: true},
		{name: "empty input", raw: "", want: "B", wantDiag: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := ParseWinner(tt.raw, "A", "B")
			if got != tt.want {
				t.Errorf("ParseWinner(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if (diag != "") != tt.wantDiag {
				t.Errorf("ParseWinner(%q) diag = %q, wantDiag=%v", tt.raw, diag, tt.wantDiag)
			}
		})
	}
}

func TestParseWinnerPositionalLabels(t *testing.T) {
	got, diag := ParseWinner("<winner>draft 3</winner>", "Draft 3", "Draft 4")
	if got != "Draft 3" || diag != "" {
		t.Errorf("ParseWinner = (%q, %q), want (\"Draft 3\", \"\")", got, diag)
	}
}
