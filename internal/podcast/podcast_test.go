// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package podcast

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/pkg/types"
)

func TestLabels(t *testing.T) {
	labels, err := Labels(3)
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	want := []string{"HOST1", "HOST2", "HOST3"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
	if _, err := Labels(0); err == nil {
		t.Error("Labels(0) should fail")
	}
	if _, err := Labels(MaxSpeakers + 1); err == nil {
		t.Error("Labels over the roster cap should fail")
	}
}

func TestSpeakerFormat(t *testing.T) {
	labels, _ := Labels(2)
	want := "HOST1: spoken text\nHOST2: spoken text"
	if got := SpeakerFormat(labels); got != want {
		t.Errorf("SpeakerFormat = %q", got)
	}
}

func TestParseScriptWellFormed(t *testing.T) {
	labels, _ := Labels(2)
	script := "HOST1: Welcome to the show.\n\nHOST2: Thanks, glad to be here.\nHOST1: Let's get into it.\n"
	lines := ParseScript(script, labels)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[1].Speaker != "HOST2" || lines[1].Text != "Thanks, glad to be here." {
		t.Errorf("line 1 = %+v", lines[1])
	}
}

func TestParseScriptSalvagesNarrative(t *testing.T) {
	labels, _ := Labels(2)
	script := "This week was busy. The parser got faster! Nothing broke."
	lines := ParseScript(script, labels)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3 sentences", len(lines))
	}
	// sentences alternate across the roster
	if lines[0].Speaker != "HOST1" || lines[1].Speaker != "HOST2" || lines[2].Speaker != "HOST1" {
		t.Errorf("speakers = %v %v %v", lines[0].Speaker, lines[1].Speaker, lines[2].Speaker)
	}
}

func TestParseScriptUnknownSpeakerGoesToNarrative(t *testing.T) {
	labels, _ := Labels(2)
	script := "HOST1: A real line here.\nNARRATOR: An uninvited voice speaks."
	lines := ParseScript(script, labels)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0].Speaker != "HOST1" {
		t.Errorf("line 0 = %+v", lines[0])
	}
	// salvage restarts the roster rotation at HOST1
	if lines[1].Speaker != "HOST1" || !strings.Contains(lines[1].Text, "uninvited voice") {
		t.Errorf("line 1 = %+v", lines[1])
	}
}

func TestEnsureSpeakers(t *testing.T) {
	labels, _ := Labels(3)
	lines := []Line{
		{Speaker: "HOST1", Text: "Only one host spoke."},
		{Speaker: "HOST1", Text: "  "},
	}
	out := EnsureSpeakers(lines, labels)
	used := map[string]bool{}
	for _, line := range out {
		used[line.Speaker] = true
		if strings.TrimSpace(line.Text) == "" {
			t.Errorf("kept blank line for %s", line.Speaker)
		}
	}
	for _, label := range labels {
		if !used[label] {
			t.Errorf("%s never speaks", label)
		}
	}
}

func TestEnsureSpeakersAllBlank(t *testing.T) {
	labels, _ := Labels(2)
	out := EnsureSpeakers(nil, labels)
	if len(out) != 2 {
		t.Fatalf("lines = %d, want one stock line per speaker", len(out))
	}
}

func TestTrimToWordLimit(t *testing.T) {
	lines := []Line{
		{Speaker: "HOST1", Text: "one two three four five"},
		{Speaker: "HOST2", Text: "six seven eight nine ten"},
	}
	trimmed := TrimToWordLimit(lines, 7)
	if len(trimmed) != 2 {
		t.Fatalf("trimmed = %+v", trimmed)
	}
	if trimmed[1].Text != "six seven ..." {
		t.Errorf("crossing line = %q", trimmed[1].Text)
	}
	if CountWords(trimmed) > 7+1 { // ellipsis adds no countable word
		t.Errorf("words = %d", CountWords(trimmed))
	}
	if got := TrimToWordLimit(lines, 0); got != nil {
		t.Errorf("zero limit = %+v", got)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	labels, _ := Labels(2)
	lines := []Line{
		{Speaker: "HOST1", Text: "First turn."},
		{Speaker: "HOST2", Text: "Second turn."},
	}
	rendered := Render(lines)
	if rendered != "HOST1: First turn.\nHOST2: Second turn.\n" {
		t.Errorf("rendered = %q", rendered)
	}
	back := ParseScript(rendered, labels)
	if len(back) != 2 || back[0] != lines[0] || back[1] != lines[1] {
		t.Errorf("round trip = %+v", back)
	}
}

type scriptedClient struct {
	reply string
	err   error
	calls int
}

func (c *scriptedClient) Generate(context.Context, llm.Request) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func testConfig(dir string) types.Config {
	cfg := types.Config{}
	cfg.ApplyDefaults()
	cfg.Generate.Depth = 1
	cfg.Generate.CacheDir = dir
	return cfg
}

const blogText = "# A Week of Parsers\n\nRewrote the tokenizer. It got faster.\n"

func TestRunHappyPath(t *testing.T) {
	client := &scriptedClient{reply: "HOST1: Welcome back.\nHOST2: Parsers got faster this week.\nHOST1: See you tomorrow."}
	g := NewGenerator(client, testConfig(t.TempDir()), func(string, ...any) {})

	result, err := g.Run(context.Background(), blogText)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Fallback {
		t.Error("unexpected fallback")
	}
	if len(result.Lines) != 3 {
		t.Errorf("lines = %d", len(result.Lines))
	}
	if !strings.HasPrefix(result.Script, "HOST1: Welcome back.") {
		t.Errorf("script = %q", result.Script)
	}
}

func TestRunFallsBackOnError(t *testing.T) {
	client := &scriptedClient{err: errors.New("backend down")}
	g := NewGenerator(client, testConfig(t.TempDir()), func(string, ...any) {})

	result, err := g.Run(context.Background(), blogText)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Fallback {
		t.Fatal("expected fallback script")
	}
	if !strings.Contains(result.Script, "A Week of Parsers") {
		t.Errorf("fallback script missing title: %q", result.Script)
	}
	// both configured speakers appear
	if !strings.Contains(result.Script, "HOST2:") {
		t.Errorf("fallback script missing HOST2: %q", result.Script)
	}
}

func TestRunTrimsToWordLimit(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Podcast.WordLimit = 5
	client := &scriptedClient{reply: "HOST1: one two three four.\nHOST2: five six seven eight nine ten."}
	g := NewGenerator(client, cfg, func(string, ...any) {})

	result, err := g.Run(context.Background(), blogText)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Words > 5 {
		t.Errorf("words = %d, want <= 5", result.Words)
	}
}

func TestRunEmptyBlog(t *testing.T) {
	g := NewGenerator(&scriptedClient{}, testConfig(t.TempDir()), func(string, ...any) {})
	if _, err := g.Run(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty blog text")
	}
}
