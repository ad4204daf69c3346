// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the embedded prompt templates used by the
// generation stages. Templates are parsed once at startup; a bad template is
// a programming error and fails loudly.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Render executes one named template with the given data.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderWithTarget renders a template and appends a closing target reminder,
// so the model sees the length constraint both near the top of the prompt and
// as its final line.
func RenderWithTarget(name string, data any, target int, unit, documentName string) (string, error) {
	rendered, err := Render(name, data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\nTarget %d %s for this %s.", trimTrailing(rendered), target, unit, documentName), nil
}

func trimTrailing(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	return s
}
