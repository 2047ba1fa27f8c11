package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"json": toJSON,
	"add":  func(a, b int) int { return a + b },
	"or_default": func(def, v string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	},
}

// toJSON renders v as 2-space indented JSON. Map keys come out sorted, so
// the same value always renders the same way.
func toJSON(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("template: json: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Parse compiles a named template with [Funcs] and strict missing-key handling.
func Parse(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(Funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("template: parse: %w", err)
	}
	return t, nil
}

// Execute runs a compiled template against data.
func Execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}
	return buf.String(), nil
}

// Render resolves template expressions in the given string.
// Returns the input unchanged if it contains no template delimiters.
func Render(tmpl string, data any) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := Parse("", tmpl)
	if err != nil {
		return "", err
	}
	return Execute(t, data)
}
