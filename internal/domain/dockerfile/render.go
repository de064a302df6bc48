// Where: internal/domain/dockerfile/render.go
// What: Dockerfile body substitution.
// Why: Feed the builder a Dockerfile with the version scope already applied.
package dockerfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/poruru-code/cargo-builder/internal/domain/failure"
	"github.com/poruru-code/cargo-builder/internal/domain/scope"
)

// TemplateSuffix marks Dockerfiles rendered with text/template instead of {VAR} placeholders.
const TemplateSuffix = ".tmpl"

// IsTemplate reports whether name selects the text/template renderer.
func IsTemplate(name string) bool {
	return strings.HasSuffix(name, TemplateSuffix)
}

// Render substitutes the scope into content. name decides the renderer.
func Render(name, content string, vars scope.Scope) (string, error) {
	if !IsTemplate(name) {
		out, err := vars.Format(content)
		if err != nil {
			return "", fmt.Errorf("render %s: %w", name, err)
		}
		return out, nil
	}

	tmpl, err := template.New(filepath.Base(name)).
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(content)
	if err != nil {
		return "", failure.Configuration("parse %s: %v", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars.Map()); err != nil {
		return "", failure.Configuration("render %s: %v", name, err)
	}
	return buf.String(), nil
}
