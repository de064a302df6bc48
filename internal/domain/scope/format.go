// Where: internal/domain/scope/format.go
// What: {NAME} placeholder substitution.
// Why: Manifest paths, Dockerfile names and Dockerfile bodies use brace placeholders.
package scope

import (
	"fmt"
	"strings"

	"github.com/poruru-code/cargo-builder/internal/domain/failure"
)

// MissingVariableError names a placeholder with no assignment in scope.
type MissingVariableError struct {
	Name     string
	Template string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("unresolved placeholder {%s}", e.Name)
}

func (e *MissingVariableError) Unwrap() error { return failure.ErrConfiguration }

// Format substitutes every {NAME} in tmpl. "{{" and "}}" produce literal braces.
func Format(tmpl string, s Scope) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", failure.Configuration("single '{' encountered in %q", tmpl)
			}
			name := tmpl[i+1 : i+1+end]
			value, ok := s.Lookup(name)
			if !ok {
				return "", &MissingVariableError{Name: name, Template: tmpl}
			}
			b.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", failure.Configuration("single '}' encountered in %q", tmpl)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
