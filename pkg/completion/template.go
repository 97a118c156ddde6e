package completion

import (
	"fmt"
	"regexp"
	"strings"
)

// Template is opaque prompt text with named placeholders. Placeholders
// use handlebars-style delimiters: {{name}} or {{{name}}}. Substitution
// is purely textual; the template engine knows nothing about the model.
type Template string

var placeholderRegex = regexp.MustCompile(`\{\{\{?\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}?\}\}`)

// Render substitutes every placeholder from input. A placeholder with no
// matching input key is an error; unused input keys are ignored.
func (t Template) Render(input map[string]string) (string, error) {
	var missing []string
	out := placeholderRegex.ReplaceAllStringFunc(string(t), func(m string) string {
		name := placeholderRegex.FindStringSubmatch(m)[1]
		val, ok := input[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return val
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("template: no value for placeholder(s) %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Placeholders returns the distinct placeholder names in order of first
// appearance.
func (t Template) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRegex.FindAllStringSubmatch(string(t), -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
