// Package template substitutes {{name}} placeholders in text. It is a
// deliberately small alternative to text/template for config snippets
// and message bodies where logic-less substitution is enough.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrMismatchedBraces is returned when text contains {{ or }} that do
// not form a well-formed placeholder.
var ErrMismatchedBraces = errors.New("template: mismatched braces")

// tokenRe matches a {{name}} placeholder, with optional spaces inside
// the braces.
var tokenRe = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Option configures Replace.
type Option func(*config)

type config struct {
	allowUnresolved bool
	errorOnUnused   bool
}

// AllowUnresolved leaves placeholders with no matching variable in the
// output instead of returning an error.
func AllowUnresolved() Option {
	return func(c *config) {
		c.allowUnresolved = true
	}
}

// ErrorOnUnused returns an error when vars contains a name the
// template never references.
func ErrorOnUnused() Option {
	return func(c *config) {
		c.errorOnUnused = true
	}
}

// Replace substitutes every {{name}} placeholder in text with the
// corresponding value from vars, rendered with %v. By default every
// placeholder must resolve; see AllowUnresolved and ErrorOnUnused.
func Replace(text string, vars map[string]any, opts ...Option) (string, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	// Braces outside well-formed placeholders are an error regardless
	// of options, and values are never rescanned.
	stripped := tokenRe.ReplaceAllString(text, "")
	if strings.Contains(stripped, "{{") || strings.Contains(stripped, "}}") {
		return "", ErrMismatchedBraces
	}

	referenced := make(map[string]bool)
	var unresolved []string
	for _, m := range tokenRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if referenced[name] {
			continue
		}
		referenced[name] = true
		if _, ok := vars[name]; !ok {
			unresolved = append(unresolved, name)
		}
	}

	if len(unresolved) > 0 && !cfg.allowUnresolved {
		return "", fmt.Errorf("template variables unresolved: %s", strings.Join(unresolved, ", "))
	}

	if cfg.errorOnUnused {
		var unused []string
		for name := range vars {
			if !referenced[name] {
				unused = append(unused, name)
			}
		}
		if len(unused) > 0 {
			sort.Strings(unused)
			return "", fmt.Errorf("vars not referenced by template: %s", strings.Join(unused, ", "))
		}
	}

	result := tokenRe.ReplaceAllStringFunc(text, func(token string) string {
		name := tokenRe.FindStringSubmatch(token)[1]
		value, ok := vars[name]
		if !ok {
			return token
		}
		return fmt.Sprintf("%v", value)
	})
	return result, nil
}
