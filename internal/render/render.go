// Package render substitutes named {placeholder} values into message templates.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Placeholders are rewritten to these control characters before fasttemplate sees the
// template, so literal braces produced by {{ and }} never read as tags.
const (
	startTag = "\x02"
	endTag   = "\x03"
)

var (
	// ErrMissingVariable is returned when a placeholder has no value.
	ErrMissingVariable = errors.New("missing template variable")
	// ErrMalformedTemplate is returned when the template text cannot be parsed.
	ErrMalformedTemplate = errors.New("malformed template")
)

// Render replaces every {name} placeholder in tmpl with vars[name].
// {{ and }} render as literal braces.
// It has no side effects and is safe for concurrent use.
func Render(tmpl string, vars map[string]string) (string, error) {
	_, src, err := compile(tmpl)
	if err != nil {
		return "", err
	}

	t, err := fasttemplate.NewTemplate(src, startTag, endTag)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}

	return t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		value, ok := vars[tag]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrMissingVariable, tag)
		}
		return io.WriteString(w, value)
	})
}

// Placeholders returns the distinct placeholder names of tmpl in order of first appearance.
func Placeholders(tmpl string) ([]string, error) {
	names, _, err := compile(tmpl)
	return names, err
}

// compile scans tmpl once. It returns the placeholder names and the fasttemplate source in
// which escapes are resolved and placeholders are wrapped in startTag/endTag.
func compile(tmpl string) ([]string, string, error) {
	if i := strings.IndexAny(tmpl, startTag+endTag); i >= 0 {
		return nil, "", fmt.Errorf("%w: reserved control character at offset %d", ErrMalformedTemplate, i)
	}

	var (
		names []string
		seen  = map[string]bool{}
		src   strings.Builder
	)
	src.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		next := strings.IndexAny(tmpl[i:], "{}")
		if next < 0 {
			src.WriteString(tmpl[i:])
			break
		}
		src.WriteString(tmpl[i : i+next])
		i += next

		switch {
		case strings.HasPrefix(tmpl[i:], "{{"):
			src.WriteByte('{')
			i += 2
		case strings.HasPrefix(tmpl[i:], "}}"):
			src.WriteByte('}')
			i += 2
		case tmpl[i] == '}':
			return nil, "", fmt.Errorf("%w: single %q at offset %d", ErrMalformedTemplate, "}", i)
		default:
			closing := strings.IndexByte(tmpl[i+1:], '}')
			if closing < 0 {
				return nil, "", fmt.Errorf("%w: unclosed %q at offset %d", ErrMalformedTemplate, "{", i)
			}
			name := tmpl[i+1 : i+1+closing]
			if !isIdentifier(name) {
				return nil, "", fmt.Errorf("%w: invalid placeholder %q at offset %d", ErrMalformedTemplate, name, i)
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			src.WriteString(startTag + name + endTag)
			i += closing + 2
		}
	}
	return names, src.String(), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
