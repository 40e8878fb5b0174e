package prompt

import (
	"fmt"
	"strings"

	"papersum/internal/domain"
)

// Build substitutes named {placeholder} tokens in format with the given
// values. A doubled brace ("{{" or "}}") produces a literal brace. A
// placeholder with no matching value, an empty placeholder, or an unbalanced
// brace is a returned error, never a panic: template mistakes must surface as
// a displayed message.
func Build(format string, values map[string]string) (string, error) {
	var b strings.Builder

	for i := 0; i < len(format); i++ {
		c := format[i]

		switch c {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				b.WriteByte('{')
				i++

				continue
			}

			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder at offset %d", i)
			}

			name := format[i+1 : i+end]
			if name == "" {
				return "", fmt.Errorf("empty placeholder at offset %d", i)
			}

			value, ok := values[name]
			if !ok {
				return "", fmt.Errorf("unknown placeholder %q", name)
			}

			b.WriteString(value)
			i += end
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				b.WriteByte('}')
				i++

				continue
			}

			return "", fmt.Errorf("unmatched '}' at offset %d", i)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// ForSummary renders the user prompt for one summary request. The length knob
// is always formatted as "<n> sentences" before substitution.
func ForSummary(format string, req domain.SummaryRequest) (string, error) {
	return Build(format, map[string]string{
		"audience": string(req.Audience),
		"length":   fmt.Sprintf("%d sentences", req.Length),
		"text":     req.Text,
	})
}
