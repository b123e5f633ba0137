package script

import (
	"strings"

	regexp "github.com/grafana/regexp"
)

// Component handles one keyword of the expression language. data is the whole
// bracketed expression including its delimiters.
type Component interface {
	Parse(data string) (string, error)
}

var keywordRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z_0-9]*)(?:\s|$)`)

// Dispatcher routes a bracketed expression to the component registered for its
// leading keyword. `["text"]` is passed through verbatim.
type Dispatcher struct {
	components map[string]Component
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{components: make(map[string]Component)}
}

// Register binds keyword to c, replacing any previous binding.
func (d *Dispatcher) Register(keyword string, c Component) {
	d.components[keyword] = c
}

// Parse evaluates a single expression fully wrapped in one [ ] pair.
func (d *Dispatcher) Parse(data string) (string, error) {
	data = strings.TrimSpace(data)
	if !isWrapped(data) {
		return "", errSyntax("expression must be wrapped in [ ]: %q", data)
	}
	inner := data[1 : len(data)-1]
	if strings.HasPrefix(inner, `"`) {
		if len(inner) < 2 || !strings.HasSuffix(inner, `"`) {
			return "", errSyntax("unterminated raw string: %q", data)
		}
		return inner[1 : len(inner)-1], nil
	}
	m := keywordRe.FindStringSubmatch(inner)
	if m == nil {
		return "", errSyntax("missing keyword: %q", data)
	}
	c, ok := d.components[m[1]]
	if !ok {
		return "", errSyntax("unknown keyword %q", m[1])
	}
	return c.Parse(data)
}

// isWrapped reports whether s opens with '[' whose matching ']' is the last byte.
// Brackets inside double-quoted strings are ignored.
func isWrapped(s string) bool {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return false
	}
	end, ok := matchBracket(s, 0)
	return ok && end == len(s)-1
}

// matchBracket returns the index of the ']' closing the '[' at open.
func matchBracket(s string, open int) (int, bool) {
	depth := 0
	inQuote := false
	for i := open; i < len(s); i++ {
		switch c := s[i]; {
		case inQuote && c == '\\':
			i++
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}
