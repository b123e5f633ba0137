package script

import (
	"strings"
)

const escapedContainer = "\x00container\x00"

// Script expands every #[ ... ] container found in free text through the
// dispatcher. ##[ is a literal #[.
type Script struct {
	d *Dispatcher
}

func NewScript(d *Dispatcher) *Script { return &Script{d: d} }

// Evaluate implements uvars.Evaluator.
func (s *Script) Evaluate(data string) (string, error) { return s.Parse(data) }

// Parse returns data with each container replaced by its result.
func (s *Script) Parse(data string) (string, error) {
	data = strings.ReplaceAll(data, "##[", escapedContainer)
	var b strings.Builder
	for {
		i := strings.Index(data, "#[")
		if i < 0 {
			b.WriteString(data)
			break
		}
		b.WriteString(data[:i])
		end, ok := matchBracket(data, i+1)
		if !ok {
			return "", errSyntax("unclosed container at %q", data[i:])
		}
		out, err := s.d.Parse(data[i+1 : end+1])
		if err != nil {
			return "", err
		}
		b.WriteString(out)
		data = data[end+1:]
	}
	return strings.ReplaceAll(b.String(), escapedContainer, "#["), nil
}
