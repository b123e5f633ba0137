package script

import (
	"strings"

	regexp "github.com/grafana/regexp"

	"buildhook/internal/uvars"
)

// PropertySource supplies build properties such as Configuration or SolutionDir.
type PropertySource interface {
	Property(name, project string) (string, bool)
}

var propertyRe = regexp.MustCompile(`\$\(([A-Za-z_][A-Za-z_0-9.]*)(?::([^)]+))?\)`)

const escapedProperty = "\x00property\x00"

// Properties expands $(name) and $(name:project). User variables win over
// build properties; unknown names expand to an empty string. $$( is a literal $(.
type Properties struct {
	vars   *uvars.Store
	source PropertySource
}

func NewProperties(vars *uvars.Store, source PropertySource) *Properties {
	return &Properties{vars: vars, source: source}
}

// Evaluate implements uvars.Evaluator.
func (p *Properties) Evaluate(data string) (string, error) {
	data = strings.ReplaceAll(data, "$$(", escapedProperty)
	out := propertyRe.ReplaceAllStringFunc(data, func(m string) string {
		sub := propertyRe.FindStringSubmatch(m)
		name, project := sub[1], strings.TrimSpace(sub[2])
		return p.lookup(name, project)
	})
	return strings.ReplaceAll(out, escapedProperty, "$("), nil
}

func (p *Properties) lookup(name, project string) string {
	if p.vars != nil {
		if v, err := p.vars.Get(name, project); err == nil {
			return v
		}
	}
	if p.source != nil {
		if v, ok := p.source.Property(name, project); ok {
			return v
		}
	}
	return ""
}
