package script

import (
	"strings"
	"sync"

	regexp "github.com/grafana/regexp"

	"buildhook/internal/uvars"
)

// name, optional :project, optional = definition (greedy up to the closing bracket)
var varRe = regexp.MustCompile(`(?s)^\[var\s+([A-Za-z_0-9]+)(?::([^=\]]+))?\s*(?:=\s*(.+))?\]$`)

// UserVariableComponent reads and defines user variables:
//
//	[var name]  [var name:project]  [var name = value]  [var name:project = value]
type UserVariableComponent struct {
	vars      *uvars.Store
	primary   uvars.Evaluator
	secondary uvars.Evaluator
	// PostProcessing enables the secondary evaluator.
	PostProcessing bool

	mu sync.Mutex
	// active holds the variables whose definition is being evaluated. Callers
	// that share a component across goroutines serialize evaluation (Engine does).
	active map[string]bool
}

func NewUserVariableComponent(vars *uvars.Store, primary, secondary uvars.Evaluator) *UserVariableComponent {
	return &UserVariableComponent{vars: vars, primary: primary, secondary: secondary, active: make(map[string]bool)}
}

func (c *UserVariableComponent) Parse(data string) (string, error) {
	m := varRe.FindStringSubmatchIndex(strings.TrimSpace(data))
	if m == nil {
		return "", errSyntax("user variable: %q", data)
	}
	data = strings.TrimSpace(data)
	name := data[m[2]:m[3]]
	project := ""
	if m[4] >= 0 {
		project = strings.TrimSpace(data[m[4]:m[5]])
	}
	if m[6] >= 0 {
		if err := c.set(name, project, data[m[6]:m[7]]); err != nil {
			return "", err
		}
		return "", nil
	}
	return c.get(name, project)
}

func (c *UserVariableComponent) set(name, project, value string) error {
	c.vars.Set(name, project, value)
	return c.evaluate(name, project)
}

func ident(name, project string) string {
	if project != "" {
		return name + ":" + project
	}
	return name
}

func (c *UserVariableComponent) get(name, project string) (string, error) {
	if !c.vars.Exists(name, project) {
		return "", notFoundError{ident: ident(name, project)}
	}
	if c.vars.IsUnevaluated(name, project) {
		if err := c.evaluate(name, project); err != nil {
			return "", err
		}
	}
	v, err := c.vars.Get(name, project)
	if uvars.IsNotFound(err) {
		return "", notFoundError{ident: name}
	}
	return v, err
}

// evaluate runs the primary evaluator on the raw definition, then the
// secondary one on the primary's output when post-processing is on.
func (c *UserVariableComponent) evaluate(name, project string) error {
	id := ident(name, project)
	c.mu.Lock()
	if c.active[id] {
		c.mu.Unlock()
		return errOperand("variable %s refers to itself", id)
	}
	c.active[id] = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.active, id)
		c.mu.Unlock()
	}()
	if c.primary != nil {
		if err := c.vars.Evaluate(name, project, c.primary, true); err != nil {
			return err
		}
	}
	if c.PostProcessing && c.secondary != nil {
		if err := c.vars.Evaluate(name, project, c.secondary, false); err != nil {
			return err
		}
	}
	return nil
}
