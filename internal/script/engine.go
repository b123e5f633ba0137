package script

import (
	"sync"

	"buildhook/internal/uvars"
)

// Keywords understood by the dispatcher built by NewEngine.
const (
	KeywordVar      = "var"
	KeywordInternal = "hook"
)

// EngineConfig wires the collaborators of an Engine.
type EngineConfig struct {
	Events     EventStore
	Status     StatusReader
	Vars       *uvars.Store
	Properties PropertySource
	// PostProcessing runs the property evaluator after the script evaluator.
	PostProcessing bool
}

// Engine bundles the dispatcher with both evaluators. Eval and Parse are
// serialized so nested variable evaluation sees one chain at a time.
type Engine struct {
	mu sync.Mutex

	Dispatcher *Dispatcher
	Script     *Script
	Properties *Properties
	Vars       *uvars.Store

	postProcessing bool
}

func NewEngine(cfg EngineConfig) *Engine {
	vars := cfg.Vars
	if vars == nil {
		vars = uvars.New()
	}
	d := NewDispatcher()
	s := NewScript(d)
	props := NewProperties(vars, cfg.Properties)
	uv := NewUserVariableComponent(vars, s, props)
	uv.PostProcessing = cfg.PostProcessing
	d.Register(KeywordVar, uv)
	if cfg.Events != nil {
		d.Register(KeywordInternal, NewInternalComponent(cfg.Events, cfg.Status))
	}
	return &Engine{Dispatcher: d, Script: s, Properties: props, Vars: vars, postProcessing: cfg.PostProcessing}
}

// Eval expands containers in text and, with post-processing, build properties.
func (e *Engine) Eval(text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, err := e.Script.Parse(text)
	if err != nil {
		return "", err
	}
	if !e.postProcessing {
		return out, nil
	}
	return e.Properties.Evaluate(out)
}

// Parse evaluates a single bracketed expression.
func (e *Engine) Parse(expr string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Dispatcher.Parse(expr)
}
