// Package fitness holds caller-side objective functions. Chromosomes never
// evaluate themselves; a driver decodes them and hands the parameters to an
// Evaluator.
package fitness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrEvaluatorExists   = errors.New("evaluator already registered")
	ErrEvaluatorNotFound = errors.New("evaluator not found")
)

// Evaluator scores a decoded parameter vector. Larger is better.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, params []float64) (float64, error)
}

// Func adapts a plain function into an Evaluator.
type Func struct {
	Label string
	Fn    func(params []float64) float64
}

func (f Func) Name() string {
	return f.Label
}

func (f Func) Evaluate(ctx context.Context, params []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if f.Fn == nil {
		return 0, fmt.Errorf("evaluator %s has no function", f.Label)
	}
	return f.Fn(params), nil
}

var registry = struct {
	mu sync.RWMutex
	m  map[string]Evaluator
}{
	m: make(map[string]Evaluator),
}

// Register adds an evaluator under its name.
func Register(e Evaluator) error {
	if e == nil {
		return errors.New("evaluator is required")
	}
	if e.Name() == "" {
		return errors.New("evaluator name is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[e.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrEvaluatorExists, e.Name())
	}
	registry.m[e.Name()] = e
	return nil
}

// Resolve returns the evaluator registered under name.
func Resolve(name string) (Evaluator, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	e, ok := registry.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEvaluatorNotFound, name)
	}
	return e, nil
}

// Names lists registered evaluators in sorted order.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
