package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/FrostGod/EventDash/internal/registry"
	"github.com/FrostGod/EventDash/types"
)

// ErrDuplicateTool is returned when registering a name twice.
var ErrDuplicateTool = errors.New("tool already registered")

// Registry holds tools by name. It is safe for concurrent use.
type Registry struct {
	tools registry.Registry[Tool]
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: registry.New[Tool]()}
	if err := r.Register(tools...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds tools. All duplicates are reported; the other tools are still added.
func (r *Registry) Register(tools ...Tool) error {
	var errs []error
	for _, t := range tools {
		if t == nil {
			continue
		}
		if !r.tools.AddIfAbsent(t.Name(), t) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name()))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) Get(name string) (Tool, bool) {
	return r.tools.Get(name)
}

// List returns the registered tools ordered by name.
func (r *Registry) List() []Tool {
	names := r.tools.Names()
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools.Get(name); ok {
			out = append(out, t)
		}
	}
	return out
}

func (r *Registry) Invoke(ctx context.Context, name, input string) (string, error) {
	t, ok := r.tools.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrUnknownTool, name)
	}
	return t.Invoke(ctx, input)
}
