package effect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/driftfield/internal/field"
)

var ErrUnknownEffect = errors.New("effect: unknown effect")

// Constructor builds a simulation from options.
type Constructor func(opts field.Options) field.Simulation

type entry struct {
	build        Constructor
	defaultCount int
	description  string
}

type Registry struct {
	effects map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{effects: make(map[string]entry)}

	r.Register("drift", "2D constellation with connection lines", field.DefaultCount,
		func(opts field.Options) field.Simulation { return field.NewField(opts) })
	r.Register("starfield", "pseudo-3D stars flying toward the viewer", field.DefaultStarCount,
		func(opts field.Options) field.Simulation { return field.NewStarfield(opts) })

	return r
}

// Register adds or replaces an effect.
func (r *Registry) Register(name, description string, defaultCount int, build Constructor) {
	r.effects[name] = entry{build: build, defaultCount: defaultCount, description: description}
}

// Get builds the named effect. opts are used as given; see DefaultCount for
// the density each effect ships with.
func (r *Registry) Get(name string, opts field.Options) (field.Simulation, error) {
	e, ok := r.effects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownEffect, name, strings.Join(r.List(), ", "))
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return e.build(opts), nil
}

// Factory returns a constructor bound to name, suitable for frame.New.
func (r *Registry) Factory(name string) (func(field.Options) (field.Simulation, error), error) {
	if _, ok := r.effects[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, name)
	}
	return func(opts field.Options) (field.Simulation, error) {
		return r.Get(name, opts)
	}, nil
}

// DefaultCount is the particle count the effect uses when none is given.
func (r *Registry) DefaultCount(name string) int {
	return r.effects[name].defaultCount
}

func (r *Registry) Describe(name string) string {
	return r.effects[name].description
}

// List returns the effect names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.effects))
	for name := range r.effects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
