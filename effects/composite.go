package effects

import (
	"context"
	"errors"
	"fmt"
	"slices"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

var (
	ErrDuplicateTag = errors.New("tag claimed by more than one interpreter")
	ErrMissingTag   = errors.New("required tag has no interpreter")
)

// Registry collects interpreters before they are frozen into a Composite.
// Registration errors are reported by Build.
type Registry struct {
	routes   map[effectmodel.Tag]effectmodel.Interpreter
	required []effectmodel.Tag
	errs     []error
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[effectmodel.Tag]effectmodel.Interpreter)}
}

// Register routes every tag an interpreter claims to it.
func (r *Registry) Register(interps ...effectmodel.Interpreter) *Registry {
	for _, in := range interps {
		for _, tag := range in.Tags() {
			if prev, ok := r.routes[tag]; ok {
				r.errs = append(r.errs, fmt.Errorf("%w: %s (%T and %T)", ErrDuplicateTag, tag, prev, in))
				continue
			}
			r.routes[tag] = in
		}
	}
	return r
}

// Require makes Build fail unless every tag is routed.
func (r *Registry) Require(tags ...effectmodel.Tag) *Registry {
	r.required = append(r.required, tags...)
	return r
}

// RequireAll requires every catalog tag.
func (r *Registry) RequireAll() *Registry {
	return r.Require(effectmodel.AllTags()...)
}

// Build freezes the registry. The Composite does not observe later
// registrations.
func (r *Registry) Build() (*Composite, error) {
	errs := slices.Clone(r.errs)
	for _, tag := range r.required {
		if _, ok := r.routes[tag]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingTag, tag))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	routes := make(map[effectmodel.Tag]effectmodel.Interpreter, len(r.routes))
	for tag, in := range r.routes {
		routes[tag] = in
	}
	return &Composite{routes: routes}, nil
}

// MustBuild is the panic-on-failure variant of Build.
func (r *Registry) MustBuild() *Composite {
	c, err := r.Build()
	if err != nil {
		panic(err)
	}
	return c
}

var _ effectmodel.Interpreter = (*Composite)(nil)

// Composite routes each description to the interpreter owning its tag.
// It is immutable and safe for concurrent use.
type Composite struct {
	routes map[effectmodel.Tag]effectmodel.Interpreter
}

// Execute delegates exactly once and returns the interpreter's outcome
// unchanged. A description nobody owns is an Unroutable failure.
func (c *Composite) Execute(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
	if d == nil {
		return effectmodel.Failed(effectmodel.NewEffectError(
			effectmodel.KindUnroutable, "", "nil description", nil))
	}
	in, ok := c.routes[d.Tag()]
	if !ok {
		return effectmodel.Failed(effectmodel.NewEffectError(
			effectmodel.KindUnroutable, d.Tag(), fmt.Sprintf("no interpreter for %T", d), nil))
	}
	return in.Execute(ctx, d)
}

// Tags lists routed tags, sorted.
func (c *Composite) Tags() []effectmodel.Tag {
	tags := make([]effectmodel.Tag, 0, len(c.routes))
	for tag := range c.routes {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Routes reports whether tag has an interpreter.
func (c *Composite) Routes(tag effectmodel.Tag) bool {
	_, ok := c.routes[tag]
	return ok
}
