package container

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the DI unit: a table of recipes keyed by name, a cache of
// shared instances and an optional parent it falls back to.
//
// It supports:
//   - Assign / AssignValue / AssignClass / AssignClosure / Share
//   - Merge from raw definitions or another container
//   - Get / Has with parent delegation
//   - Child and injector blocks (isolated or parent-linked sub-containers)
//   - Contextual binding (when A needs B, give it C)
//
// A Container is not safe for concurrent use.
type Container struct {
	// key → recipe
	assignments map[string]Recipe

	// key → shared instance
	shared map[string]any

	// in-flight resolution path, swapped while another container drives it
	stack *stack

	parent *Container

	// key → child injector created by When(...).Give
	contextual map[string]*Container

	registry *Registry
	log      *zap.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithRegistry sets the class registry used to build Class recipes.
func WithRegistry(r *Registry) Option {
	return func(c *Container) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithLogger sets the logger that traces resolution at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		assignments: make(map[string]Recipe),
		shared:      make(map[string]any),
		stack:       &stack{},
		contextual:  make(map[string]*Container),
		registry:    DefaultRegistry,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create builds a container and merges defs into it.
//
//	c, err := container.Create(container.Definitions{
//	    "mailer": "app.Mailer",
//	    "db":     map[string]any{"class": "app.Database", "shared": true},
//	})
func Create(defs Definitions, opts ...Option) (*Container, error) {
	c := New(opts...)
	if err := c.Merge(defs, false); err != nil {
		return nil, err
	}
	return c, nil
}

// Child creates a container that shares the registry and logger of c and
// falls back to c for keys it does not define.
func (c *Container) Child() *Container {
	child := c.derive()
	child.parent = c
	return child
}

// derive creates an unlinked container with the same registry and logger.
func (c *Container) derive() *Container {
	return New(WithRegistry(c.registry), WithLogger(c.log))
}

// ── Registration ──────────────────────────────────────────────────────────────

// Assign binds key to r, replacing any previous recipe and dropping a cached
// shared instance so it is rebuilt from the new recipe.
func (c *Container) Assign(key string, r Recipe) *Container {
	c.assignments[key] = r
	delete(c.shared, key)
	return c
}

// AssignValue binds key to a literal.
//
//	c.AssignValue("dsn", "postgres://localhost/app")
func (c *Container) AssignValue(key string, v any) *Container {
	return c.Assign(key, Value{Value: v})
}

// AssignClass binds key to a registered class. deps, config and injector may
// be nil.
//
//	c.AssignClass("repo", "app.UserRepository", container.Keys("db"), nil, nil)
func (c *Container) AssignClass(key, class string, deps Dependencies, config Config, injector *Container) *Container {
	return c.Assign(key, &Class{
		Name: class,
		Blueprint: Blueprint{
			Config:       orEmpty(config),
			Dependencies: deps,
			Injector:     injector,
		},
	})
}

// AssignClosure binds key to a closure. deps, config and injector may be nil.
//
//	c.AssignClosure("clock", func(_ container.Config, _ container.Dependencies, _ *container.Container) (any, error) {
//	    return time.Now, nil
//	}, container.List{}, nil, nil)
func (c *Container) AssignClosure(key string, fn Closure, deps Dependencies, config Config, injector *Container) *Container {
	return c.Assign(key, &Factory{
		Closure: fn,
		Blueprint: Blueprint{
			Config:       orEmpty(config),
			Dependencies: deps,
			Injector:     injector,
		},
	})
}

// Share marks the recipe of key as shared.
func (c *Container) Share(key string) error {
	r, ok := c.assignments[key]
	if !ok {
		return invalid(key, "cannot share %s: no recipe assigned", key)
	}
	if b, ok := r.(buildable); ok {
		b.blueprint().Shared = true
	}
	return nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves key. Literals are returned as-is, shared instances from the
// cache, and everything else is built and injected. Keys missing here are
// resolved by the parent.
func (c *Container) Get(key string) (any, error) {
	r, ok := c.assignments[key]
	if !ok {
		if c.parent != nil && c.parent != c {
			c.log.Debug("Delegating to parent", zap.String("key", key))
			restore := c.parent.borrow(c)
			defer restore()
			return c.parent.Get(key)
		}
		return nil, &InjectableNotFoundError{Key: key}
	}

	if v, ok := valueOf(r); ok {
		return v, nil
	}

	if instance, ok := c.shared[key]; ok {
		return instance, nil
	}

	b, ok := r.(buildable)
	if !ok {
		return nil, invalid(r, "unsupported recipe %T for %s", r, key)
	}

	in := b.blueprint().Injector
	if in == nil {
		in = c
	}

	if c.stack.cycle(c, key) {
		return nil, &CircularDependencyError{Path: c.stack.snapshot(), Type: b.target()}
	}

	return c.build(key, b, in)
}

// build constructs the instance for key, injects its dependencies through in
// and runs the post-init hook. The stack entry is pushed before construction
// so closures resolving their own key are caught, and it stays until
// injection is over so deeper cycles are caught too.
func (c *Container) build(key string, r buildable, in *Container) (instance any, err error) {
	bp := r.blueprint()

	c.stack.push(StackEntry{Type: r.target(), Key: key, owner: c})
	defer func() {
		if _, perr := c.stack.pop(); perr != nil && err == nil {
			instance, err = nil, perr
		}
	}()

	restore := in.borrow(c)
	defer restore()

	c.log.Debug("Resolving injectable",
		zap.String("key", key),
		zap.String("target", r.target()),
		zap.Int("depth", c.stack.depth()),
	)

	instance, err = c.construct(key, r, in)
	if err != nil {
		return nil, err
	}
	c.stack.built(typeName(instance), bp.Shared)

	// Cached before injection and kept on failure: other shared instances
	// may already hold it.
	if bp.Shared {
		c.shared[key] = instance
	}

	if err = in.inject(instance, bp.Dependencies); err != nil {
		return nil, err
	}

	if bp.RunAfterInit != "" {
		if err = runAfterInit(instance, bp.RunAfterInit); err != nil {
			return nil, err
		}
	}

	return instance, nil
}

func (c *Container) construct(key string, r buildable, in *Container) (any, error) {
	config := orEmpty(r.blueprint().Config)

	switch r := r.(type) {
	case *Class:
		if r.Name == "" {
			return nil, invalid(r, "recipe for %s has neither class nor closure", key)
		}
		ctor, ok := c.registry.constructor(r.Name)
		if !ok {
			return nil, invalid(r, "class %s for %s is not registered", r.Name, key)
		}
		return ctor(config)

	case *Factory:
		if r.Closure == nil {
			return nil, invalid(r, "recipe for %s has neither class nor closure", key)
		}
		return r.Closure(config, r.Dependencies, in)
	}

	return nil, invalid(r, "unsupported recipe %T for %s", r, key)
}

// borrow points the stack of c at the stack of from until restore is called.
func (c *Container) borrow(from *Container) (restore func()) {
	if c == from {
		return func() {}
	}
	prev := c.stack
	c.stack = from.stack
	return func() { c.stack = prev }
}

// MustGet is like Get but panics on error.
func (c *Container) MustGet(key string) any {
	v, err := c.Get(key)
	if err != nil {
		panic(fmt.Sprintf("container: %v", err))
	}
	return v
}

// ── Hierarchy ─────────────────────────────────────────────────────────────────

// Has reports whether key can be resolved here or by an ancestor.
func (c *Container) Has(key string) bool {
	if _, ok := c.assignments[key]; ok {
		return true
	}
	if c.parent != nil && c.parent != c {
		return c.parent.Has(key)
	}
	return false
}

// SetParent links c to p. Setting c as its own parent is ignored; a parent
// whose chain leads back to c is rejected. A nil p detaches c.
func (c *Container) SetParent(p *Container) error {
	if p == c {
		return nil
	}
	for a := p; a != nil; a = a.parent {
		if a == c {
			return invalid(p, "parent chain leads back to the container")
		}
	}
	c.parent = p
	return nil
}

// Parent returns the parent container or nil.
func (c *Container) Parent() *Container { return c.parent }

// ── Helpers ───────────────────────────────────────────────────────────────────

// Keys returns the keys assigned in c (not its ancestors) in lexical order.
func (c *Container) Keys() []string {
	out := make([]string, 0, len(c.assignments))
	for k := range c.assignments {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Shared reports whether key is assigned here with a shared recipe.
func (c *Container) Shared(key string) bool {
	if b, ok := c.assignments[key].(buildable); ok {
		return b.blueprint().Shared
	}
	return false
}

// Registry returns the class registry of c.
func (c *Container) Registry() *Registry { return c.registry }

func orEmpty(cfg Config) Config {
	if cfg == nil {
		return Config{}
	}
	return cfg
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Get and type-asserts the result.
//
//	repo, err := container.Resolve[*UserRepository](c, "repo")
func Resolve[T any](c *Container, key string) (T, error) {
	var zero T
	v, err := c.Get(key)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("resolve %s: got %T, want %T", key, v, zero)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, key string) T {
	v, err := Resolve[T](c, key)
	if err != nil {
		panic(fmt.Sprintf("container: %v", err))
	}
	return v
}
