package container

// ── Recipes ───────────────────────────────────────────────────────────────────

// Config is the opaque configuration handed to a class constructor or closure.
type Config map[string]any

// Constructor builds a class instance from its recipe configuration.
//
//	container.RegisterClass("mailer", func(cfg container.Config) (any, error) {
//	    return &Mailer{From: cfg["from"].(string)}, nil
//	})
type Constructor func(config Config) (any, error)

// Closure builds an instance itself. It receives the recipe configuration, the
// raw dependency declaration and the container that resolves dependencies,
// and is responsible for returning a ready instance. Dependencies of the
// returned instance are still injected by the container.
type Closure func(config Config, deps Dependencies, in *Container) (any, error)

// Recipe is the instruction for producing the value of a key. It is one of
// Value, *Class or *Factory.
type Recipe interface {
	// target names what the recipe builds; used in stack traces.
	target() string
}

// Value binds a literal. It is returned as-is and never enters the
// dependency stack.
type Value struct {
	Value any
}

func (Value) target() string { return "value" }

// Blueprint holds the settings shared by class and closure recipes.
type Blueprint struct {
	// Config is passed to the constructor or closure.
	Config Config
	// Dependencies declares what is injected after construction. Nil means
	// the instance's own injectable slots.
	Dependencies Dependencies
	// Shared instances are built once per container and then reused.
	Shared bool
	// Injector resolves the dependencies instead of the owning container.
	Injector *Container
	// RunAfterInit names an exported method called once injection is done.
	RunAfterInit string
}

// Class builds an instance through a constructor registered under Name.
type Class struct {
	Name string
	Blueprint
}

func (r *Class) target() string { return r.Name }

func (r *Class) blueprint() *Blueprint { return &r.Blueprint }

func (r *Class) clone() buildable {
	cp := *r
	return &cp
}

// Factory builds an instance by calling Closure.
type Factory struct {
	Closure Closure
	Blueprint
}

func (r *Factory) target() string { return "closure" }

func (r *Factory) blueprint() *Blueprint { return &r.Blueprint }

func (r *Factory) clone() buildable {
	cp := *r
	return &cp
}

// buildable is implemented by the recipes that construct instances.
type buildable interface {
	Recipe
	blueprint() *Blueprint
	clone() buildable
}

// valueOf unwraps a literal recipe.
func valueOf(r Recipe) (any, bool) {
	switch v := r.(type) {
	case Value:
		return v.Value, true
	case *Value:
		if v != nil {
			return v.Value, true
		}
	}
	return nil, false
}
