package container

// ContextualBuilder implements the fluent contextual binding API.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(...)
//	err := c.When("photos").Needs("filesystem").Give(&container.Class{Name: "app.S3"})
//
// The key named in When gets a child injector (parented to its current
// injector, or to the container) in which the needed key is overridden. All
// other dependencies still resolve as before.
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// When starts a contextual binding chain for key.
func (c *Container) When(key string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: key}
}

// Needs specifies which dependency key is overridden.
func (b *ContextualBuilder) Needs(key string) *ContextualBuilder {
	b.needs = key
	return b
}

// Give provides the recipe used when the concrete key resolves the needed key.
func (b *ContextualBuilder) Give(r Recipe) error {
	c := b.container

	rec, ok := c.assignments[b.concrete].(buildable)
	if !ok {
		return invalid(b.concrete, "contextual binding needs a class or closure recipe for %s", b.concrete)
	}
	bp := rec.blueprint()

	child, ok := c.contextual[b.concrete]
	if !ok || bp.Injector != child {
		parent := bp.Injector
		if parent == nil {
			parent = c
		}
		child = parent.Child()
		c.contextual[b.concrete] = child
		bp.Injector = child
	}

	child.Assign(b.needs, r)
	delete(c.shared, b.concrete)
	return nil
}

// GiveValue is a shorthand for Give with a literal.
//
//	// Laravel: ->give('/tmp/photos')
//	c.When("photos").Needs("storagePath").GiveValue("/tmp/photos")
func (b *ContextualBuilder) GiveValue(value any) error {
	return b.Give(Value{Value: value})
}
