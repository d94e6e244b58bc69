package container

import (
	"fmt"

	"go.uber.org/zap"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider mirrors Laravel's Illuminate\Support\ServiceProvider.
//
// Register assigns recipes. Boot is called after ALL providers have been
// registered, making it safe to resolve other keys inside Boot.
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    app.AssignClass("mailer", "app.Mailer", nil, nil, nil)
//	    return app.Share("mailer")
//	}
type ServiceProvider interface {
	// Register assigns recipes into the container.
	// Do NOT resolve other keys here; use Boot() for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	Boot(app *Container) error

	// Provides returns the keys this provider assigns. Only deferred
	// providers need it.
	Provides() []string

	// IsDeferred returns true if the provider should only be registered when
	// one of its Provides() keys is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // key → provider
	loading    map[ServiceProvider]bool
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		loading:    make(map[ServiceProvider]bool),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
// Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, key := range provider.Provides() {
			r.deferred[key] = provider
		}
		r.interceptDeferred(provider)
		return nil
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("registering %T: %w", provider, err)
	}
	r.eager = append(r.eager, provider)

	if r.booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("booting %T: %w", provider, err)
		}
	}
	return nil
}

// interceptDeferred assigns a placeholder closure for each deferred key. The
// first resolution registers the provider for real and replaces the
// placeholders.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, key := range provider.Provides() {
		key := key
		r.app.AssignClosure(key, func(_ Config, _ Dependencies, _ *Container) (any, error) {
			return r.load(provider, key)
		}, List{}, nil, nil)
	}
}

// load registers a deferred provider into a child of the app, resolves key
// there (so the placeholder being built is not re-entered), and merges the
// child back including the shared instances it built.
func (r *ProviderRegistry) load(provider ServiceProvider, key string) (any, error) {
	if r.loading[provider] {
		return nil, invalid(key, "deferred provider %T re-entered while loading %s", provider, key)
	}
	r.loading[provider] = true
	defer delete(r.loading, provider)

	r.app.log.Debug("Loading deferred provider",
		zap.String("key", key),
		zap.String("provider", fmt.Sprintf("%T", provider)),
	)

	scratch := r.app.Child()
	if err := provider.Register(scratch); err != nil {
		return nil, fmt.Errorf("registering %T: %w", provider, err)
	}

	// The walk that reached the placeholder continues in scratch, so cycles
	// through the provider's recipes are reported as circular.
	restore := scratch.borrow(r.app)
	defer restore()

	instance, err := scratch.Get(key)
	if err != nil {
		return nil, err
	}

	for _, k := range provider.Provides() {
		delete(r.deferred, k)
	}
	if err := r.app.Merge(scratch, false); err != nil {
		return nil, err
	}

	if r.booted {
		if err := provider.Boot(r.app); err != nil {
			return nil, fmt.Errorf("booting %T: %w", provider, err)
		}
	}
	return instance, nil
}

// Boot calls Boot() on all eager providers, in registration order.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.eager {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("booting %T: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }

// Deferred returns true if key is still served by an unloaded provider.
func (r *ProviderRegistry) Deferred(key string) bool {
	_, ok := r.deferred[key]
	return ok
}
