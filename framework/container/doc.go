// Package container provides a small dependency-injection container driven by
// declarative definitions, in the spirit of Laravel's service container.
//
// # Overview
//
// A container maps string keys to recipes. A recipe is a literal Value, a
// Class (built by a constructor registered under a name) or a Factory (built
// by a closure). Resolving a key builds its instance, then injects the
// instance's declared dependencies, each of which is resolved recursively.
// Cycles between non-shared recipes are reported instead of recursing
// forever. Shared recipes are built once per container.
//
// # Definitions
//
//	container.RegisterClass("app.Mailer", container.Struct[Mailer]())
//	container.RegisterClass("app.UserRepository", NewUserRepository)
//
//	c, err := container.Create(container.Definitions{
//	    // bare class name
//	    "mailer": "app.Mailer",
//	    // descriptor
//	    "repo": map[string]any{
//	        "class":        "app.UserRepository",
//	        "config":       map[string]any{"table": "users"},
//	        "dependencies": []any{"db", map[string]any{"notifier": "mailer"}},
//	        "shared":       true,
//	        "runAfterInit": "Init",
//	    },
//	    // literal
//	    "db": map[string]any{"value": db},
//	})
//
// # Dependencies
//
// Without a declaration the instance's own slots are used: Injectable when
// implemented, else exported fields tagged `inject:"[key]"`. A declaration
// can also be a List (container.Keys("db").Map("notifier", "mailer")), a
// Method name called on the built instance, or a Callback. Each slot is
// filled through the Setters capability, a Set<Slot> method, or the exported
// field of the same name, in that order.
//
// # Resolving
//
//	raw, err := c.Get("repo")
//	repo, err := container.Resolve[*UserRepository](c, "repo")
//
// # Hierarchy
//
// Keys a container does not define are resolved by its parent. A recipe may
// name a different injector that resolves its dependencies, given either as a
// *Container or as an injector block:
//
//	"photos": map[string]any{
//	    "class":    "app.Photos",
//	    "injector": map[string]any{"class": "container", "config": overrides, "isolate": true},
//	}
//
// Isolated injectors never fall back to the declaring container.
//
// # Contextual Binding
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(...)
//	c.When("photos").Needs("filesystem").Give(&container.Class{Name: "app.S3"})
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
