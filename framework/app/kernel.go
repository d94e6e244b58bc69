package app

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/km-arc/go-minidi/framework/config"
	"github.com/km-arc/go-minidi/framework/container"
	"github.com/km-arc/go-minidi/framework/logging"
	"github.com/km-arc/go-minidi/framework/providers"
)

// Application is the top-level application container.
// It embeds the Container and ProviderRegistry so user code can call
// app.Get(), app.AssignClass(), app.Register() directly, like $app in
// Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	// Output receives the report printed by Run. Defaults to os.Stdout.
	Output io.Writer

	cfg *config.Config
	log *zap.Logger
}

// New loads the configuration from envFiles, builds the logger and creates
// the application.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log, cfg.App.Env)
	if err != nil {
		return nil, err
	}
	return NewWith(cfg, log)
}

// NewWith creates the application from a loaded configuration. The
// framework providers are registered in order: config, logger, then the
// container definition file named by cfg.Container.File, if it exists.
func NewWith(cfg *config.Config, log *zap.Logger, opts ...container.Option) (*Application, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := container.New(append([]container.Option{container.WithLogger(log)}, opts...)...)

	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Output:    os.Stdout,
		cfg:       cfg,
		log:       log,
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LogServiceProvider{Logger: log},
		&providers.DefinitionsServiceProvider{File: cfg.Container.File, Optional: true},
	} {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	a.log.Debug("Application booted",
		zap.String("app", a.cfg.App.Name),
		zap.String("version", a.Version()),
		zap.String("env", a.Environment()),
		zap.Int("providers", len(a.Providers.Providers())),
	)
	return nil
}

// Config returns the application configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.log }

// ── Inspect ───────────────────────────────────────────────────────────────────

var (
	keyColor   = color.New(color.FgCyan, color.Bold)
	typeColor  = color.New(color.FgGreen)
	errorColor = color.New(color.FgRed)
)

// Inspect resolves each key (every assigned key when none are given) and
// writes one line per key: its type and, for scalars and Stringers, its
// value. Failures are printed in place and reported together once all keys
// were tried.
func (a *Application) Inspect(w io.Writer, keys ...string) error {
	if len(keys) == 0 {
		keys = a.Keys()
	}

	failed := 0
	for _, key := range keys {
		keyColor.Fprintf(w, "%-20s", key)

		v, err := a.Get(key)
		if err != nil {
			failed++
			errorColor.Fprintf(w, " error: %v\n", err)
			a.log.Warn("Resolution failed", zap.String("key", key), zap.Error(err))
			continue
		}

		typeColor.Fprintf(w, " %s", describeType(v))
		if s, ok := scalar(v); ok {
			fmt.Fprintf(w, " = %s", s)
		}
		if a.Shared(key) {
			fmt.Fprint(w, " (shared)")
		}
		fmt.Fprintln(w)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d keys failed to resolve", failed, len(keys))
	}
	return nil
}

func describeType(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

func scalar(v any) (string, bool) {
	switch s := v.(type) {
	case string, bool, int, int64, float64:
		return fmt.Sprintf("%v", v), true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}

// Run boots the application and inspects the keys given as arguments, or
// CONTAINER_KEYS when there are none. In debug mode the registered classes
// are listed as well.
func (a *Application) Run(args []string) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}

	keys := args
	if len(keys) == 0 {
		keys = a.cfg.Container.Keys
	}

	color.New(color.Bold).Fprintf(a.Output, "%s %s [%s]\n", a.cfg.App.Name, a.Version(), a.Environment())
	if a.IsDebug() {
		for _, class := range a.Registry().Classes() {
			fmt.Fprintf(a.Output, "class %s\n", class)
		}
	}
	return a.Inspect(a.Output, keys...)
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }
func (a *Application) Version() string     { return "0.1.0" }
