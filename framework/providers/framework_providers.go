package providers

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/km-arc/go-minidi/framework/config"
	"github.com/km-arc/go-minidi/framework/container"
	"github.com/km-arc/go-minidi/framework/logging"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration as "config".
// A preloaded Config is bound as a literal; otherwise it is loaded from
// EnvFiles on first resolution and shared.
//
// Bound keys:
//   - "config"  → *config.Config
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	if p.Config != nil {
		app.AssignValue("config", p.Config)
		return nil
	}

	envFiles := p.EnvFiles
	app.AssignClosure("config", func(container.Config, container.Dependencies, *container.Container) (any, error) {
		return config.Load(envFiles...), nil
	}, container.List{}, nil, nil)
	return app.Share("config")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds the zap logger as "logger". It is deferred: the
// logger is built from "config" the first time something needs it, unless a
// ready Logger is supplied.
//
// Bound keys:
//   - "logger"  → *zap.Logger
//
// Laravel equivalent:
//
//	// Illuminate\Log\LogServiceProvider
//	$app->singleton('log', fn($app) => new LogManager($app));
type LogServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LogServiceProvider) Register(app *container.Container) error {
	if p.Logger != nil {
		app.AssignValue("logger", p.Logger)
		return nil
	}

	app.AssignClosure("logger", func(_ container.Config, _ container.Dependencies, in *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](in, "config")
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.Log, cfg.App.Env)
	}, container.List{}, nil, nil)
	return app.Share("logger")
}

func (p *LogServiceProvider) IsDeferred() bool   { return true }
func (p *LogServiceProvider) Provides() []string { return []string{"logger"} }

// ── DefinitionsServiceProvider ────────────────────────────────────────────────

// DefinitionsServiceProvider merges a container definition file (YAML or
// JSON) into the application container.
//
// Laravel equivalent:
//
//	// bootstrap/app.php
//	$app->configure('services');
type DefinitionsServiceProvider struct {
	container.BaseProvider
	File string

	// Optional skips a missing file instead of failing.
	Optional bool
}

func (p *DefinitionsServiceProvider) Register(app *container.Container) error {
	if p.File == "" {
		return nil
	}

	defs, err := config.LoadDefinitions(p.File)
	if err != nil {
		if p.Optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := app.Merge(container.Definitions(defs), false); err != nil {
		return fmt.Errorf("merging %s: %w", p.File, err)
	}
	return nil
}
