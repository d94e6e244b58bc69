package app_test

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-minidi/framework/app"
	"github.com/km-arc/go-minidi/framework/config"
	"github.com/km-arc/go-minidi/framework/container"
)

type Widget struct {
	Label string
}

func newApp(t *testing.T, file string) *app.Application {
	t.Helper()
	color.NoColor = true
	t.Setenv("WIDGET_LABEL", "blue")

	reg := container.NewRegistry().Class("app_test.Widget", container.Struct[Widget]())
	cfg := &config.Config{
		App:       config.AppConfig{Name: "Test", Env: "testing"},
		Container: config.ContainerConfig{File: file},
	}
	a, err := app.NewWith(cfg, nil, container.WithRegistry(reg))
	require.NoError(t, err)
	return a
}

func TestNewWith_BindsFrameworkKeys(t *testing.T) {
	a := newApp(t, "testdata/container.yaml")
	require.NoError(t, a.Boot())

	cfg, err := container.Resolve[*config.Config](a.Container, "config")
	require.NoError(t, err)
	assert.Same(t, a.Config(), cfg)

	log, err := container.Resolve[*zap.Logger](a.Container, "logger")
	require.NoError(t, err)
	assert.Same(t, a.Logger(), log)

	w := container.MustResolve[*Widget](a.Container, "widget")
	assert.Equal(t, "blue", w.Label)
}

func TestNewWith_MissingDefinitionsFileIsOptional(t *testing.T) {
	a := newApp(t, "testdata/absent.yaml")

	assert.False(t, a.Has("widget"))
	assert.True(t, a.Has("config"))
}

func TestNewWith_InvalidDefinitions(t *testing.T) {
	cfg := &config.Config{Container: config.ContainerConfig{File: "testdata/invalid.json"}}

	_, err := app.NewWith(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	a := newApp(t, "testdata/container.yaml")

	var buf bytes.Buffer
	require.NoError(t, a.Inspect(&buf, "name", "widget"))

	out := buf.String()
	assert.Contains(t, out, "string = inspector")
	assert.Contains(t, out, "*app_test.Widget (shared)")
}

func TestInspect_ReportsFailures(t *testing.T) {
	a := newApp(t, "testdata/container.yaml")

	var buf bytes.Buffer
	err := a.Inspect(&buf, "name", "broken", "unknown")

	assert.EqualError(t, err, "2 of 3 keys failed to resolve")
	assert.Contains(t, buf.String(), "class app_test.Missing for broken is not registered")
	assert.Contains(t, buf.String(), "injectable resolution for key unknown not found")
}

func TestInspect_AllKeys(t *testing.T) {
	a := newApp(t, "testdata/absent.yaml")
	a.AssignValue("answer", 42)

	var buf bytes.Buffer
	require.NoError(t, a.Inspect(&buf))

	out := buf.String()
	assert.Contains(t, out, "int = 42")
	assert.Contains(t, out, "*config.Config")
	assert.Contains(t, out, "*zap.Logger")
}

func TestRun(t *testing.T) {
	a := newApp(t, "testdata/container.yaml")
	var buf bytes.Buffer
	a.Output = &buf

	require.NoError(t, a.Run([]string{"name"}))

	out := buf.String()
	assert.Contains(t, out, "Test "+a.Version()+" [testing]")
	assert.Contains(t, out, "name")
	assert.NotContains(t, out, "class app_test.Widget")
	assert.True(t, a.Providers.Booted())
}

func TestRun_DebugListsClasses(t *testing.T) {
	a := newApp(t, "testdata/container.yaml")
	a.Config().App.Debug = true
	var buf bytes.Buffer
	a.Output = &buf

	require.NoError(t, a.Run([]string{"name"}))
	assert.Contains(t, buf.String(), "class app_test.Widget")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")

	_, err := app.New("testdata/missing.env")
	assert.ErrorContains(t, err, "LOG_FORMAT")
}

func TestEnvironmentHelpers(t *testing.T) {
	a := newApp(t, "")

	assert.Equal(t, "testing", a.Environment())
	assert.False(t, a.IsDebug())
	assert.NotEmpty(t, a.Version())
}
