package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-minidi/framework/container"
)

type configurable struct {
	Host    string
	Port    int
	Timeout float64 `config:"timeout_seconds"`
	hidden  string
}

func TestStruct_AppliesConfig(t *testing.T) {
	ctor := container.Struct[configurable]()

	v, err := ctor(container.Config{
		"host":            "localhost",
		"Port":            float64(5432),
		"timeout_seconds": 1.5,
	})
	require.NoError(t, err)

	got := v.(*configurable)
	assert.Equal(t, "localhost", got.Host)
	assert.Equal(t, 5432, got.Port)
	assert.Equal(t, 1.5, got.Timeout)
	assert.Empty(t, got.hidden)
}

func TestStruct_EmptyConfig(t *testing.T) {
	v, err := container.Struct[configurable]()(nil)
	require.NoError(t, err)
	assert.Equal(t, &configurable{}, v)
}

func TestStruct_RejectsUnknownAndMistyped(t *testing.T) {
	ctor := container.Struct[configurable]()
	var invalid *container.InvalidConfigurationError

	_, err := ctor(container.Config{"invalidParam": 10})
	assert.ErrorAs(t, err, &invalid)

	_, err = ctor(container.Config{"hidden": "x"})
	assert.ErrorAs(t, err, &invalid)

	_, err = ctor(container.Config{"port": "not a number"})
	assert.ErrorAs(t, err, &invalid)
}

func TestStruct_RejectsInexactNumbers(t *testing.T) {
	ctor := container.Struct[configurable]()

	for _, port := range []any{5432.5, 1e30, -1e30} {
		_, err := ctor(container.Config{"port": port})
		var invalid *container.InvalidConfigurationError
		require.ErrorAs(t, err, &invalid, "port %v", port)
		assert.Error(t, invalid.Err)
	}
}

func TestStruct_NonStructWithConfig(t *testing.T) {
	_, err := container.Struct[int]()(container.Config{"x": 1})

	var invalid *container.InvalidConfigurationError
	assert.ErrorAs(t, err, &invalid)
}

func TestRegistry_ClassesSorted(t *testing.T) {
	reg := container.NewRegistry().
		Class("b", container.Struct[configurable]()).
		Class("a", container.Struct[configurable]())

	assert.Equal(t, []string{"a", "b"}, reg.Classes())
}

func TestRegistry_DefaultRegistry(t *testing.T) {
	container.RegisterClass("registry_test.Configurable", container.Struct[configurable]())
	container.RegisterClosure("registry_test.make", func(container.Config, container.Dependencies, *container.Container) (any, error) {
		return &configurable{Host: "made"}, nil
	})

	c, err := container.Create(container.Definitions{
		"cfg": map[string]any{
			"class":  "registry_test.Configurable",
			"config": map[string]any{"host": "db"},
		},
		"made": map[string]any{"closure": "registry_test.make"},
	})
	require.NoError(t, err)

	assert.Same(t, container.DefaultRegistry, c.Registry())
	assert.Equal(t, "db", get(t, c, "cfg").(*configurable).Host)
	assert.Equal(t, "made", get(t, c, "made").(*configurable).Host)
}

func TestRegistry_ChildSharesRegistry(t *testing.T) {
	reg := testRegistry()
	c := container.New(container.WithRegistry(reg))

	assert.Same(t, reg, c.Child().Registry())
}
