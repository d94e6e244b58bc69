package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-minidi/framework/container"
)

// ── stub classes ──────────────────────────────────────────────────────────────

// ClassNoParams carries a field so distinct instances have distinct addresses.
type ClassNoParams struct{ Name string }

type Class1Param struct {
	InjectParam any `inject:""`
}

type Class2Nested struct {
	NestedParam *Class1Param `inject:""`
	InjectParam any          `inject:""`
}

type ClassConfig struct {
	Param       string
	SecondParam string
}

func newClassConfig(cfg container.Config) (any, error) {
	c := &ClassConfig{}
	c.Param, _ = cfg["param"].(string)
	c.SecondParam, _ = cfg["param2"].(string)
	return c, nil
}

func (c *ClassConfig) GetParam() string { return c.Param }

type ClassAfterInit struct {
	TestClass1 *Class1Param
	InitParam  any
}

func (c *ClassAfterInit) Init() { c.InitParam = c.TestClass1.InjectParam }

type ClassFailingInit struct{ Calls int }

func (c *ClassFailingInit) Init() error {
	c.Calls++
	return errors.New("init failed")
}

type ClassLinked struct {
	Peer  any
	Extra any
}

type ClassCircular struct {
	CircularParam any `inject:""`
}

type ClassCircular1Param struct {
	Param any `inject:""`
}

type ClassInvalidMapping struct{ ID int }

// ── stub classes: slot mapping ────────────────────────────────────────────────

type OneParam struct {
	DependentParam    any
	NotDependentParam string
}

func (*OneParam) Injectables() container.List { return container.Keys("dependentParam") }

type OneParamRemap struct {
	DifferentParam    any
	NotDependentParam string
}

func (*OneParamRemap) Injectables() container.List {
	return container.List{}.Map("differentParam", "dependentParam")
}

type OneParamSetter struct {
	DifferentParam    any
	NotDependentParam string
}

func (*OneParamSetter) Injectables() container.List { return container.Keys("dependentParam") }

func (p *OneParamSetter) SetDependentParam(v any) { p.DifferentParam = v }

type ParamSetterCombination struct {
	DifferentParam       any
	DirectMapParam       any
	DifferentSetterParam any
	NotDependentParam    string
}

func (*ParamSetterCombination) Injectables() container.List {
	return container.List{}.
		Map("differentParam", "dependentParam").
		Map("directMapParam", "dependentParam").
		Map("setterParam", "dependentParam")
}

func (p *ParamSetterCombination) Setters() map[string]func(any) error {
	return map[string]func(any) error{
		"setterParam": func(v any) error {
			p.DifferentSetterParam = v
			return nil
		},
	}
}

type MethodDeclared struct {
	First  any
	Second any
}

func (*MethodDeclared) Deps() []string { return []string{"first", "second"} }

func (*MethodDeclared) Remap() (map[string]string, error) {
	return map[string]string{"first": "second", "second": "first"}, nil
}

type TypedSlots struct {
	Count  int
	Small  int8
	Size   uint
	Holder *ClassNoParams
}

func (t *TypedSlots) SetStrict(v string) error {
	if v == "" {
		return errors.New("strict must not be empty")
	}
	return nil
}

func notSet[T any]() container.Constructor {
	return func(container.Config) (any, error) {
		v := new(T)
		switch p := any(v).(type) {
		case *OneParam:
			p.NotDependentParam = "I AM NOT SET"
		case *OneParamRemap:
			p.NotDependentParam = "I AM NOT SET"
		case *OneParamSetter:
			p.NotDependentParam = "I AM NOT SET"
		case *ParamSetterCombination:
			p.NotDependentParam = "I AM NOT SET"
		}
		return v, nil
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func testRegistry() *container.Registry {
	return container.NewRegistry().
		Class("test.NoParams", container.Struct[ClassNoParams]()).
		Class("test.Class1Param", container.Struct[Class1Param]()).
		Class("test.Class2Nested", container.Struct[Class2Nested]()).
		Class("test.Config", newClassConfig).
		Class("test.AfterInit", container.Struct[ClassAfterInit]()).
		Class("test.FailingInit", container.Struct[ClassFailingInit]()).
		Class("test.Linked", container.Struct[ClassLinked]()).
		Class("test.Circular", container.Struct[ClassCircular]()).
		Class("test.Circular1Param", container.Struct[ClassCircular1Param]()).
		Class("test.InvalidMapping", container.Struct[ClassInvalidMapping]()).
		Class("test.MethodDeclared", container.Struct[MethodDeclared]()).
		Class("test.TypedSlots", container.Struct[TypedSlots]()).
		Class("mapping.OneParam", notSet[OneParam]()).
		Class("mapping.OneParamRemap", notSet[OneParamRemap]()).
		Class("mapping.OneParamSetter", notSet[OneParamSetter]()).
		Class("mapping.Combination", notSet[ParamSetterCombination]()).
		Class("test.Injector", func(container.Config) (any, error) {
			return container.New(), nil
		}).
		Class("test.NotAnInjector", container.Struct[ClassNoParams]()).
		Closure("test.makeNoParams", func(cfg container.Config, _ container.Dependencies, _ *container.Container) (any, error) {
			name, _ := cfg["name"].(string)
			return &ClassNoParams{Name: name}, nil
		})
}

// create builds a container over the test registry.
func create(t *testing.T, defs container.Definitions) *container.Container {
	t.Helper()
	c, err := container.Create(defs, container.WithRegistry(testRegistry()))
	require.NoError(t, err)
	return c
}

// get resolves key and fails the test on error.
func get(t *testing.T, c *container.Container, key string) any {
	t.Helper()
	v, err := c.Get(key)
	require.NoError(t, err)
	return v
}
