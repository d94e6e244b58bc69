package container

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ── Dependency declarations ───────────────────────────────────────────────────

// Dependencies declares which slots of an instance are filled from which keys.
// It is one of List, Method or Callback; nil means the instance's own
// injectable slots (see Injectable).
type Dependencies interface {
	isDependencies()
}

// Dependency fills Slot with the value resolved for Key.
type Dependency struct {
	Slot string
	Key  string
}

// List is an ordered dependency declaration.
type List []Dependency

func (List) isDependencies() {}

// Keys declares dependencies whose slot and key share a name.
//
//	container.Keys("db", "mailer") // db ← db, mailer ← mailer
func Keys(keys ...string) List {
	out := make(List, len(keys))
	for i, k := range keys {
		out[i] = Dependency{Slot: k, Key: k}
	}
	return out
}

// Map adds a slot ← key entry to the list.
func (l List) Map(slot, key string) List {
	return append(l, Dependency{Slot: slot, Key: key})
}

// Method names an exported method of the built instance returning its
// dependency declaration ([]string, map[string]string or List, optionally
// followed by an error).
type Method string

func (Method) isDependencies() {}

// Callback computes the dependency declaration of a built instance.
type Callback func(instance any, in *Container) (List, error)

func (Callback) isDependencies() {}

// ── Capabilities ──────────────────────────────────────────────────────────────

// Injectable is implemented by types that list their own injectable slots.
// It is consulted when a recipe declares no dependencies.
type Injectable interface {
	Injectables() List
}

// Setters is implemented by types that accept some slots through setter
// functions instead of fields.
type Setters interface {
	Setters() map[string]func(value any) error
}

// ── Resolution ────────────────────────────────────────────────────────────────

// dependenciesOf turns a declaration into the concrete slot list of instance.
func (c *Container) dependenciesOf(instance any, deps Dependencies) (List, error) {
	switch d := deps.(type) {
	case nil:
		return introspect(instance), nil
	case List:
		return d, nil
	case Method:
		out, err := callMethod(instance, string(d))
		if err != nil {
			return nil, err
		}
		if len(out) == 0 || len(out) > 2 || (len(out) == 2 && out[1].Type() != errorType) {
			return nil, invalid(d, "method %s of %s must return a dependency list", d, typeName(instance))
		}
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return toList(out[0].Interface())
	case Callback:
		return d(instance, c)
	default:
		return nil, invalid(deps, "unsupported dependency declaration %T", deps)
	}
}

// introspect lists the injectable slots of instance: Injectable first, then
// exported fields tagged `inject:"[key]"`. An empty tag uses the slot name as
// key and "-" skips the field.
func introspect(instance any) List {
	if in, ok := instance.(Injectable); ok {
		return in.Injectables()
	}

	v := reflect.ValueOf(instance)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	var out List
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("inject")
		if !ok || tag == "-" || !sf.IsExported() {
			continue
		}
		slot := lowerFirst(sf.Name)
		key := strings.TrimSpace(tag)
		if key == "" {
			key = slot
		}
		out = append(out, Dependency{Slot: slot, Key: key})
	}
	return out
}

// toList converts the list-shaped results of Method declarations.
func toList(v any) (List, error) {
	switch d := v.(type) {
	case List:
		return d, nil
	case []Dependency:
		return List(d), nil
	case []string:
		return Keys(d...), nil
	case map[string]string:
		out := make(List, 0, len(d))
		for _, slot := range sortedKeys(d) {
			out = append(out, Dependency{Slot: slot, Key: d[slot]})
		}
		return out, nil
	default:
		return nil, invalid(v, "%T is not a dependency list", v)
	}
}

// ── Injection ─────────────────────────────────────────────────────────────────

// inject fills the declared slots of instance in order, resolving every key
// through c.
func (c *Container) inject(instance any, deps Dependencies) error {
	list, err := c.dependenciesOf(instance, deps)
	if err != nil {
		return err
	}
	for _, d := range list {
		if err := c.injectOne(instance, d); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) injectOne(instance any, d Dependency) error {
	name := typeName(instance)

	if set, ok := setterFor(instance, d.Slot); ok {
		value, err := c.Get(d.Key)
		if err != nil {
			return err
		}
		if err := set(value); err != nil {
			return &InjectablePropertyError{Slot: d.Slot, Type: name, Err: err}
		}
		return nil
	}

	if f, ok := fieldFor(instance, d.Slot); ok {
		value, err := c.Get(d.Key)
		if err != nil {
			return err
		}
		if err := assign(f, value); err != nil {
			return &InjectablePropertyError{Slot: d.Slot, Type: name, Err: err}
		}
		return nil
	}

	return &InjectablePropertyError{Slot: d.Slot, Type: name}
}

// setterFor finds a setter for slot: the Setters capability, then a
// Set<Slot>(value) method.
func setterFor(instance any, slot string) (func(any) error, bool) {
	if s, ok := instance.(Setters); ok {
		if set, ok := s.Setters()[slot]; ok {
			return set, true
		}
	}

	if instance == nil {
		return nil, false
	}
	m := reflect.ValueOf(instance).MethodByName("Set" + upperFirst(slot))
	if !m.IsValid() {
		return nil, false
	}
	mt := m.Type()
	if mt.NumIn() != 1 || mt.NumOut() > 1 {
		return nil, false
	}
	if mt.NumOut() == 1 && mt.Out(0) != errorType {
		return nil, false
	}

	return func(value any) error {
		arg, err := convert(value, mt.In(0))
		if err != nil {
			return err
		}
		out := m.Call([]reflect.Value{arg})
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}, true
}

// fieldFor finds the settable exported field for slot.
func fieldFor(instance any, slot string) (reflect.Value, bool) {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, false
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return exportedField(v, slot)
}

// exportedField looks a field up by exact name, with its first letter
// upper-cased, then ignoring case. Slot "injectParam" matches field
// InjectParam and slot "db" matches field DB.
func exportedField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	lookups := []func() (reflect.StructField, bool){
		func() (reflect.StructField, bool) { return t.FieldByName(name) },
		func() (reflect.StructField, bool) { return t.FieldByName(upperFirst(name)) },
		func() (reflect.StructField, bool) {
			return t.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
		},
	}
	for _, lookup := range lookups {
		sf, ok := lookup()
		if !ok || !sf.IsExported() || len(sf.Index) != 1 {
			continue
		}
		f := v.FieldByIndex(sf.Index)
		if f.CanSet() {
			return f, true
		}
	}
	return reflect.Value{}, false
}

// ── Reflection helpers ────────────────────────────────────────────────────────

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func assign(f reflect.Value, value any) error {
	v, err := convert(value, f.Type())
	if err != nil {
		return err
	}
	f.Set(v)
	return nil
}

func convert(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch to.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(to), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", to)
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if numeric(v.Kind()) && numeric(to.Kind()) {
		if err := fits(v, to); err != nil {
			return reflect.Value{}, err
		}
		return v.Convert(to), nil
	}
	if v.Type().ConvertibleTo(to) && v.Kind() == to.Kind() {
		return v.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, to)
}

// fits reports an error when the number v cannot be represented exactly by
// the numeric type to.
func fits(v reflect.Value, to reflect.Type) error {
	zero := reflect.Zero(to)
	overflow := false

	switch {
	case isFloat(v.Kind()):
		f := v.Float()
		switch {
		case isFloat(to.Kind()):
			overflow = zero.OverflowFloat(f)
		case f != math.Trunc(f):
			return fmt.Errorf("cannot use %v as %s: fractional part", f, to)
		case isInt(to.Kind()):
			overflow = f < math.MinInt64 || f >= math.MaxInt64 || zero.OverflowInt(int64(f))
		default:
			overflow = f < 0 || f >= math.MaxUint64 || zero.OverflowUint(uint64(f))
		}

	case isInt(v.Kind()):
		i := v.Int()
		switch {
		case isInt(to.Kind()):
			overflow = zero.OverflowInt(i)
		case !isFloat(to.Kind()):
			overflow = i < 0 || zero.OverflowUint(uint64(i))
		}

	default:
		u := v.Uint()
		switch {
		case isInt(to.Kind()):
			overflow = u > math.MaxInt64 || zero.OverflowInt(int64(u))
		case !isFloat(to.Kind()):
			overflow = zero.OverflowUint(u)
		}
	}

	if overflow {
		return fmt.Errorf("cannot use %v as %s: out of range", v.Interface(), to)
	}
	return nil
}

// callMethod invokes the exported no-argument method name of instance.
func callMethod(instance any, name string) ([]reflect.Value, error) {
	if instance == nil {
		return nil, invalid(name, "cannot call %s on a nil instance", name)
	}
	m := reflect.ValueOf(instance).MethodByName(name)
	if !m.IsValid() {
		return nil, invalid(name, "%s has no method %s", typeName(instance), name)
	}
	if m.Type().NumIn() != 0 {
		return nil, invalid(name, "method %s of %s must take no arguments", name, typeName(instance))
	}
	return m.Call(nil), nil
}

// runAfterInit calls the post-init hook; a returned error is propagated.
func runAfterInit(instance any, name string) error {
	out, err := callMethod(instance, name)
	if err != nil {
		return err
	}
	for _, o := range out {
		if o.Type() == errorType && !o.IsNil() {
			return o.Interface().(error)
		}
	}
	return nil
}

func numeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

func isInt(k reflect.Kind) bool { return k >= reflect.Int && k <= reflect.Int64 }

func isFloat(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }

func typeName(instance any) string {
	if instance == nil {
		return "<nil>"
	}
	return reflect.TypeOf(instance).String()
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
