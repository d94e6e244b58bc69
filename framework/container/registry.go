package container

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// ── Class registry ────────────────────────────────────────────────────────────

// Registry maps class names to constructors and closure names to closures,
// so recipes written as plain data can refer to Go code.
//
//	reg := container.NewRegistry().
//	    Class("mailer", NewMailer).
//	    Closure("makeMailer", MakeMailer)
type Registry struct {
	mu       sync.RWMutex
	classes  map[string]Constructor
	closures map[string]Closure
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes:  make(map[string]Constructor),
		closures: make(map[string]Closure),
	}
}

// DefaultRegistry is used by containers created without WithRegistry.
var DefaultRegistry = NewRegistry()

// RegisterClass adds a constructor to DefaultRegistry.
func RegisterClass(name string, ctor Constructor) { DefaultRegistry.Class(name, ctor) }

// RegisterClosure adds a closure to DefaultRegistry.
func RegisterClosure(name string, fn Closure) { DefaultRegistry.Closure(name, fn) }

// Class registers ctor under name, replacing any previous constructor.
func (r *Registry) Class(name string, ctor Constructor) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[name] = ctor
	return r
}

// Closure registers fn under name, replacing any previous closure.
func (r *Registry) Closure(name string, fn Closure) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closures[name] = fn
	return r
}

// Classes returns the registered class names in lexical order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.classes))
	for name := range r.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) constructor(name string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.classes[name]
	return ctor, ok
}

func (r *Registry) closure(name string) (Closure, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.closures[name]
	return fn, ok
}

// ── Constructor helpers ───────────────────────────────────────────────────────

// Struct returns a constructor that allocates a new T and copies each config
// entry into the exported field of the same name (first letter folded, or a
// matching `config` tag). Unknown config keys are an InvalidConfigurationError.
//
//	container.RegisterClass("mailer", container.Struct[Mailer]())
func Struct[T any]() Constructor {
	return func(config Config) (any, error) {
		instance := new(T)
		if len(config) == 0 {
			return instance, nil
		}

		v := reflect.ValueOf(instance).Elem()
		if v.Kind() != reflect.Struct {
			return nil, invalid(config, "%T does not accept configuration", instance)
		}

		for _, name := range sortedKeys(config) {
			f, ok := configField(v, name)
			if !ok {
				return nil, invalid(config, "%T has no configurable field %s", instance, name)
			}
			if err := assign(f, config[name]); err != nil {
				return nil, &InvalidConfigurationError{
					Config: config,
					Reason: fmt.Sprintf("configuring %s of %T", name, instance),
					Err:    err,
				}
			}
		}
		return instance, nil
	}
}

func configField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, ok := sf.Tag.Lookup("config"); ok && tag == name {
			return v.Field(i), true
		}
	}
	return exportedField(v, name)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
