package container

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/go-minidi/framework/validation"
)

// Definitions is the raw configuration form of a container: key → string
// class name, descriptor map, or Recipe.
//
//	container.Definitions{
//	    "db":     map[string]any{"class": "app.Database", "config": map[string]any{"dsn": "..."}, "shared": true},
//	    "repo":   map[string]any{"class": "app.UserRepository", "dependencies": []any{"db", map[string]any{"mailer": "smtp"}}},
//	    "smtp":   "app.Mailer",
//	    "appEnv": map[string]any{"value": "local"},
//	}
type Definitions map[string]any

// ContainerClass is the injector block class that builds a plain child of the
// declaring container.
const ContainerClass = "container"

// descriptorRules checks class and closure descriptors. Class names are
// dotted identifiers; "container" is reserved for injector blocks.
var descriptorRules = validation.Rules{
	"class":        `required_without:closure|prohibits:closure|sometimes|not_in:` + ContainerClass + `|regex:^[A-Za-z_]\w*(\.[A-Za-z_]\w*)*$`,
	"shared":       "nullable|boolean",
	"runAfterInit": "nullable|method",
}

var descriptorFields = map[string]bool{
	"class": true, "closure": true, "config": true, "dependencies": true,
	"shared": true, "injector": true, "runAfterInit": true,
}

// injectorRules checks injector blocks.
var injectorRules = validation.Rules{
	"class":         "required_without:instance|prohibits:instance",
	"isolate":       "nullable|boolean",
	"isolateConfig": "nullable|boolean",
}

var injectorFields = map[string]bool{
	"class": true, "instance": true, "config": true, "isolate": true, "isolateConfig": true,
}

// ── Merge ─────────────────────────────────────────────────────────────────────

// Merge imports recipes from raw definitions or another container. Merging a
// container also copies the shared instances it has already built, unless
// isolate is set. Recipes merged before an invalid entry stay assigned.
func (c *Container) Merge(source any, isolate bool) error {
	switch src := source.(type) {
	case nil:
		return nil
	case *Container:
		if src == nil || src == c {
			return nil
		}
		c.mergeContainer(src, isolate)
		return nil
	case Definitions:
		return c.mergeDefinitions(src)
	case map[string]any:
		return c.mergeDefinitions(Definitions(src))
	default:
		return invalid(source, "cannot merge %T into a container", source)
	}
}

func (c *Container) mergeContainer(src *Container, isolate bool) {
	for _, key := range src.Keys() {
		r := src.assignments[key]
		if b, ok := r.(buildable); ok {
			r = b.clone()
		}
		c.Assign(key, r)

		if isolate || !src.Shared(key) {
			continue
		}
		if instance, ok := src.shared[key]; ok {
			c.shared[key] = instance
		}
	}
	c.log.Debug("Container merged",
		zap.Int("recipes", len(src.assignments)),
		zap.Bool("isolate", isolate),
	)
}

func (c *Container) mergeDefinitions(defs Definitions) error {
	for _, key := range sortedKeys(defs) {
		r, err := c.recipeFrom(key, defs[key])
		if err != nil {
			return err
		}
		c.Assign(key, r)
	}
	return nil
}

// recipeFrom normalizes one raw definition.
func (c *Container) recipeFrom(key string, raw any) (Recipe, error) {
	switch v := raw.(type) {
	case string:
		return &Class{Name: v, Blueprint: Blueprint{Config: Config{}}}, nil
	case Recipe:
		return v, nil
	case Definitions:
		return c.descriptor(key, v)
	case map[string]any:
		return c.descriptor(key, v)
	default:
		return nil, invalid(raw, "definition for %s must be a class name or descriptor, got %T", key, raw)
	}
}

func (c *Container) descriptor(key string, d map[string]any) (Recipe, error) {
	if v, ok := d["value"]; ok {
		return Value{Value: v}, nil
	}

	if err := check(d, descriptorFields, descriptorRules); err != nil {
		return nil, &InvalidConfigurationError{Config: d, Reason: "definition for " + key, Err: err}
	}

	config, err := configFrom(d["config"])
	if err != nil {
		return nil, err
	}
	deps, err := dependenciesFrom(d["dependencies"])
	if err != nil {
		return nil, err
	}
	injector, err := c.injectorFrom(d["injector"])
	if err != nil {
		return nil, err
	}
	afterInit, _ := d["runAfterInit"].(string)

	bp := Blueprint{
		Config:       config,
		Dependencies: deps,
		Shared:       truthy(d["shared"]),
		Injector:     injector,
		RunAfterInit: afterInit,
	}

	if name, ok := d["class"].(string); ok && name != "" {
		return &Class{Name: name, Blueprint: bp}, nil
	}

	fn, err := c.closureFrom(d["closure"])
	if err != nil {
		return nil, err
	}
	return &Factory{Closure: fn, Blueprint: bp}, nil
}

func (c *Container) closureFrom(raw any) (Closure, error) {
	switch fn := raw.(type) {
	case Closure:
		return fn, nil
	case func(Config, Dependencies, *Container) (any, error):
		return fn, nil
	case string:
		closure, ok := c.registry.closure(fn)
		if !ok {
			return nil, invalid(raw, "closure %s is not registered", fn)
		}
		return closure, nil
	default:
		return nil, invalid(raw, "closure must be a function or registered name, got %T", raw)
	}
}

func configFrom(raw any) (Config, error) {
	switch v := raw.(type) {
	case nil:
		return Config{}, nil
	case Config:
		return v, nil
	case map[string]any:
		return Config(v), nil
	default:
		return nil, invalid(raw, "config must be a map, got %T", raw)
	}
}

// dependenciesFrom normalizes the raw dependency declaration. Lists may mix
// plain keys with single slot → key maps; maps are applied in slot order.
func dependenciesFrom(raw any) (Dependencies, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case Dependencies:
		return v, nil
	case func(any, *Container) (List, error):
		return Callback(v), nil
	case string:
		return Method(v), nil
	case []string:
		return Keys(v...), nil
	case map[string]string:
		return toList(v)
	case map[string]any:
		out := make(List, 0, len(v))
		for _, slot := range sortedKeys(v) {
			key, ok := v[slot].(string)
			if !ok {
				return nil, invalid(raw, "dependency %s must map to a key, got %T", slot, v[slot])
			}
			out = append(out, Dependency{Slot: slot, Key: key})
		}
		return out, nil
	case []any:
		out := make(List, 0, len(v))
		for _, item := range v {
			switch e := item.(type) {
			case string:
				out = append(out, Dependency{Slot: e, Key: e})
			case map[string]any, map[string]string:
				sub, err := dependenciesFrom(e)
				if err != nil {
					return nil, err
				}
				out = append(out, sub.(List)...)
			default:
				return nil, invalid(raw, "dependency entry must be a key or slot map, got %T", item)
			}
		}
		return out, nil
	default:
		return nil, invalid(raw, "unsupported dependency declaration %T", raw)
	}
}

// ── Injector blocks ───────────────────────────────────────────────────────────

func (c *Container) injectorFrom(raw any) (*Container, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case *Container:
		return v, nil
	case Definitions:
		return c.SubContainer(v)
	case map[string]any:
		return c.SubContainer(v)
	default:
		return nil, invalid(raw, "injector must be a container or injector block, got %T", raw)
	}
}

// SubContainer builds the container described by an injector block:
//
//	map[string]any{
//	    "class":    "container",  // or a registry class returning *Container
//	    "instance": existing,     // alternative to class
//	    "config":   defs,         // merged into the new container
//	    "isolate":  true,         // do not link the parent
//	}
//
// Unless isolated, the declaring container becomes its parent.
func (c *Container) SubContainer(block map[string]any) (*Container, error) {
	if err := check(block, injectorFields, injectorRules); err != nil {
		return nil, &InvalidConfigurationError{
			Config: block,
			Reason: "injector configuration must have either class or instance set",
			Err:    err,
		}
	}

	var sub *Container
	switch {
	case block["instance"] != nil:
		in, ok := block["instance"].(*Container)
		if !ok {
			return nil, invalid(block, "injector instance must be a container, got %T", block["instance"])
		}
		sub = in

	case block["class"] == ContainerClass:
		sub = c.derive()

	default:
		name, _ := block["class"].(string)
		ctor, ok := c.registry.constructor(name)
		if !ok {
			return nil, invalid(block, "injector class %s is not registered", name)
		}
		built, err := ctor(Config{})
		if err != nil {
			return nil, fmt.Errorf("constructing injector %s: %w", name, err)
		}
		in, ok := built.(*Container)
		if !ok {
			return nil, invalid(block, "injector class %s built %T, not a container", name, built)
		}
		sub = in
	}

	if err := sub.Merge(block["config"], truthy(block["isolateConfig"])); err != nil {
		return nil, err
	}

	if !truthy(block["isolate"]) {
		if err := sub.SetParent(c); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// ── Validation helpers ────────────────────────────────────────────────────────

// check rejects unknown fields and runs the rules over the flattened map.
// Nil values and empty strings count as absent.
func check(d map[string]any, known map[string]bool, rules validation.Rules) error {
	var unknown []string
	flat := make(map[string]string, len(d))
	for _, k := range sortedKeys(d) {
		if !known[k] {
			unknown = append(unknown, k)
			continue
		}
		switch v := d[k].(type) {
		case nil:
		case string:
			if v != "" {
				flat[k] = v
			}
		case bool:
			flat[k] = fmt.Sprint(v)
		default:
			flat[k] = fmt.Sprintf("%T", v)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown fields %s", strings.Join(unknown, ", "))
	}
	return validation.Validate(flat, rules)
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(b) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}
