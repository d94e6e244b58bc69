package container

import (
	"fmt"
	"strings"
)

// InjectableNotFoundError is returned when no recipe exists for a key in the
// container or any of its ancestors.
type InjectableNotFoundError struct {
	Key string
}

func (e *InjectableNotFoundError) Error() string {
	return fmt.Sprintf("injectable resolution for key %s not found", e.Key)
}

// CircularDependencyError is returned when resolving a non-shared recipe
// would re-enter its own construction. Path is the in-flight resolution trail.
type CircularDependencyError struct {
	Path []StackEntry
	Type string
}

func (e *CircularDependencyError) Error() string {
	path := make([]string, 0, len(e.Path)+1)
	for _, entry := range e.Path {
		path = append(path, entry.String())
	}
	path = append(path, e.Type)
	return "circular path: " + strings.Join(path, " --> ")
}

// InjectablePropertyError is returned when a dependency names a slot the
// instance neither accepts through a setter nor exposes as a field. Err is set
// when the slot exists but rejected the value.
type InjectablePropertyError struct {
	Slot string
	Type string
	Err  error
}

func (e *InjectablePropertyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot inject %s into %s: %v", e.Slot, e.Type, e.Err)
	}
	return fmt.Sprintf("no property or setter found for %s in %s", e.Slot, e.Type)
}

func (e *InjectablePropertyError) Unwrap() error { return e.Err }

// InvalidConfigurationError is returned for malformed recipes and injector
// blocks. Config holds the offending raw configuration.
type InvalidConfigurationError struct {
	Config any
	Reason string
	Err    error
}

func (e *InvalidConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Err)
	}
	return "invalid configuration: " + e.Reason
}

func (e *InvalidConfigurationError) Unwrap() error { return e.Err }

// StackUnderflowError signals a pop from an empty dependency stack. It means
// a push/pop pair was broken and is never expected in normal operation.
type StackUnderflowError struct{}

func (*StackUnderflowError) Error() string { return "injection stack is empty" }

func invalid(config any, format string, args ...any) *InvalidConfigurationError {
	return &InvalidConfigurationError{Config: config, Reason: fmt.Sprintf(format, args...)}
}
