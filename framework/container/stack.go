package container

// StackEntry is one in-flight construction: the type being built and the key
// it was requested under.
type StackEntry struct {
	Type string
	Key  string

	owner  *Container
	cached bool
}

// String renders the entry as type@key.
func (e StackEntry) String() string { return e.Type + "@" + e.Key }

// stack is the dependency stack of one resolution walk. Containers taking
// part in the walk point at the same stack.
type stack struct {
	entries []StackEntry
}

func (s *stack) push(e StackEntry) {
	s.entries = append(s.entries, e)
}

func (s *stack) pop() (StackEntry, error) {
	if len(s.entries) == 0 {
		return StackEntry{}, &StackUnderflowError{}
	}
	e := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return e, nil
}

// built records the concrete type of the innermost entry and whether its
// instance is already in the shared cache.
func (s *stack) built(name string, cached bool) {
	if len(s.entries) > 0 {
		s.entries[len(s.entries)-1].Type = name
		s.entries[len(s.entries)-1].cached = cached
	}
}

// cycle reports whether building key of owner again would never terminate:
// the key is already in flight and no cached shared instance has been entered
// since. The repeated walk would stop at such an instance.
func (s *stack) cycle(owner *Container, key string) bool {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.cached {
			return false
		}
		if e.owner == owner && e.Key == key {
			return true
		}
	}
	return false
}

func (s *stack) snapshot() []StackEntry {
	out := make([]StackEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *stack) depth() int { return len(s.entries) }
