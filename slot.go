package memoprop

// Slot is a cache cell that is either absent or holds one value. The zero
// value is absent, so a Slot can be embedded in an owner struct directly.
type Slot[V any] struct {
	value   V
	present bool
}

// Load returns the cached value and whether it is present.
func (s *Slot[V]) Load() (V, bool) {
	return s.value, s.present
}

// Store makes the slot present with v, replacing any previous value.
func (s *Slot[V]) Store(v V) {
	s.value = v
	s.present = true
}

// Clear makes the slot absent. It reports whether a value was present.
func (s *Slot[V]) Clear() bool {
	wasPresent := s.present

	var zero V
	s.value = zero
	s.present = false

	return wasPresent
}

// Present reports whether the slot holds a value.
func (s *Slot[V]) Present() bool {
	return s.present
}

// Attrs is a per-instance table of cached attribute values, keyed by the
// private key of each accessor. Owners that embed an Attrs and implement
// Holder do not need a dedicated Slot field per attribute.
type Attrs struct {
	values map[string]any
}

// Holder is implemented by owners that keep their cached values in an Attrs
// table.
type Holder interface {
	MemoAttrs() *Attrs
}

// Has reports whether key is populated.
func (a *Attrs) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Len returns the number of populated keys.
func (a *Attrs) Len() int {
	return len(a.values)
}

func (a *Attrs) lookup(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

func (a *Attrs) set(key string, v any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}

	a.values[key] = v
}

func (a *Attrs) remove(key string) bool {
	if _, ok := a.values[key]; !ok {
		return false
	}

	delete(a.values, key)

	return true
}
