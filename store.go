package memoprop

import (
	"fmt"
	"reflect"
	"sync"
)

// store locates the cache slot of an owner and operates on it.
type store[O, V any] interface {
	load(owner O) (V, bool)
	save(owner O, v V)
	clear(owner O) bool

	// id names the slot of owner, for collapsing concurrent fills.
	id(owner O) string
}

// fieldStore keeps the value in a Slot embedded in the owner.
type fieldStore[O, V any] struct {
	locate func(owner O) *Slot[V]
}

func (s fieldStore[O, V]) load(owner O) (V, bool) {
	return s.locate(owner).Load()
}

func (s fieldStore[O, V]) save(owner O, v V) {
	s.locate(owner).Store(v)
}

func (s fieldStore[O, V]) clear(owner O) bool {
	return s.locate(owner).Clear()
}

func (s fieldStore[O, V]) id(owner O) string {
	return fmt.Sprintf("%p", s.locate(owner))
}

// attrStore keeps the value in the owner's Attrs table under key.
type attrStore[O, V any] struct {
	key string
}

func (s attrStore[O, V]) attrs(owner O) *Attrs {
	return any(owner).(Holder).MemoAttrs()
}

func (s attrStore[O, V]) load(owner O) (V, bool) {
	raw, ok := s.attrs(owner).lookup(s.key)
	if !ok {
		var zero V
		return zero, false
	}

	// A nil stored for an interface-typed V does not assert.
	v, _ := raw.(V)

	return v, true
}

func (s attrStore[O, V]) save(owner O, v V) {
	s.attrs(owner).set(s.key, v)
}

func (s attrStore[O, V]) clear(owner O) bool {
	return s.attrs(owner).remove(s.key)
}

func (s attrStore[O, V]) id(owner O) string {
	return fmt.Sprintf("%p/%s", s.attrs(owner), s.key)
}

// classStore keeps one Slot per dynamic owner type. A type embedding the
// owner type is a different type and gets its own slot.
type classStore[O, V any] struct {
	lock  sync.Mutex
	slots map[reflect.Type]*Slot[V]
}

func newClassStore[O, V any]() *classStore[O, V] {
	return &classStore[O, V]{
		slots: make(map[reflect.Type]*Slot[V]),
	}
}

func (s *classStore[O, V]) slotOf(owner O) *Slot[V] {
	t := reflect.TypeOf(any(owner))

	s.lock.Lock()
	defer s.lock.Unlock()

	slot, ok := s.slots[t]
	if !ok {
		slot = &Slot[V]{}
		s.slots[t] = slot
	}

	return slot
}

func (s *classStore[O, V]) load(owner O) (V, bool) {
	return s.slotOf(owner).Load()
}

func (s *classStore[O, V]) save(owner O, v V) {
	s.slotOf(owner).Store(v)
}

func (s *classStore[O, V]) clear(owner O) bool {
	return s.slotOf(owner).Clear()
}

func (s *classStore[O, V]) id(owner O) string {
	return fmt.Sprintf("%p", s.slotOf(owner))
}
