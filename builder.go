package memoprop

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/memoprop/hooking"
)

const keyPrefix = "_"

// PrivateKey returns the key a cached value of the attribute name is stored
// under.
func PrivateKey(name string) string {
	return keyPrefix + name
}

// Builder holds the configuration of an accessor until the getter is known.
type Builder[O, V any] struct {
	settable  bool
	deletable bool
	scope     Scope
	exclusive bool
	locate    func(owner O) *Slot[V]
	hooks     []hooking.Hook
}

// MakeBuilder returns a Builder with the default configuration: not
// settable, deletable, instance scope.
func MakeBuilder[O, V any]() Builder[O, V] {
	return Builder[O, V]{
		settable:  false,
		deletable: true,
		scope:     ScopeInstance,
	}
}

// New builds an accessor with the default configuration.
func New[O, V any](name string, getter Getter[O, V]) *Accessor[O, V] {
	return MakeBuilder[O, V]().Build(name, getter)
}

// WithSettable sets whether the cached value can be overwritten with Set.
func (b Builder[O, V]) WithSettable(settable bool) Builder[O, V] {
	b.settable = settable
	return b
}

// WithDeletable sets whether the cached value can be cleared with Delete.
func (b Builder[O, V]) WithDeletable(deletable bool) Builder[O, V] {
	b.deletable = deletable
	return b
}

// WithScope sets whether the value is cached per instance or per type.
func (b Builder[O, V]) WithScope(scope Scope) Builder[O, V] {
	b.scope = scope
	return b
}

// WithSlot sets the function that locates the Slot field of an owner. It is
// required in instance scope unless O implements Holder.
func (b Builder[O, V]) WithSlot(locate func(owner O) *Slot[V]) Builder[O, V] {
	b.locate = locate
	return b
}

// WithExclusiveFill makes concurrent first reads of the same slot call the
// getter only once. A getter must not read its own attribute on the same
// owner when this is set; doing so blocks forever.
func (b Builder[O, V]) WithExclusiveFill() Builder[O, V] {
	b.exclusive = true
	return b
}

// WithHook attaches a hook to the built accessor.
func (b Builder[O, V]) WithHook(hook hooking.Hook) Builder[O, V] {
	hooks := make([]hooking.Hook, 0, len(b.hooks)+1)
	hooks = append(hooks, b.hooks...)
	b.hooks = append(hooks, hook)

	return b
}

// Build creates the accessor for the attribute name. The getter is not
// called until the first read.
func (b Builder[O, V]) Build(name string, getter Getter[O, V]) *Accessor[O, V] {
	b.mustBeValid(name, getter)

	a := &Accessor[O, V]{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		key:          PrivateKey(name),
		getter:       getter,
		settable:     b.settable,
		deletable:    b.deletable,
		scope:        b.scope,
		exclusive:    b.exclusive,
	}

	a.store = b.buildStore(a.key)

	for _, h := range b.hooks {
		a.AcceptHook(h)
	}

	return a
}

func (b Builder[O, V]) buildStore(key string) store[O, V] {
	if b.scope == ScopeClass {
		return newClassStore[O, V]()
	}

	if b.locate != nil {
		return fieldStore[O, V]{locate: b.locate}
	}

	return attrStore[O, V]{key: key}
}

func (b Builder[O, V]) mustBeValid(name string, getter Getter[O, V]) {
	if name == "" {
		panic("accessor name must be set")
	}

	if getter == nil {
		panic(fmt.Sprintf("getter of %q must be set", name))
	}

	switch b.scope {
	case ScopeInstance:
		if b.locate == nil && !ownerIsHolder[O]() {
			panic(fmt.Sprintf(
				"owner type %s of %q must implement memoprop.Holder "+
					"or a slot must be given with WithSlot",
				reflect.TypeOf((*O)(nil)).Elem(), name))
		}
	case ScopeClass:
		if b.locate != nil {
			panic(fmt.Sprintf(
				"%q is class scoped and cannot use a per-instance slot", name))
		}
	default:
		panic(fmt.Sprintf("unknown scope %d for %q", b.scope, name))
	}
}

func ownerIsHolder[O any]() bool {
	return reflect.TypeOf((*O)(nil)).Elem().Implements(reflect.TypeOf((*Holder)(nil)).Elem())
}
