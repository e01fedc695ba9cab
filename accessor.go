package memoprop

import (
	"fmt"
	"sync"

	"github.com/sarchlab/memoprop/hooking"
	"golang.org/x/sync/singleflight"
)

// Getter computes the value of an attribute for an owner.
type Getter[O, V any] func(owner O) (V, error)

// Func turns a getter that cannot fail into a Getter.
func Func[O, V any](f func(owner O) V) Getter[O, V] {
	return func(owner O) (V, error) {
		return f(owner), nil
	}
}

// Accessor is a memoized computed attribute of owners of type O with values
// of type V. Its configuration is fixed when it is built; only the cache
// slots it manages change.
type Accessor[O, V any] struct {
	*hooking.HookableBase

	name      string
	key       string
	getter    Getter[O, V]
	settable  bool
	deletable bool
	scope     Scope
	exclusive bool

	store store[O, V]
	lock  sync.Mutex
	fills singleflight.Group
}

// Name returns the attribute name.
func (a *Accessor[O, V]) Name() string {
	return a.name
}

// Key returns the private key the cached value is stored under.
func (a *Accessor[O, V]) Key() string {
	return a.key
}

// Settable reports whether Set is allowed.
func (a *Accessor[O, V]) Settable() bool {
	return a.settable
}

// Deletable reports whether Delete is allowed.
func (a *Accessor[O, V]) Deletable() bool {
	return a.deletable
}

// Scope returns whether values are cached per instance or per type.
func (a *Accessor[O, V]) Scope() Scope {
	return a.scope
}

// Exclusive reports whether concurrent misses are collapsed into a single
// getter call.
func (a *Accessor[O, V]) Exclusive() bool {
	return a.exclusive
}

// Get returns the cached value for owner. If the slot is absent, the getter
// is called once and its result is stored the same way Set stores a value.
// A getter error is returned as is and leaves the slot absent.
func (a *Accessor[O, V]) Get(owner O) (V, error) {
	if v, ok := a.load(owner); ok {
		a.invoke(HookPosHit, Access{Owner: owner, Value: v})
		return v, nil
	}

	if a.exclusive {
		return a.fillExclusive(owner)
	}

	return a.fill(owner)
}

// MustGet is like Get but panics if the getter fails.
func (a *Accessor[O, V]) MustGet(owner O) V {
	v, err := a.Get(owner)
	if err != nil {
		panic(fmt.Sprintf("memoprop: getter of %q failed: %v", a.name, err))
	}

	return v
}

// Set overwrites the cached value for owner. It returns ErrNotWritable if
// the accessor is not settable.
func (a *Accessor[O, V]) Set(owner O, v V) error {
	if !a.settable {
		return attrError(ErrNotWritable, a.name)
	}

	a.write(owner, v, false)

	return nil
}

// Delete clears the cached value for owner so that the next Get calls the
// getter again. It returns ErrNotDeletable if the accessor is not deletable
// and ErrNotPopulated if there is no cached value to clear.
func (a *Accessor[O, V]) Delete(owner O) error {
	if !a.deletable {
		return attrError(ErrNotDeletable, a.name)
	}

	if !a.clear(owner) {
		return attrError(ErrNotPopulated, a.name)
	}

	a.invoke(HookPosClear, Access{Owner: owner})

	return nil
}

// Cached reports whether owner has a cached value, without calling the
// getter or any hook.
func (a *Accessor[O, V]) Cached(owner O) bool {
	_, ok := a.load(owner)
	return ok
}

func (a *Accessor[O, V]) fill(owner O) (V, error) {
	a.invoke(HookPosMiss, Access{Owner: owner})

	v, err := a.getter(owner)
	if err != nil {
		a.invoke(HookPosGetterError, Access{Owner: owner, Err: err})

		var zero V

		return zero, err
	}

	a.write(owner, v, true)

	if stored, ok := a.load(owner); ok {
		return stored, nil
	}

	return v, nil
}

// fillExclusive lets only one goroutine per slot run the getter. The others
// wait for and share its result.
func (a *Accessor[O, V]) fillExclusive(owner O) (V, error) {
	res, err, _ := a.fills.Do(a.store.id(owner), func() (any, error) {
		if v, ok := a.load(owner); ok {
			a.invoke(HookPosHit, Access{Owner: owner, Value: v})
			return v, nil
		}

		return a.fill(owner)
	})
	if err != nil {
		var zero V
		return zero, err
	}

	v, _ := res.(V)

	return v, nil
}

func (a *Accessor[O, V]) write(owner O, v V, fill bool) {
	a.save(owner, v)
	a.invoke(HookPosWrite, Access{Owner: owner, Value: v, Fill: fill})
}

func (a *Accessor[O, V]) load(owner O) (V, bool) {
	if a.exclusive {
		a.lock.Lock()
		defer a.lock.Unlock()
	}

	return a.store.load(owner)
}

func (a *Accessor[O, V]) save(owner O, v V) {
	if a.exclusive {
		a.lock.Lock()
		defer a.lock.Unlock()
	}

	a.store.save(owner, v)
}

func (a *Accessor[O, V]) clear(owner O) bool {
	if a.exclusive {
		a.lock.Lock()
		defer a.lock.Unlock()
	}

	return a.store.clear(owner)
}

func (a *Accessor[O, V]) invoke(pos *hooking.HookPos, access Access) {
	if a.NumHooks() == 0 {
		return
	}

	access.Attr = a.name
	access.Key = a.key
	access.Scope = a.scope

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    pos,
		Item:   access,
	})
}
