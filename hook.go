package memoprop

import "github.com/sarchlab/memoprop/hooking"

// HookPosHit marks a read served from the cache.
var HookPosHit = &hooking.HookPos{Name: "Hit"}

// HookPosMiss marks a read that found the slot absent, before the getter runs.
var HookPosMiss = &hooking.HookPos{Name: "Miss"}

// HookPosWrite marks a value stored into a slot, either by an explicit Set or
// by populating the slot after a miss.
var HookPosWrite = &hooking.HookPos{Name: "Write"}

// HookPosClear marks a slot cleared by Delete.
var HookPosClear = &hooking.HookPos{Name: "Clear"}

// HookPosGetterError marks a getter that failed. The slot stays absent.
var HookPosGetterError = &hooking.HookPos{Name: "GetterError"}

// Access is the Item of every HookCtx raised by an Accessor.
type Access struct {
	// Attr is the attribute name.
	Attr string

	// Key is the private slot key derived from Attr.
	Key string

	Scope Scope

	// Owner is the instance the operation was performed on. In class scope
	// the cache is keyed by its dynamic type.
	Owner any

	// Value is the value read, written, or nil for misses and clears.
	Value any

	// Err is the getter error at HookPosGetterError.
	Err error

	// Fill is true when a write populates the slot after a miss rather than
	// coming from Set.
	Fill bool
}
