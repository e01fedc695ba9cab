// Package memoprop provides memoized accessors: computed attributes whose
// getter runs at most once per owner, or once per owner type in class scope.
//
// An accessor is declared once per attribute, usually as a package-level
// variable next to the owner type, and the owner's methods forward to it:
//
//	type DeepThought struct {
//		answer memoprop.Slot[int]
//	}
//
//	var answer = memoprop.MakeBuilder[*DeepThought, int]().
//		WithSlot(func(d *DeepThought) *memoprop.Slot[int] { return &d.answer }).
//		Build("answer", memoprop.Func((*DeepThought).compute))
//
//	func (d *DeepThought) Answer() int { return answer.MustGet(d) }
//
// Reads populate the cache on a miss, writes overwrite it when the accessor
// is settable, and deletes clear it when the accessor is deletable.
package memoprop
