// Package tracing provides hooks that observe memoized accessors.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/memoprop"
	"github.com/sarchlab/memoprop/hooking"
)

// accessOf extracts the access event carried by ctx. Hooks raised by anything
// other than an accessor are ignored by every tracer in this package.
func accessOf(ctx hooking.HookCtx) (memoprop.Access, bool) {
	if ctx.Pos == nil {
		return memoprop.Access{}, false
	}

	access, ok := ctx.Item.(memoprop.Access)

	return access, ok
}

// DescribeOwner renders an owner as its dynamic type, followed by its address
// when the owner is a pointer so that instances can be told apart.
func DescribeOwner(owner any) string {
	if owner == nil {
		return "<nil>"
	}

	v := reflect.ValueOf(owner)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		return fmt.Sprintf("%T@%p", owner, owner)
	}

	return fmt.Sprintf("%T", owner)
}
