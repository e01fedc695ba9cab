package memoprop

import (
	"strings"

	"github.com/pkg/errors"
)

// Scope selects what a cached value is keyed by.
type Scope int

// Supported scopes.
const (
	// ScopeInstance keeps one cached value per owner instance.
	ScopeInstance Scope = iota

	// ScopeClass keeps one cached value per dynamic owner type, shared by all
	// instances of that type.
	ScopeClass
)

func (s Scope) String() string {
	switch s {
	case ScopeInstance:
		return "instance"
	case ScopeClass:
		return "class"
	default:
		return "unknown"
	}
}

// ParseScope converts "instance" or "class" to a Scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "instance":
		return ScopeInstance, nil
	case "class":
		return ScopeClass, nil
	default:
		return ScopeInstance, errors.Errorf("unknown scope %q", s)
	}
}
