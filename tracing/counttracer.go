package tracing

import (
	"sync"

	"github.com/sarchlab/memoprop"
	"github.com/sarchlab/memoprop/hooking"
)

// Stats summarizes what happened to the slots of one accessor.
type Stats struct {
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	Fills        uint64 `json:"fills"`
	Writes       uint64 `json:"writes"`
	Clears       uint64 `json:"clears"`
	GetterErrors uint64 `json:"getter_errors"`
}

// CountTracer counts accessor events by hook position.
type CountTracer struct {
	lock   sync.Mutex
	names  []string
	counts map[string]uint64
	stats  Stats
}

// NewCountTracer creates a new CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{
		counts: make(map[string]uint64),
	}
}

// Func records one event.
func (t *CountTracer) Func(ctx hooking.HookCtx) {
	access, ok := accessOf(ctx)
	if !ok {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if _, seen := t.counts[ctx.Pos.Name]; !seen {
		t.names = append(t.names, ctx.Pos.Name)
	}
	t.counts[ctx.Pos.Name]++

	switch ctx.Pos {
	case memoprop.HookPosHit:
		t.stats.Hits++
	case memoprop.HookPosMiss:
		t.stats.Misses++
	case memoprop.HookPosWrite:
		if access.Fill {
			t.stats.Fills++
		} else {
			t.stats.Writes++
		}
	case memoprop.HookPosClear:
		t.stats.Clears++
	case memoprop.HookPosGetterError:
		t.stats.GetterErrors++
	}
}

// PosNames returns the names of the positions seen so far, in the order they
// were first seen.
func (t *CountTracer) PosNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.names))
	copy(names, t.names)

	return names
}

// Count returns how many times pos has fired.
func (t *CountTracer) Count(pos *hooking.HookPos) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.counts[pos.Name]
}

// Stats returns a snapshot of the counters.
func (t *CountTracer) Stats() Stats {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stats
}

// GetterCalls is the number of times the getter ran, successful or not.
func (t *CountTracer) GetterCalls() uint64 {
	return t.Count(memoprop.HookPosMiss)
}
