package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/memoprop"
	"github.com/sarchlab/memoprop/hooking"
)

var _ = Describe("CountTracer", func() {
	var (
		tracer *CountTracer
		src    *source
		attr   *memoprop.Accessor[*owner, int]
	)

	BeforeEach(func() {
		tracer = NewCountTracer()
		src = &source{}
		attr = memoprop.MakeBuilder[*owner, int]().
			WithSettable(true).
			WithHook(tracer).
			Build("value", src.get)
	})

	It("should count reads, fills, writes and clears", func() {
		o := &owner{}

		_, _ = attr.Get(o)
		_, _ = attr.Get(o)
		Expect(attr.Set(o, 7)).To(Succeed())
		Expect(attr.Delete(o)).To(Succeed())
		_, _ = attr.Get(o)

		Expect(tracer.Stats()).To(Equal(Stats{
			Hits:   1,
			Misses: 2,
			Fills:  2,
			Writes: 1,
			Clears: 1,
		}))
		Expect(tracer.Count(memoprop.HookPosWrite)).To(Equal(uint64(3)))
		Expect(tracer.GetterCalls()).To(Equal(uint64(2)))
		Expect(tracer.PosNames()).To(Equal([]string{
			"Miss", "Write", "Hit", "Clear",
		}))
	})

	It("should count getter errors", func() {
		src.fail = true

		_, err := attr.Get(&owner{})

		Expect(err).To(MatchError(errBoom))
		Expect(tracer.Stats().GetterErrors).To(Equal(uint64(1)))
		Expect(tracer.Stats().Fills).To(BeZero())
	})

	It("should ignore hooks that do not carry an access", func() {
		tracer.Func(hooking.HookCtx{
			Pos:  &hooking.HookPos{Name: "Other"},
			Item: "not an access",
		})

		Expect(tracer.PosNames()).To(BeEmpty())
	})
})
