package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/memoprop"
	"github.com/sarchlab/memoprop/examples/deepthought"
)

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		oracle *deepthought.Oracle
		answer *memoprop.Accessor[*deepthought.DeepThought, int]
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.Handler().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		m = NewMonitor()
		oracle = deepthought.NewOracle()
		answer = deepthought.NewAnswer(deepthought.DefaultOptions(), oracle)
	})

	It("should attach a counter to registered accessors", func() {
		counter := m.RegisterAccessor(answer)
		dt := deepthought.New("dt")

		_, _ = answer.Get(dt)
		_, _ = answer.Get(dt)

		Expect(answer.NumHooks()).To(Equal(1))
		Expect(counter.Stats().Hits).To(Equal(uint64(1)))
		Expect(counter.Stats().Fills).To(Equal(uint64(1)))
	})

	It("should panic when a name is registered twice", func() {
		m.RegisterAccessor(answer)
		other := deepthought.NewAnswer(deepthought.DefaultOptions(), oracle)

		Expect(func() { m.RegisterAccessor(other) }).To(Panic())
	})

	It("should list accessors", func() {
		m.RegisterAccessor(answer)
		dt := deepthought.New("dt")
		_, _ = answer.Get(dt)
		Expect(answer.Delete(dt)).To(Succeed())

		rec := get("/api/accessors")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

		var rsp []accessorRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Name).To(Equal("answer"))
		Expect(rsp[0].Key).To(Equal("_answer"))
		Expect(rsp[0].Scope).To(Equal("instance"))
		Expect(rsp[0].Settable).To(BeFalse())
		Expect(rsp[0].Deletable).To(BeTrue())
		Expect(rsp[0].Stats.Misses).To(Equal(uint64(1)))
		Expect(rsp[0].Stats.Clears).To(Equal(uint64(1)))
	})

	It("should describe one accessor", func() {
		m.RegisterAccessor(answer)

		rec := get("/api/accessor/answer")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var rsp accessorRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Name).To(Equal("answer"))
	})

	It("should return 404 for unknown accessors", func() {
		rec := get("/api/accessor/question")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("reads", 10)
		bar.IncrementInProgress(4)
		bar.MoveInProgressToFinished(3)
		done := m.CreateProgressBar("done", 1)
		m.CompleteProgressBar(done)

		rec := get("/api/progress")

		var rsp []progressBarRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Name).To(Equal("reads"))
		Expect(rsp[0].Total).To(Equal(uint64(10)))
		Expect(rsp[0].Finished).To(Equal(uint64(3)))
		Expect(rsp[0].InProgress).To(Equal(uint64(1)))
	})

	It("should report process resources", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the web page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should replace reserved ports with a random one", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should serve over HTTP until shut down", func() {
		m.RegisterAccessor(answer)

		url, err := m.StartServer()
		Expect(err).ToNot(HaveOccurred())

		rsp, err := http.Get(url + "/api/accessor/answer")
		Expect(err).ToNot(HaveOccurred())
		body, err := io.ReadAll(rsp.Body)
		rsp.Body.Close()
		Expect(err).ToNot(HaveOccurred())
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring(`"name":"answer"`))

		Expect(m.Shutdown(context.Background())).To(Succeed())
		Expect(m.Shutdown(context.Background())).To(Succeed())
	})
})
