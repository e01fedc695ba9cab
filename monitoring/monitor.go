// Package monitoring serves the state of memoized accessors over HTTP.
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/sarchlab/memoprop"
	"github.com/sarchlab/memoprop/hooking"
	"github.com/sarchlab/memoprop/monitoring/web"
	"github.com/sarchlab/memoprop/tracing"
	"github.com/shirou/gopsutil/process"
)

// Subject is an accessor that can be monitored. *memoprop.Accessor
// satisfies it for every owner and value type.
type Subject interface {
	hooking.Hookable

	Name() string
	Key() string
	Scope() memoprop.Scope
	Settable() bool
	Deletable() bool
	Exclusive() bool
}

type registration struct {
	subject Subject
	counter *tracing.CountTracer
}

// Monitor turns a program that uses memoized accessors into a server that
// reports how the accessors are used.
type Monitor struct {
	portNumber int
	logger     zerolog.Logger

	lock       sync.Mutex
	registered map[string]registration
	server     *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		logger:     zerolog.Nop(),
		registered: make(map[string]registration),
	}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// replaced by a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 && portNumber != 0 {
		m.logger.Warn().
			Int("port", portNumber).
			Msg("port not allowed for the monitoring server, using a random port")

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger used for server events.
func (m *Monitor) WithLogger(logger zerolog.Logger) *Monitor {
	m.logger = logger
	return m
}

// RegisterAccessor attaches a counter to the accessor and starts reporting
// it. It must be called before the accessor is shared between goroutines.
// It panics if an accessor with the same name is already registered.
func (m *Monitor) RegisterAccessor(s Subject) *tracing.CountTracer {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, exists := m.registered[s.Name()]; exists {
		panic(fmt.Sprintf("accessor %s already registered", s.Name()))
	}

	counter := tracing.NewCountTracer()
	s.AcceptHook(counter)

	m.registered[s.Name()] = registration{subject: s, counter: counter}

	return counter
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the router serving the monitor API and web page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/accessors", m.listAccessors).Methods(http.MethodGet)
	r.HandleFunc("/api/accessor/{name}", m.accessorDetails).
		Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// monitor.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", m.portNumber))
	if err != nil {
		return "", errors.Wrap(err, "listen")
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	server := &http.Server{Handler: m.Handler()}

	m.lock.Lock()
	m.server = server
	m.lock.Unlock()

	m.logger.Info().Str("url", url).Msg("monitoring accessors")

	go func() {
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().Err(err).Msg("monitoring server stopped")
		}
	}()

	return url, nil
}

// Shutdown stops a server started by StartServer.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.lock.Lock()
	server := m.server
	m.server = nil
	m.lock.Unlock()

	if server == nil {
		return nil
	}

	return server.Shutdown(ctx)
}

type accessorRsp struct {
	Name      string        `json:"name"`
	Key       string        `json:"key"`
	Scope     string        `json:"scope"`
	Settable  bool          `json:"settable"`
	Deletable bool          `json:"deletable"`
	Exclusive bool          `json:"exclusive"`
	Stats     tracing.Stats `json:"stats"`
}

func describe(r registration) accessorRsp {
	return accessorRsp{
		Name:      r.subject.Name(),
		Key:       r.subject.Key(),
		Scope:     r.subject.Scope().String(),
		Settable:  r.subject.Settable(),
		Deletable: r.subject.Deletable(),
		Exclusive: r.subject.Exclusive(),
		Stats:     r.counter.Stats(),
	}
}

func (m *Monitor) listAccessors(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	rsp := make([]accessorRsp, 0, len(m.registered))
	for _, r := range m.registered {
		rsp = append(rsp, describe(r))
	}
	m.lock.Unlock()

	sort.Slice(rsp, func(i, j int) bool { return rsp[i].Name < rsp[j].Name })

	m.writeJSON(w, rsp)
}

func (m *Monitor) accessorDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m.lock.Lock()
	reg, found := m.registered[name]
	m.lock.Unlock()

	if !found {
		http.Error(w, "Accessor not found", http.StatusNotFound)
		return
	}

	m.writeJSON(w, describe(reg))
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	rsp, err := currentResources()
	if err != nil {
		m.logger.Error().Err(err).Msg("read process resources")
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	m.writeJSON(w, rsp)
}

func currentResources() (resourceRsp, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return resourceRsp{}, errors.Wrap(err, "find process")
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return resourceRsp{}, errors.Wrap(err, "read cpu usage")
	}

	memoryInfo, err := p.MemoryInfo()
	if err != nil {
		return resourceRsp{}, errors.Wrap(err, "read memory usage")
	}

	return resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	}, nil
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		m.logger.Error().Err(err).Msg("encode response")
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(bytes); err != nil {
		m.logger.Debug().Err(err).Msg("write response")
	}
}
