// Package monitoring serves a read-only view of a running simulation over
// HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/vtolsim/monitoring/web"
	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/sim/naming"
)

// Station is the charging station view that the monitor can report.
type Station interface {
	naming.Named

	NumBays() int
	Charging() []sim.Chargeable
	Waiting() []sim.Chargeable
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// Monitor can turn a simulation into a server and allows external monitoring
// of the simulation.
type Monitor struct {
	lock        sync.Locker
	timeTeller  hooking.TimeTeller
	components  []naming.Named
	station     Station
	portNumber  int
	openBrowser bool
	logger      zerolog.Logger

	server   *http.Server
	listener net.Listener

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		lock:   noLock{},
		logger: zerolog.Nop(),
	}
}

// WithPortNumber sets the port number of the monitor. Port 0 selects a free
// port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.logger.Warn().
			Int("port", portNumber).
			Msg("port number not allowed for monitoring, using a random port")

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(logger zerolog.Logger) *Monitor {
	m.logger = logger
	return m
}

// WithBrowser makes the monitor open the dashboard in a web browser when
// the server starts.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterLock sets the lock that guards the simulation state. The monitor
// holds it while reading components.
func (m *Monitor) RegisterLock(l sync.Locker) {
	m.lock = l
}

// RegisterTimeTeller sets where the monitor reads the virtual time.
func (m *Monitor) RegisterTimeTeller(t hooking.TimeTeller) {
	m.timeTeller = t
}

// RegisterComponent register a component to be monitored.
func (m *Monitor) RegisterComponent(c naming.Named) {
	m.components = append(m.components, c)
}

// RegisterStation registers the charging station. It is also listed as a
// component.
func (m *Monitor) RegisterStation(s Station) {
	m.station = s
	m.RegisterComponent(s)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := newProgressBar(name, total)

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

// Handler returns the HTTP routes of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/station", m.reportStation)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background.
func (m *Monitor) StartServer() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", m.portNumber))
	if err != nil {
		return fmt.Errorf("cannot start monitoring server: %w", err)
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.logger.Info().Str("url", m.URL()).Msg("monitoring simulation")

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().Err(err).Msg("monitoring server stopped")
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(m.URL()); err != nil {
			m.logger.Warn().Err(err).Msg("cannot open browser")
		}
	}

	return nil
}

// URL returns the address of the dashboard. It is empty before the server
// starts.
func (m *Monitor) URL() string {
	if m.listener == nil {
		return ""
	}

	return fmt.Sprintf("http://localhost:%d",
		m.listener.Addr().(*net.TCPAddr).Port)
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		m.logger.Error().Err(err).Msg("cannot write response")
	}
}

func (m *Monitor) fail(w http.ResponseWriter, status int, err error) {
	m.logger.Debug().Err(err).Int("status", status).Msg("monitor request failed")
	http.Error(w, err.Error(), status)
}

type nowRsp struct {
	Now sim.VTimeInMs `json:"now"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	if m.timeTeller == nil {
		m.fail(w, http.StatusServiceUnavailable,
			errors.New("no time teller registered"))
		return
	}

	m.writeJSON(w, nowRsp{Now: m.timeTeller.Now()})
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	m.writeJSON(w, names)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) naming.Named {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	m.fail(w, http.StatusNotFound,
		fmt.Errorf("component %s not found", name))

	return nil
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	m.serializeComponent(w, component, nil)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		m.fail(w, http.StatusBadRequest, err)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	m.serializeComponent(w, component, strings.Split(req.FieldName, "."))
}

func (m *Monitor) serializeComponent(
	w http.ResponseWriter,
	component naming.Named,
	entryPoint []string,
) {
	buf := new(bytes.Buffer)

	m.lock.Lock()
	err := func() error {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)

		if entryPoint != nil {
			if err := serializer.SetEntryPoint(entryPoint); err != nil {
				return err
			}
		}

		return serializer.Serialize(buf)
	}()
	m.lock.Unlock()

	if err != nil {
		m.fail(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

type stationRsp struct {
	Name     string   `json:"name"`
	NumBays  int      `json:"num_bays"`
	Charging []string `json:"charging"`
	Waiting  []string `json:"waiting"`
}

func deviceNames(devices []sim.Chargeable) []string {
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, naming.NameOf(d))
	}

	return names
}

func (m *Monitor) reportStation(w http.ResponseWriter, _ *http.Request) {
	if m.station == nil {
		m.fail(w, http.StatusNotFound, errors.New("no station registered"))
		return
	}

	m.lock.Lock()
	rsp := stationRsp{
		Name:     m.station.Name(),
		NumBays:  m.station.NumBays(),
		Charging: deviceNames(m.station.Charging()),
		Waiting:  deviceNames(m.station.Waiting()),
	}
	m.lock.Unlock()

	m.writeJSON(w, rsp)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.status())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		m.fail(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	m.writeJSON(w, prof)
}
