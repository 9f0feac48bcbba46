// Package monitoring serves the operational surface of a demo or verification
// run: liveness, a status snapshot, and the Prometheus metrics endpoint.
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/logger"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status is the snapshot served at /status.
type Status struct {
	Status     string        `json:"status"`
	Timestamp  time.Time     `json:"timestamp"`
	Uptime     time.Duration `json:"uptime"`
	Mode       string        `json:"mode"`
	Encodes    int64         `json:"encodes"`
	ParityRuns int           `json:"parity_runs"`
	ParityPass bool          `json:"parity_pass"`
	System     SystemInfo    `json:"system"`
}

// SystemInfo carries host-level context for the snapshot.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	NumCPU       int    `json:"num_cpu"`
	MemoryUsedMB int    `json:"memory_used_mb"`
}

// Monitor tracks run state and serves the HTTP endpoints.
type Monitor struct {
	startTime time.Time
	mode      string
	server    *http.Server

	mu         sync.RWMutex
	parityRuns int
	parityPass bool
}

func New(mode string) *Monitor {
	return &Monitor{
		startTime:  time.Now(),
		mode:       mode,
		parityPass: true, // no run yet means nothing has failed
	}
}

// RecordParity notes the outcome of one parity verification run. A failed run
// flips /health to unhealthy until a passing run supersedes it.
func (m *Monitor) RecordParity(pass bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parityRuns++
	m.parityPass = pass
}

// Start serves /health, /status and /metrics until Stop. Blocks.
func (m *Monitor) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", m.handleHealth)
	mux.HandleFunc("/healthz", m.handleHealth)
	mux.HandleFunc("/status", m.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())

	m.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Log.Info("monitor serving", "addr", addr)
	return m.server.ListenAndServe()
}

func (m *Monitor) Stop(ctx context.Context) error {
	if m.server != nil {
		return m.server.Shutdown(ctx)
	}
	return nil
}

func (m *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := m.snapshot()
	if st.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]string{
		"status":    st.Status,
		"timestamp": st.Timestamp.Format(time.RFC3339),
	})
}

func (m *Monitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.snapshot())
}

func (m *Monitor) snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := "healthy"
	if !m.parityPass {
		status = "degraded"
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return Status{
		Status:     status,
		Timestamp:  time.Now(),
		Uptime:     time.Since(m.startTime),
		Mode:       m.mode,
		Encodes:    metrics.TotalEncodes(),
		ParityRuns: m.parityRuns,
		ParityPass: m.parityPass,
		System: SystemInfo{
			GoVersion:    runtime.Version(),
			OS:           runtime.GOOS,
			Arch:         runtime.GOARCH,
			NumCPU:       runtime.NumCPU(),
			MemoryUsedMB: int(ms.Alloc / 1024 / 1024),
		},
	}
}
