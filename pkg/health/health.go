// Package health exposes Kubernetes-style liveness and readiness probes.
//
// Registered probes run in the background and keep a cached verdict, so the
// HTTP endpoints never execute a check inline. Verdicts use consecutive
// failure/success thresholds to avoid flapping on a single slow poll.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports the health of one component. Nil means healthy.
type CheckFunc func(ctx context.Context) error

// Probe thresholds. A probe flips to failing only after failAfter
// consecutive errors, and back to passing after one success.
const (
	failAfter = 3
	passAfter = 1
)

// probe is one registered check plus its cached verdict. observe is called
// only from the scheduler goroutine, so the consecutive counters need no
// locking; passing and lastErr are read by the HTTP endpoints.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	passing atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func (p *probe) observe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(ctx)
	p.lastErr.Store(&err)

	if err != nil {
		p.oks = 0
		if p.fails++; p.fails >= failAfter {
			p.passing.Store(false)
		}
		return
	}
	p.fails = 0
	if p.oks++; p.oks >= passAfter {
		p.passing.Store(true)
	}
}

func (p *probe) failure() string {
	if p.passing.Load() {
		return ""
	}
	if errp := p.lastErr.Load(); errp != nil && *errp != nil {
		return (*errp).Error()
	}
	return "check is unhealthy"
}

// Service runs the registered probes and serves their verdicts. The zero
// state is not ready; call SetReady(true) once initialization completes and
// SetReady(false) to drain during shutdown.
type Service struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New creates an empty probe service.
func New() *Service {
	return &Service{}
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	p := &probe{name: name, timeout: timeout, check: check}
	p.passing.Store(true) // assume passing until observed otherwise
	return p
}

// AddLivenessCheck registers a process-health probe (goroutine leaks,
// deadlocks). A failing liveness probe asks the orchestrator to restart us.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a traffic-worthiness probe (database
// connectivity, dependency availability). A failing readiness probe only
// removes us from load balancing.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, newProbe(name, timeout, check))
}

// Start launches one scheduler goroutine that observes every registered
// probe at the given interval, beginning immediately. Register all probes
// before calling Start.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	probes := make([]*probe, 0, len(s.liveness)+len(s.readiness))
	probes = append(probes, s.liveness...)
	probes = append(probes, s.readiness...)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			for _, p := range probes {
				p.observe(ctx)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop cancels the scheduler. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// is passing.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}
	s.mu.Lock()
	probes := s.readiness
	s.mu.Unlock()

	for _, p := range probes {
		if !p.passing.Load() {
			return false
		}
	}
	return true
}

// statusResponse is the JSON body of both endpoints.
type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} while every liveness
// probe passes, 503 with the failing checks otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	probes := append([]*probe(nil), s.liveness...)
	s.mu.Unlock()

	writeVerdict(w, failures(probes))
}

// ReadyEndpoint serves /readyz: 200 only when the manual gate is open and
// every readiness probe passes.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	ready := s.ready.Load()

	s.mu.Lock()
	probes := append([]*probe(nil), s.readiness...)
	s.mu.Unlock()

	failing := failures(probes)
	if !ready {
		failing["_readiness"] = "service is not ready"
	}
	writeVerdict(w, failing)
}

func failures(probes []*probe) map[string]string {
	failing := make(map[string]string)
	for _, p := range probes {
		if msg := p.failure(); msg != "" {
			failing[p.name] = msg
		}
	}
	return failing
}

func writeVerdict(w http.ResponseWriter, failing map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failing) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failing
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
