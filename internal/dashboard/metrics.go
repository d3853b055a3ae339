package dashboard

import (
	"sync"
	"time"
)

// Metrics counts what the server's sessions have done since start.
type Metrics struct {
	mu sync.RWMutex

	startedAt      time.Time
	sessionsOpened int64
	sessionsActive int64
	layoutPasses   int64
	failedResizes  int64
	clicks         int64
	navigations    int64
	lastPass       *LayoutCommand
}

// MetricsSnapshot is the JSON view served at /api/metrics.
type MetricsSnapshot struct {
	Uptime         string         `json:"uptime"`
	SessionsOpened int64          `json:"sessions_opened"`
	SessionsActive int64          `json:"sessions_active"`
	LayoutPasses   int64          `json:"layout_passes"`
	FailedResizes  int64          `json:"failed_resizes"`
	Clicks         int64          `json:"clicks"`
	Navigations    int64          `json:"navigations"`
	LastPass       *LayoutCommand `json:"last_pass,omitempty"`
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{startedAt: time.Now()}
}

func (m *Metrics) sessionOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsOpened++
	m.sessionsActive++
}

func (m *Metrics) sessionClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsActive--
}

func (m *Metrics) layoutDone(cmd LayoutCommand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layoutPasses++
	m.failedResizes += int64(cmd.Failed)
	m.lastPass = &cmd
}

func (m *Metrics) clicked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks++
}

func (m *Metrics) navigated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigations++
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		Uptime:         time.Since(m.startedAt).Round(time.Second).String(),
		SessionsOpened: m.sessionsOpened,
		SessionsActive: m.sessionsActive,
		LayoutPasses:   m.layoutPasses,
		FailedResizes:  m.failedResizes,
		Clicks:         m.clicks,
		Navigations:    m.navigations,
	}
	if m.lastPass != nil {
		last := *m.lastPass
		snap.LastPass = &last
	}
	return snap
}
