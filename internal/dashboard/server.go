package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"cardgrid/internal/chart"
	"cardgrid/internal/grid"
	logpkg "cardgrid/internal/log"
	"cardgrid/internal/navigation"
	"cardgrid/internal/slug"
)

// DefaultContainerID is the id of the element that hosts the grid.
const DefaultContainerID = "plot-container"

// DefaultPlotlyURL is the charting library loaded by the page.
const DefaultPlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// DefaultDebounce is the quiet period applied to resize notifications.
const DefaultDebounce = 120 * time.Millisecond

// webFiles will be injected from main package
var webFiles fs.FS

// SetWebFiles sets the embedded web files
func SetWebFiles(files fs.FS) {
	webFiles = files
}

// Config holds server settings.
type Config struct {
	Port        int
	Title       string
	ContainerID string
	PlotlyURL   string
	Debounce    time.Duration
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Dashboard"
	}
	if c.ContainerID == "" {
		c.ContainerID = DefaultContainerID
	}
	if c.PlotlyURL == "" {
		c.PlotlyURL = DefaultPlotlyURL
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
}

// Server serves the dashboard page and drives one Session per open page.
type Server struct {
	cfg      Config
	router   *mux.Router
	server   *http.Server
	upgrader websocket.Upgrader
	page     *template.Template
	log      logpkg.Logger

	charts  chart.Set
	specs   []chart.RenderSpec
	metrics *Metrics

	sessions   map[string]*Session
	sessionsMu sync.RWMutex
}

// NewServer builds every chart spec up front and prepares the routes.
func NewServer(cfg Config, charts chart.Set, l logpkg.Logger) (*Server, error) {
	cfg.applyDefaults()
	if l == nil {
		l = logpkg.Global()
	}
	if webFiles == nil {
		return nil, errors.New("web files not set")
	}

	content, err := fs.ReadFile(webFiles, "web/templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard template: %w", err)
	}
	page, err := template.New("dashboard").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		page:     page,
		log:      l,
		charts:   charts,
		specs:    chart.BuildAll(charts),
		metrics:  NewMetrics(),
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() error {
	staticFS, err := fs.Sub(webFiles, "web/static")
	if err != nil {
		return fmt.Errorf("failed to create static files sub-filesystem: %w", err)
	}
	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/",
		http.FileServer(http.FS(staticFS))))

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/charts", s.handleCharts).Methods(http.MethodGet)
	api.HandleFunc("/layout", s.handleLayout).Methods(http.MethodGet)
	api.HandleFunc("/resolve", s.handleResolve).Methods(http.MethodGet)
	api.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	return nil
}

// Start listens on the configured port until Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	s.log.Info("dashboard server starting", "url", fmt.Sprintf("http://localhost:%d", s.cfg.Port), "charts", len(s.charts))
	return s.server.ListenAndServe()
}

// Stop closes every session and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.sessionsMu.Lock()
	for _, sess := range s.sessions {
		sess.Close()
	}
	s.sessionsMu.Unlock()

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// SessionCount returns the number of open pages.
func (s *Server) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

// chartView is the JSON form of one chart.
type chartView struct {
	Key        string           `json:"key"`
	Name       string           `json:"name"`
	Slug       string           `json:"slug"`
	ShowLegend bool             `json:"show_legend"`
	Spec       chart.RenderSpec `json:"spec"`
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	views := make([]chartView, 0, len(s.charts))
	for i, e := range s.charts {
		views = append(views, chartView{
			Key:        e.Key,
			Name:       e.Config.Name,
			Slug:       slug.Slugify(e.Config.Name),
			ShowLegend: s.specs[i].ShowLegend(),
			Spec:       s.specs[i],
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	width, err := strconv.ParseFloat(r.URL.Query().Get("width"), 64)
	if err != nil {
		http.Error(w, "width must be a number", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, grid.Plan(width))
}

type resolveResponse struct {
	URL       string `json:"url,omitempty"`
	Navigates bool   `json:"navigates"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	idx := -1
	for i, e := range s.charts {
		if e.Key == q.Get("chart") {
			idx = i
			break
		}
	}
	if idx < 0 {
		http.Error(w, "unknown chart", http.StatusNotFound)
		return
	}
	slice, err := strconv.Atoi(q.Get("index"))
	if err != nil {
		http.Error(w, "index must be an integer", http.StatusBadRequest)
		return
	}
	label := q.Get("label")
	if label == "" && slice >= 0 && slice < len(s.specs[idx].Labels) {
		label = s.specs[idx].Labels[slice]
	}

	dest, ok := navigation.Resolve(s.specs[idx], navigation.ClickEvent{SliceIndex: slice, Label: label})
	writeJSON(w, http.StatusOK, resolveResponse{URL: dest, Navigates: ok})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// Metrics returns the server's session counters.
func (s *Server) Metrics() *Metrics { return s.metrics }

// handleWebSocket runs a Session for the lifetime of the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(conn, s.cfg, s.charts, s.specs, s.metrics, s.log)
	s.sessionsMu.Lock()
	s.sessions[sess.ID()] = sess
	s.sessionsMu.Unlock()
	s.metrics.sessionOpened()
	defer s.metrics.sessionClosed()
	s.log.Debug("page connected", "session", sess.ID(), "sessions", s.SessionCount())

	if err := sess.Run(r.Context()); err != nil {
		s.log.Error("dashboard session failed", "session", sess.ID(), "error", err)
	}

	s.sessionsMu.Lock()
	delete(s.sessions, sess.ID())
	s.sessionsMu.Unlock()
	s.log.Debug("page disconnected", "session", sess.ID(), "sessions", s.SessionCount())
}

// handleDashboard serves the page shell; cards arrive over the websocket.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title       string
		ContainerID string
		PlotlyURL   string
	}{
		Title:       s.cfg.Title,
		ContainerID: s.cfg.ContainerID,
		PlotlyURL:   s.cfg.PlotlyURL,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.log.Error("failed to render dashboard", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
