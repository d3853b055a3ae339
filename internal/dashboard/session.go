package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cardgrid/internal/card"
	"cardgrid/internal/chart"
	"cardgrid/internal/debounce"
	"cardgrid/internal/dom"
	"cardgrid/internal/drawing"
	"cardgrid/internal/grid"
	logpkg "cardgrid/internal/log"
	"cardgrid/internal/navigation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

var errSessionClosed = errors.New("session closed")

// Session drives one open dashboard page. All document, grid and chart
// state is touched only from the Run loop.
type Session struct {
	id          string
	conn        *websocket.Conn
	containerID string
	charts      chart.Set
	specs       []chart.RenderSpec
	log         logpkg.Logger
	metrics     *Metrics

	send      chan []byte
	events    chan interface{}
	done      chan struct{}
	closeOnce sync.Once

	doc      *dom.Document
	remote   *drawing.Remote
	state    *grid.State
	ctrl     *grid.Controller
	debounce *debounce.Debouncer
	started  bool
}

func newSession(conn *websocket.Conn, cfg Config, charts chart.Set, specs []chart.RenderSpec, m *Metrics, l logpkg.Logger) *Session {
	s := &Session{
		id:          uuid.NewString(),
		conn:        conn,
		containerID: cfg.ContainerID,
		charts:      charts,
		specs:       specs,
		send:        make(chan []byte, sendBuffer),
		events:      make(chan interface{}, 16),
		done:        make(chan struct{}),
		debounce:    debounce.New(cfg.Debounce),
		state:       grid.NewState(),
		metrics:     m,
	}
	s.log = l
	s.doc = dom.NewDocument()
	s.doc.Mount(cfg.ContainerID, "div")
	s.doc.SetObserver(s)
	s.remote = drawing.NewRemote(s)
	s.ctrl = grid.NewController(s.remote, l)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Run serves the page until the connection drops or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	go s.writePump()
	go s.readPump()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case ev := <-s.events:
			if err := s.handle(ev); err != nil {
				return err
			}
		}
	}
}

// Close ends the session. It is safe to call more than once; the write
// pump sends the close frame and releases the connection.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.debounce.Stop()
	})
}

func (s *Session) handle(ev interface{}) error {
	switch ev := ev.(type) {
	case clientMessage:
		switch ev.Type {
		case msgHello:
			if s.started {
				return nil
			}
			s.started = true
			return s.start(ev.Width)
		case msgResize:
			if !s.started {
				return nil
			}
			width := ev.Width
			s.debounce.Call(func() { s.post(layoutRequest{width: width}) })
		case msgClick:
			if !s.started {
				return nil
			}
			s.metrics.clicked()
			click := navigation.ClickEvent{SliceIndex: ev.Index, Label: ev.Label}
			if !s.remote.Dispatch(ev.Surface, click) {
				s.log.Debug("click on surface without handler", "session", s.id, "surface", ev.Surface)
			}
		default:
			s.log.Debug("ignoring message", "session", s.id, "type", ev.Type)
		}
	case layoutRequest:
		s.layout(ev.width)
	}
	return nil
}

// start builds the grid: every card is assembled and painted before the
// first layout pass runs.
func (s *Session) start(width float64) error {
	asm, err := card.NewAssembler(s.doc, s.containerID, s.remote, s, s.state, s.log)
	if err != nil {
		return err
	}
	asm.Setup()
	if _, err := asm.AssembleAll(s.charts, s.specs); err != nil {
		return fmt.Errorf("session %s: %w", s.id, err)
	}
	s.layout(width)
	s.log.Info("dashboard session started", "session", s.id, "cards", s.state.Len(), "width", width)
	return nil
}

func (s *Session) layout(width float64) {
	report := s.ctrl.Layout(s.state, width)
	cmd := LayoutCommand{Op: "layout", Pass: report.Pass, Failed: report.Failed()}
	s.metrics.layoutDone(cmd)
	_ = s.Emit(cmd)
}

// post hands an event to the Run loop unless the session is closing.
func (s *Session) post(ev interface{}) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Emit queues a command for the page.
func (s *Session) Emit(cmd interface{}) error {
	b, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}
	select {
	case s.send <- b:
		return nil
	case <-s.done:
		return errSessionClosed
	}
}

// Navigate sends the page to url.
func (s *Session) Navigate(url string) error {
	s.log.Debug("navigating", "session", s.id, "url", url)
	s.metrics.navigated()
	return s.Emit(NavigateCommand{Op: "navigate", URL: url})
}

// Appended implements dom.Observer.
func (s *Session) Appended(parent, child *dom.Element) {
	_ = s.Emit(AppendCommand{Op: "append", Parent: parent.ID(), HTML: child.HTML()})
}

// StyleChanged implements dom.Observer.
func (s *Session) StyleChanged(el *dom.Element, props []dom.Property) {
	_ = s.Emit(StyleCommand{Op: "style", ID: el.ID(), Style: props})
}

// ClassAdded implements dom.Observer.
func (s *Session) ClassAdded(el *dom.Element, classes []string) {
	_ = s.Emit(ClassCommand{Op: "class", ID: el.ID(), Classes: classes})
}

func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", "session", s.id, "error", err)
			}
			return
		}
		// Any inbound traffic proves the page is alive.
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn("malformed message, closing session", "session", s.id, "error", err)
			return
		}
		s.post(msg)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
