package dashboard

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireCommand struct {
	Op      string          `json:"op"`
	Parent  string          `json:"parent"`
	HTML    string          `json:"html"`
	ID      string          `json:"id"`
	Surface string          `json:"surface"`
	URL     string          `json:"url"`
	Pass    json.RawMessage `json:"pass"`
	Failed  int             `json:"failed"`
}

type wirePass struct {
	Width   float64 `json:"width"`
	Columns int     `json:"columns"`
	Basis   string  `json:"basis"`
}

func dialSession(t *testing.T, cfg Config) (*Server, *websocket.Conn) {
	t.Helper()
	s := newTestServer(t, cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return s, conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msg clientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil collects commands until one with the given op arrives.
func readUntil(t *testing.T, conn *websocket.Conn, op string) []wireCommand {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var seen []wireCommand
	for {
		var cmd wireCommand
		require.NoError(t, conn.ReadJSON(&cmd))
		seen = append(seen, cmd)
		if cmd.Op == op {
			return seen
		}
	}
}

func decodePass(t *testing.T, cmd wireCommand) wirePass {
	t.Helper()
	var p wirePass
	require.NoError(t, json.Unmarshal(cmd.Pass, &p))
	return p
}

func countOps(cmds []wireCommand) map[string]int {
	n := make(map[string]int)
	for _, c := range cmds {
		n[c.Op]++
	}
	return n
}

func TestSessionHelloBuildsGrid(t *testing.T) {
	_, conn := dialSession(t, Config{ContainerID: "charts"})

	sendMessage(t, conn, clientMessage{Type: msgHello, Width: 1300})
	cmds := readUntil(t, conn, "layout")
	ops := countOps(cmds)

	assert.Equal(t, 3, ops["paint"], "one paint per chart")
	assert.Equal(t, 3, ops["resize"], "every surface resized by the first pass")
	assert.Equal(t, 2, ops["listen"], "placeholder charts get no click handler")

	var cardAppends int
	for _, c := range cmds {
		if c.Op == "append" && c.Parent == "charts" {
			cardAppends++
		}
	}
	assert.Equal(t, 3, cardAppends)

	last := cmds[len(cmds)-1]
	pass := decodePass(t, last)
	assert.Equal(t, 4, pass.Columns)
	assert.Equal(t, "calc((100% - 45px) / 4)", pass.Basis)
	assert.Zero(t, last.Failed)
}

func TestSessionClickNavigates(t *testing.T) {
	s, conn := dialSession(t, Config{})

	sendMessage(t, conn, clientMessage{Type: msgHello, Width: 800})
	cmds := readUntil(t, conn, "layout")

	var surface string
	for _, c := range cmds {
		if c.Op == "listen" {
			surface = c.Surface
			break
		}
	}
	require.NotEmpty(t, surface)

	sendMessage(t, conn, clientMessage{Type: msgClick, Surface: surface, Index: 0, Label: "Up"})
	nav := readUntil(t, conn, "navigate")
	assert.Equal(t, "/admin/device/?status=Up", nav[len(nav)-1].URL)

	snap := s.Metrics().Snapshot()
	assert.EqualValues(t, 1, snap.Clicks)
	assert.EqualValues(t, 1, snap.Navigations)
	assert.EqualValues(t, 1, snap.SessionsOpened)
}

func TestSessionResizeIsDebounced(t *testing.T) {
	s, conn := dialSession(t, Config{Debounce: 50 * time.Millisecond})

	sendMessage(t, conn, clientMessage{Type: msgHello, Width: 1300})
	readUntil(t, conn, "layout")

	for _, w := range []float64{500, 700, 1000} {
		sendMessage(t, conn, clientMessage{Type: msgResize, Width: w})
	}

	cmds := readUntil(t, conn, "layout")
	pass := decodePass(t, cmds[len(cmds)-1])
	assert.Equal(t, float64(1000), pass.Width, "only the last width is laid out")
	assert.Equal(t, 3, pass.Columns)

	// Nothing else should follow the single debounced pass.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var extra wireCommand
	assert.Error(t, conn.ReadJSON(&extra))

	assert.EqualValues(t, 2, s.Metrics().Snapshot().LayoutPasses)
}

func TestSessionIgnoresTrafficBeforeHello(t *testing.T) {
	_, conn := dialSession(t, Config{Debounce: 10 * time.Millisecond})

	sendMessage(t, conn, clientMessage{Type: msgResize, Width: 700})
	sendMessage(t, conn, clientMessage{Type: msgClick, Surface: "cg-missing"})
	sendMessage(t, conn, clientMessage{Type: msgHello, Width: 700})

	cmds := readUntil(t, conn, "layout")
	pass := decodePass(t, cmds[len(cmds)-1])
	assert.Equal(t, 2, pass.Columns)
	assert.Zero(t, countOps(cmds)["navigate"])
}

func TestSessionClosesOnMalformedMessage(t *testing.T) {
	_, conn := dialSession(t, Config{})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}
