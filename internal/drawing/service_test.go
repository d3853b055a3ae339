package drawing

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardgrid/internal/chart"
	"cardgrid/internal/dom"
	"cardgrid/internal/navigation"
)

type recordingEmitter struct {
	cmds []interface{}
	err  error
}

func (e *recordingEmitter) Emit(cmd interface{}) error {
	if e.err != nil {
		return e.err
	}
	e.cmds = append(e.cmds, cmd)
	return nil
}

func dataSpec() chart.RenderSpec {
	return chart.Build(chart.Config{
		Name:        "Status",
		QueryParams: &chart.QueryParams{Values: []float64{1, 2}, Labels: []string{"a", "b"}},
		Colors:      []string{"red", "blue"},
	})
}

func TestTraceFor(t *testing.T) {
	t.Run("with data", func(t *testing.T) {
		trace := TraceFor(dataSpec())
		assert.Equal(t, "pie", trace.Type)
		assert.Equal(t, Hole, trace.Hole)
		assert.Equal(t, []float64{1, 2}, trace.Values)
		require.NotNil(t, trace.Marker)
		assert.Equal(t, []string{"red", "blue"}, trace.Marker.Colors)
		assert.True(t, trace.ShowLegend)
		assert.Equal(t, float64(180), trace.Rotation)
		assert.Equal(t, "inside", trace.TextPosition)
		assert.Equal(t, "horizontal", trace.InsideTextOrientation)
	})

	t.Run("default palette", func(t *testing.T) {
		spec := chart.Build(chart.Config{QueryParams: &chart.QueryParams{Values: []float64{1}, Labels: []string{"a"}}})
		trace := TraceFor(spec)
		assert.Nil(t, trace.Marker)

		raw, err := json.Marshal(trace)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "marker")
	})

	t.Run("no data", func(t *testing.T) {
		trace := TraceFor(chart.Build(chart.Config{}))
		assert.False(t, trace.ShowLegend)
		assert.Equal(t, []string{chart.NoDataLabel}, trace.Labels)
		assert.Equal(t, "%{label}", trace.HoverTemplate)
		require.NotNil(t, trace.Marker)
		assert.Equal(t, []string{chart.NoDataColor}, trace.Marker.Colors)
	})
}

func TestCardLayout(t *testing.T) {
	l := CardLayout("Device Status", "20")
	assert.True(t, l.Autosize)
	assert.Equal(t, "Device Status", l.Title.Text)
	assert.Equal(t, 14, l.Title.Font.Size)
	require.Len(t, l.Annotations, 1)
	assert.Equal(t, "<b>20</b>", l.Annotations[0].Text)
	assert.Equal(t, "bold", l.Annotations[0].Font.Weight)

	// The base layout is never shared between cards.
	assert.Empty(t, BaseLayout().Title.Text)
	assert.Empty(t, BaseLayout().Annotations)
}

func TestRemotePaint(t *testing.T) {
	doc := dom.NewDocument()
	container := doc.Mount("plot-container", "div")
	emitter := &recordingEmitter{}
	r := NewRemote(emitter)

	surface := doc.CreateElement("div")
	err := r.Paint(surface, dataSpec(), CardLayout("Status", "3"))
	assert.True(t, errors.Is(err, ErrDetached))
	assert.Empty(t, emitter.cmds)

	container.AppendChild(surface)
	require.NoError(t, r.Paint(surface, dataSpec(), CardLayout("Status", "3")))
	require.Len(t, emitter.cmds, 1)

	cmd, ok := emitter.cmds[0].(PaintCommand)
	require.True(t, ok)
	assert.Equal(t, "paint", cmd.Op)
	assert.Equal(t, surface.ID(), cmd.Surface)
	assert.Len(t, cmd.Data, 1)
	assert.False(t, cmd.Config.DisplayModeBar)
	assert.True(t, cmd.Config.Responsive)
}

func TestRemotePaintEmitError(t *testing.T) {
	doc := dom.NewDocument()
	surface := doc.CreateElement("div")
	doc.Mount("plot-container", "div").AppendChild(surface)

	r := NewRemote(&recordingEmitter{err: errors.New("connection closed")})
	assert.Error(t, r.Paint(surface, dataSpec(), BaseLayout()))
	assert.True(t, errors.Is(r.Resize(surface), ErrNotPainted))
}

func TestRemoteResize(t *testing.T) {
	doc := dom.NewDocument()
	container := doc.Mount("plot-container", "div")
	emitter := &recordingEmitter{}
	r := NewRemote(emitter)

	surface := doc.CreateElement("div")
	container.AppendChild(surface)

	assert.True(t, errors.Is(r.Resize(surface), ErrNotPainted))

	require.NoError(t, r.Paint(surface, dataSpec(), BaseLayout()))
	require.NoError(t, r.Resize(surface))
	assert.Equal(t, ResizeCommand{Op: "resize", Surface: surface.ID()}, emitter.cmds[1])
}

func TestRemoteDispatch(t *testing.T) {
	doc := dom.NewDocument()
	surface := doc.CreateElement("div")
	emitter := &recordingEmitter{}
	r := NewRemote(emitter)

	assert.False(t, r.Dispatch(surface.ID(), navigation.ClickEvent{}))

	var got navigation.ClickEvent
	r.OnClick(surface, func(ev navigation.ClickEvent) { got = ev })
	assert.Equal(t, []interface{}{ListenCommand{Op: "listen", Surface: surface.ID()}}, emitter.cmds)
	assert.True(t, r.Dispatch(surface.ID(), navigation.ClickEvent{SliceIndex: 2, Label: "Down"}))
	assert.Equal(t, navigation.ClickEvent{SliceIndex: 2, Label: "Down"}, got)
}
