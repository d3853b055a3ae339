package dashboard

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"cardgrid/internal/chart"
	logpkg "cardgrid/internal/log"
)

const testChartsYAML = `
device_status:
  name: Device Status
  query_params:
    values: [12, 3]
    labels: [Up, Down]
  colors: ["#267126", "#a72d1d"]
  target_link: /admin/device/?status=
  filters:
    1: "?monitoring__status=critical"
  quick_link:
    url: /admin/device/add/
    label: Add device
general_model:
  name: Model
  filtering: "False"
  target_link: /admin/models/
  query_params:
    values: [4, 2]
    labels: [A, B]
empty:
  name: Empty
`

func testWebFS() fstest.MapFS {
	return fstest.MapFS{
		"web/templates/dashboard.html": {Data: []byte(`<html><head><title>{{.Title}}</title><script src="{{.PlotlyURL}}"></script></head>` +
			`<body><div id="{{.ContainerID}}"></div></body></html>`)},
		"web/templates/snapshot.html": {Data: []byte(`<style>{{.Styles.Sheet}}</style><style>.card { {{.Styles.Card}} }</style>` +
			`<h1>{{.Title}}</h1>{{range .Cards}}<div class="card {{.Slug}}" id="plot-{{.Key}}">` +
			`{{with .QuickLink}}<a href="{{.URL}}">{{.Label}}</a>{{end}}</div><script>draw({{.Plot}})</script>{{end}}`)},
		"web/static/js/cardgrid.js":   {Data: []byte("var cardgrid = {};")},
		"web/static/css/cardgrid.css": {Data: []byte(".button.quick-link { color: #fff; }")},
		"web/static/js/snapshot.js":   {Data: []byte("// snapshot")},
	}
}

func testCharts(t *testing.T) chart.Set {
	t.Helper()
	set, err := chart.Parse([]byte(testChartsYAML))
	require.NoError(t, err)
	return set
}

func quietLogger() logpkg.Logger {
	return logpkg.NewSimple(logpkg.ErrorLevel).WithWriter(io.Discard)
}
