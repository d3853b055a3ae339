package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardgrid/internal/chart"
	"cardgrid/internal/dashboard"
)

const chartsYAML = `
device_status:
  name: Device Status
  query_params:
    values: [12, 3]
    labels: [Up, Needs attention]
  target_link: /devices/?status=
  filters:
    0: "?monitoring__status=ok"
general_model:
  name: Model
  filtering: false
  target_link: /models/
  query_params:
    values: [1.5, 2.5]
    labels: [A, B]
empty:
  name: Empty
`

func writeCharts(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "charts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(chartsYAML), 0644))
	return path
}

func parseCharts(t *testing.T) chart.Set {
	t.Helper()
	set, err := chart.Parse([]byte(chartsYAML))
	require.NoError(t, err)
	return set
}

func TestLoadCharts(t *testing.T) {
	t.Run("reads configured file", func(t *testing.T) {
		viper.Set("charts", writeCharts(t))
		defer viper.Set("charts", "charts.yaml")

		set, err := loadCharts()
		require.NoError(t, err)
		assert.Len(t, set, 3)
	})

	t.Run("missing file", func(t *testing.T) {
		viper.Set("charts", filepath.Join(t.TempDir(), "nope.yaml"))
		defer viper.Set("charts", "charts.yaml")

		_, err := loadCharts()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load charts")
	})
}

func TestPrintLayout(t *testing.T) {
	tests := []struct {
		name    string
		width   float64
		columns string
		basis   string
	}{
		{name: "four columns", width: 1280, columns: "columns: 4", basis: "calc((100% - 45px) / 4)"},
		{name: "two columns", width: 600, columns: "columns: 2", basis: "calc((100% - 15px) / 2)"},
		{name: "single column", width: 599, columns: "columns: 1", basis: "calc((100% - 0px) / 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printLayout(&buf, tt.width, parseCharts(t)))

			out := buf.String()
			assert.Contains(t, out, tt.columns)
			assert.Contains(t, out, tt.basis)
			assert.Contains(t, out, "device-status")
			assert.Contains(t, out, "no data")
			assert.Contains(t, out, "(3 cards)")
		})
	}

	t.Run("negative width", func(t *testing.T) {
		assert.Error(t, printLayout(&bytes.Buffer{}, -1, nil))
	})
}

func TestPrintResolve(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		index   int
		label   string
		want    string
		wantErr bool
	}{
		{name: "filter override", key: "device_status", index: 0, want: "/devices/?status=?monitoring__status=ok"},
		{name: "configured label encoded", key: "device_status", index: 1, want: "/devices/?status=Needs%20attention"},
		{name: "explicit label", key: "device_status", index: 1, label: "a&b", want: "/devices/?status=a%26b"},
		{name: "filtering disabled", key: "general_model", index: 1, want: "/models/"},
		{name: "no data", key: "empty", index: 0, want: "chart empty does not navigate"},
		{name: "unknown chart", key: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := printResolve(&buf, parseCharts(t), tt.key, tt.index, tt.label)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(buf.String()))
		})
	}
}

func TestRunExport(t *testing.T) {
	dashboard.SetWebFiles(fstest.MapFS{
		"web/templates/snapshot.html": {Data: []byte(`{{range .Cards}}<div class="{{.Slug}}"></div>{{end}}`)},
		"web/static/js/snapshot.js":   {Data: []byte("")},
		"web/static/css/cardgrid.css": {Data: []byte("")},
	})

	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, runExport(&buf, dir, "Devices", "", parseCharts(t)))

	path := strings.TrimSpace(buf.String())
	assert.Equal(t, dir, filepath.Dir(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `<div class="device-status"></div>`)
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute())
	assert.Contains(t, buf.String(), "cardgrid 1.2.3")
	assert.Contains(t, buf.String(), "Commit: abc123")
	assert.Contains(t, buf.String(), "Built: unknown")
}
