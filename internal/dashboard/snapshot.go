package dashboard

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cardgrid/internal/card"
	"cardgrid/internal/chart"
	"cardgrid/internal/drawing"
	logpkg "cardgrid/internal/log"
	"cardgrid/internal/slug"
)

const snapshotTemplatePath = "web/templates/snapshot.html"

// SnapshotGenerator writes a standalone HTML page containing every card.
// The page needs no server: charts are painted in the browser from the
// embedded specs and the grid follows the same breakpoints.
type SnapshotGenerator struct {
	outputDir string
	files     fs.FS
	plotlyURL string
	now       func() time.Time
	logger    logpkg.Logger
}

// NewSnapshotGenerator creates a generator writing into outputDir.
func NewSnapshotGenerator(outputDir, plotlyURL string) (*SnapshotGenerator, error) {
	if webFiles == nil {
		return nil, fmt.Errorf("web files not set")
	}
	if plotlyURL == "" {
		plotlyURL = DefaultPlotlyURL
	}
	return &SnapshotGenerator{
		outputDir: outputDir,
		files:     webFiles,
		plotlyURL: plotlyURL,
		now:       time.Now,
		logger:    logpkg.Global(),
	}, nil
}

// SnapshotCard is one card as rendered into the snapshot page.
type SnapshotCard struct {
	Key       string
	Slug      string
	Name      string
	QuickLink *chart.QuickLink
	Plot      template.JS
}

// SnapshotStyles carries the declarations the live grid applies inline,
// so exported cards look the same as served ones.
type SnapshotStyles struct {
	Sheet     template.CSS
	Container template.CSS
	Card      template.CSS
	Surface   template.CSS
	QuickLink template.CSS
}

// SnapshotData holds everything the snapshot template needs.
type SnapshotData struct {
	Title       string
	GeneratedAt time.Time
	PlotlyURL   string
	Styles      SnapshotStyles
	Cards       []SnapshotCard
	Script      template.JS
}

type snapshotPlot struct {
	Data    []drawing.Trace `json:"data"`
	Layout  drawing.Layout  `json:"layout"`
	Options drawing.Options `json:"config"`
}

// Generate renders charts into a timestamped HTML file and returns its path.
func (g *SnapshotGenerator) Generate(title string, charts chart.Set) (string, error) {
	data, err := g.build(title, charts)
	if err != nil {
		return "", err
	}

	g.logger.Debug("loading snapshot template", "path", snapshotTemplatePath)
	content, err := fs.ReadFile(g.files, snapshotTemplatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	tmpl, err := template.New("snapshot").Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	g.logger.Debug("ensure snapshot output directory", "dir", g.outputDir)
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("cardgrid-snapshot-%s.html", data.GeneratedAt.Format("20060102-150405"))
	filePath := filepath.Join(g.outputDir, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			g.logger.Warn("failed to close snapshot file", "error", err)
		}
	}()

	if err := tmpl.Execute(file, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	g.logger.Info("snapshot generated", "path", filePath, "cards", len(data.Cards))
	return filePath, nil
}

func (g *SnapshotGenerator) build(title string, charts chart.Set) (*SnapshotData, error) {
	script, err := fs.ReadFile(g.files, "web/static/js/snapshot.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot script: %w", err)
	}

	sheet, err := fs.ReadFile(g.files, "web/static/css/cardgrid.css")
	if err != nil {
		return nil, fmt.Errorf("failed to read stylesheet: %w", err)
	}

	data := &SnapshotData{
		Title:       title,
		GeneratedAt: g.now(),
		PlotlyURL:   g.plotlyURL,
		Styles: SnapshotStyles{
			Sheet:     template.CSS(sheet),
			Container: template.CSS(card.ContainerStyle()),
			Card:      template.CSS(card.CardStyle()),
			Surface:   template.CSS(card.SurfaceStyle()),
			QuickLink: template.CSS(card.QuickLinkStyle()),
		},
		Script: template.JS(script),
	}
	for _, e := range charts {
		spec := chart.Build(e.Config)
		plot, err := json.Marshal(snapshotPlot{
			Data:    []drawing.Trace{drawing.TraceFor(spec)},
			Layout:  drawing.CardLayout(e.Config.Name, spec.TotalText()),
			Options: drawing.DefaultOptions(),
		})
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", e.Key, err)
		}
		data.Cards = append(data.Cards, SnapshotCard{
			Key:       e.Key,
			Slug:      slug.Slugify(e.Config.Name),
			Name:      e.Config.Name,
			QuickLink: e.Config.QuickLink,
			Plot:      template.JS(plot),
		})
	}
	return data, nil
}
