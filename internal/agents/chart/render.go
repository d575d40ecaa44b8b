package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"data-copilot/internal/models"
)

// Renderer writes charts as PNG files into a directory.
type Renderer struct {
	dir    string
	width  vg.Length
	height vg.Length
}

func NewRenderer(dir string, widthCM, heightCM float64) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	return &Renderer{
		dir:    dir,
		width:  vg.Length(widthCM) * vg.Centimeter,
		height: vg.Length(heightCM) * vg.Centimeter,
	}, nil
}

// Render draws the configured chart over the rows and saves it under a UUID
// filename. The returned path is relative to the renderer's directory.
func (r *Renderer) Render(config models.ChartConfig, rows []map[string]any) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no rows to chart")
	}

	p := plot.New()
	p.Title.Text = config.Title
	p.X.Label.Text = config.XColumn
	if config.ChartType != "pie" && config.ChartType != "histogram" {
		p.Y.Label.Text = config.YColumn
	}

	var err error
	switch config.ChartType {
	case "bar":
		err = addBars(p, config, rows)
	case "line":
		err = addLine(p, config, rows)
	case "scatter":
		err = addScatter(p, config, rows)
	case "pie":
		err = addPie(p, config, rows)
	case "histogram":
		err = addHistogram(p, config, rows)
	default:
		err = fmt.Errorf("unsupported chart type: %s", config.ChartType)
	}
	if err != nil {
		return "", err
	}

	filename := uuid.New().String() + ".png"
	if err := p.Save(r.width, r.height, filepath.Join(r.dir, filename)); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return filename, nil
}

// Path resolves a chart filename inside the renderer's directory. A second
// return of false means the name escapes the directory or does not exist.
func (r *Renderer) Path(filename string) (string, bool) {
	clean := filepath.Base(filename)
	if clean != filename || filepath.Ext(clean) != ".png" {
		return "", false
	}
	full := filepath.Join(r.dir, clean)
	if _, err := os.Stat(full); err != nil {
		return "", false
	}
	return full, true
}

func addBars(p *plot.Plot, config models.ChartConfig, rows []map[string]any) error {
	values, labels, err := numericSeries(rows, config.XColumn, config.YColumn)
	if err != nil {
		return err
	}
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = 0
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(labels...)
	return nil
}

func addLine(p *plot.Plot, config models.ChartConfig, rows []map[string]any) error {
	xys, labels, err := xySeries(rows, config.XColumn, config.YColumn)
	if err != nil {
		return err
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	if labels != nil {
		p.NominalX(labels...)
	}
	return nil
}

func addScatter(p *plot.Plot, config models.ChartConfig, rows []map[string]any) error {
	xys, _, err := xySeries(rows, config.XColumn, config.YColumn)
	if err != nil {
		return err
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = plotutil.Color(0)
	p.Add(scatter)
	return nil
}

func addHistogram(p *plot.Plot, config models.ChartConfig, rows []map[string]any) error {
	var values plotter.Values
	for _, row := range rows {
		if v, ok := toFloat(row[config.XColumn]); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("column '%s' has no numeric values", config.XColumn)
	}
	hist, err := plotter.NewHist(values, 10)
	if err != nil {
		return err
	}
	p.Add(hist)
	return nil
}

// pieChart draws filled wedges sized by value. gonum/plot ships no pie
// plotter, so this implements plot.Plotter directly on the vg canvas.
type pieChart struct {
	values []float64
}

func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	var total float64
	for _, v := range pc.values {
		total += v
	}
	if total == 0 {
		return
	}

	center := vg.Point{
		X: (c.Min.X + c.Max.X) / 2,
		Y: (c.Min.Y + c.Max.Y) / 2,
	}
	radius := c.Max.X - c.Min.X
	if h := c.Max.Y - c.Min.Y; h < radius {
		radius = h
	}
	radius = radius / 2 * 0.8

	start := math.Pi / 2
	for i, v := range pc.values {
		angle := -2 * math.Pi * v / total
		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, start, angle)
		path.Close()
		c.SetColor(plotutil.Color(i))
		c.Fill(path)
		start += angle
	}
}

func addPie(p *plot.Plot, config models.ChartConfig, rows []map[string]any) error {
	values, labels, err := numericSeries(rows, config.XColumn, config.YColumn)
	if err != nil {
		return err
	}
	for _, v := range values {
		if v < 0 {
			return fmt.Errorf("pie charts require non-negative values")
		}
	}

	pie := &pieChart{values: values}
	p.Add(pie)
	p.HideAxes()
	for i, label := range labels {
		p.Legend.Add(label, legendSwatch{index: i})
	}
	p.Legend.Top = true
	return nil
}

// legendSwatch gives pie slices colored legend thumbnails.
type legendSwatch struct {
	index int
}

func (s legendSwatch) Thumbnail(c *draw.Canvas) {
	var path vg.Path
	path.Move(vg.Point{X: c.Min.X, Y: c.Min.Y})
	path.Line(vg.Point{X: c.Max.X, Y: c.Min.Y})
	path.Line(vg.Point{X: c.Max.X, Y: c.Max.Y})
	path.Line(vg.Point{X: c.Min.X, Y: c.Max.Y})
	path.Close()
	c.SetColor(plotutil.Color(s.index))
	c.Fill(path)
}

// numericSeries reads label/value pairs for bar and pie charts.
func numericSeries(rows []map[string]any, xColumn, yColumn string) ([]float64, []string, error) {
	if err := requireColumns(rows, xColumn, yColumn); err != nil {
		return nil, nil, err
	}

	values := make([]float64, 0, len(rows))
	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		v, ok := toFloat(row[yColumn])
		if !ok {
			return nil, nil, fmt.Errorf("column '%s' is not numeric", yColumn)
		}
		values = append(values, v)
		labels = append(labels, stringify(row[xColumn]))
	}
	return values, labels, nil
}

// xySeries reads point pairs for line and scatter charts. When x is not
// numeric the row index is used and the labels are returned for a nominal
// axis.
func xySeries(rows []map[string]any, xColumn, yColumn string) (plotter.XYs, []string, error) {
	if err := requireColumns(rows, xColumn, yColumn); err != nil {
		return nil, nil, err
	}

	xys := make(plotter.XYs, 0, len(rows))
	var labels []string
	nominal := false
	for i, row := range rows {
		y, ok := toFloat(row[yColumn])
		if !ok {
			return nil, nil, fmt.Errorf("column '%s' is not numeric", yColumn)
		}
		x, ok := toFloat(row[xColumn])
		if !ok {
			nominal = true
			x = float64(i)
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
		labels = append(labels, stringify(row[xColumn]))
	}
	if !nominal {
		labels = nil
	}
	return xys, labels, nil
}

func requireColumns(rows []map[string]any, columns ...string) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to chart")
	}
	for _, column := range columns {
		if _, ok := rows[0][column]; !ok {
			return fmt.Errorf("column '%s' not found in data", column)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
