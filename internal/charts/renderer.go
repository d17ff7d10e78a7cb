// Package charts turns tabular results into rendered PNG images: basic
// charts, heatmaps, funnel bars, and time series.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/supertime1/MCP-demo/internal/clickstore"
	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/tools"
)

// MimePNG is the media type of every rendered image.
const MimePNG = "image/png"

// Renderer renders charts at the configured dimensions. Stateless across
// calls.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a Renderer from the chart configuration.
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{width: cfg.Chart.Width, height: cfg.Chart.Height}
}

// Chart renders a bar, line, pie, or scatter chart of yField over xField.
// Both fields must exist in the resolved data.
func (r *Renderer) Chart(kind string, res *clickstore.Result, xField, yField, title string) ([]byte, error) {
	xi, err := fieldIndex(res, xField)
	if err != nil {
		return nil, err
	}
	yi, err := fieldIndex(res, yField)
	if err != nil {
		return nil, err
	}
	if res.RowCount() == 0 {
		return nil, errortypes.ValidationError(errors.New("no rows to chart"), "empty chart data")
	}

	labels := labelsOf(res, xi)
	values, err := numbersOf(res, yi)
	if err != nil {
		return nil, err
	}

	switch kind {
	case tools.ChartKindBar:
		return r.renderBars(labels, values, title)
	case tools.ChartKindPie:
		return r.renderPie(labels, values, title)
	case tools.ChartKindLine:
		return r.renderXY(labels, values, title, false)
	case tools.ChartKindScatter:
		return r.renderXY(labels, values, title, true)
	default:
		return nil, errortypes.ValidationError(
			fmt.Errorf("unknown chart kind %q", kind),
			"invalid create_chart request").WithField("kind", kind)
	}
}

func (r *Renderer) renderBars(labels []string, values []float64, title string) ([]byte, error) {
	bars := make([]chart.Value, len(values))
	for i := range values {
		bars[i] = chart.Value{Label: labels[i], Value: values[i]}
	}

	c := chart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: barWidth(r.width, len(bars)),
		Bars:     bars,
	}
	return render(c.Render)
}

func (r *Renderer) renderPie(labels []string, values []float64, title string) ([]byte, error) {
	slices := make([]chart.Value, 0, len(values))
	for i, v := range values {
		// Pie slices need positive weight.
		if v > 0 {
			slices = append(slices, chart.Value{Label: labels[i], Value: v})
		}
	}
	if len(slices) == 0 {
		return nil, errortypes.ValidationError(errors.New("no positive values for pie chart"), "empty chart data")
	}

	c := chart.PieChart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		Values: slices,
	}
	return render(c.Render)
}

func (r *Renderer) renderXY(labels []string, values []float64, title string, scatter bool) ([]byte, error) {
	xs := make([]float64, len(values))
	ticks := make([]chart.Tick, len(values))
	for i := range values {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: labels[i]}
	}

	style := chart.Style{}
	if scatter {
		style = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 5}
	}

	c := chart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		XAxis:  chart.XAxis{Ticks: ticks},
		Series: []chart.Series{
			chart.ContinuousSeries{Style: style, XValues: xs, YValues: values},
		},
	}
	return render(c.Render)
}

// Funnel renders the steps as a bar sequence in the given order. Ordering
// is the caller's contract; nothing is re-sorted here.
func (r *Renderer) Funnel(steps []tools.FunnelStep, title string) ([]byte, error) {
	if len(steps) == 0 {
		return nil, errortypes.ValidationError(errors.New("funnel needs at least one step"), "empty funnel")
	}

	bars := make([]chart.Value, len(steps))
	for i, step := range steps {
		bars[i] = chart.Value{Label: step.Label, Value: float64(step.Count)}
	}

	c := chart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: barWidth(r.width, len(bars)),
		Bars:     bars,
	}
	return render(c.Render)
}

// TimeSeries groups values by the requested granularity and renders the
// grouped series in time order.
func (r *Renderer) TimeSeries(res *clickstore.Result, timeField, valueField, granularity, title string) ([]byte, int, error) {
	ti, err := fieldIndex(res, timeField)
	if err != nil {
		return nil, 0, err
	}
	vi, err := fieldIndex(res, valueField)
	if err != nil {
		return nil, 0, err
	}
	if res.RowCount() == 0 {
		return nil, 0, errortypes.ValidationError(errors.New("no rows to chart"), "empty chart data")
	}

	values, err := numbersOf(res, vi)
	if err != nil {
		return nil, 0, err
	}

	grouped := map[time.Time]float64{}
	for i, row := range res.Rows {
		t, err := parseTime(row[ti])
		if err != nil {
			return nil, 0, err
		}
		grouped[truncate(t, granularity)] += values[i]
	}

	times := make([]time.Time, 0, len(grouped))
	for t := range grouped {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	ys := make([]float64, len(times))
	for i, t := range times {
		ys[i] = grouped[t]
	}

	c := chart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		XAxis:  chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		Series: []chart.Series{
			chart.TimeSeries{XValues: times, YValues: ys},
		},
	}
	png, err := render(c.Render)
	return png, len(times), err
}

// timeLayouts are the accepted date formats, tried in order.
var timeLayouts = []string{"2006-01-02", "2006-1-2", time.RFC3339, "2006-01-02 15:04:05"}

func parseTime(v interface{}) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, errortypes.ValidationError(
			fmt.Errorf("time value %v (%T) is not a date", v, v),
			"unparseable time field")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errortypes.ValidationError(
		fmt.Errorf("time value %q is not a date", s),
		"unparseable time field")
}

func truncate(t time.Time, granularity string) time.Time {
	if granularity == tools.GranularityMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func barWidth(width, n int) int {
	w := width / (2 * n)
	if w < 10 {
		w = 10
	}
	return w
}

func render(fn func(chart.RendererProvider, io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(chart.PNG, &buf); err != nil {
		return nil, errortypes.InternalError(err, "chart rendering failed")
	}
	return buf.Bytes(), nil
}
