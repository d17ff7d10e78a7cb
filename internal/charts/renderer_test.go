package charts

import (
	"bytes"
	"testing"

	"github.com/supertime1/MCP-demo/internal/clickstore"
	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/tools"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func newTestRenderer() *Renderer {
	return NewRenderer(config.NewConfig())
}

func countryResult() *clickstore.Result {
	return &clickstore.Result{
		Columns: []string{"country", "sessions"},
		Rows: [][]interface{}{
			{"Poland", int64(3000)},
			{"Germany", int64(1200)},
			{"UK", int64(800)},
		},
	}
}

func TestChartKinds(t *testing.T) {
	r := newTestRenderer()

	for _, kind := range []string{tools.ChartKindBar, tools.ChartKindLine, tools.ChartKindPie, tools.ChartKindScatter} {
		t.Run(kind, func(t *testing.T) {
			png, err := r.Chart(kind, countryResult(), "country", "sessions", "Sessions by Country")
			if err != nil {
				t.Fatalf("Chart(%q) returned error: %v", kind, err)
			}
			if !bytes.HasPrefix(png, pngMagic) {
				t.Errorf("Chart(%q) output is not a PNG", kind)
			}
		})
	}
}

func TestChartUnknownKind(t *testing.T) {
	r := newTestRenderer()

	_, err := r.Chart("sunburst", countryResult(), "country", "sessions", "")
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for unknown kind, got %v", err)
	}
}

func TestChartMissingField(t *testing.T) {
	r := newTestRenderer()

	_, err := r.Chart(tools.ChartKindBar, countryResult(), "region", "sessions", "")
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for missing x field, got %v", err)
	}

	_, err = r.Chart(tools.ChartKindBar, countryResult(), "country", "revenue", "")
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for missing y field, got %v", err)
	}
}

func TestChartNonNumericValues(t *testing.T) {
	r := newTestRenderer()

	res := &clickstore.Result{
		Columns: []string{"country", "sessions"},
		Rows:    [][]interface{}{{"Poland", "many"}},
	}
	_, err := r.Chart(tools.ChartKindBar, res, "country", "sessions", "")
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for non-numeric values, got %v", err)
	}
}

func TestPieRejectsAllZero(t *testing.T) {
	r := newTestRenderer()

	res := &clickstore.Result{
		Columns: []string{"country", "sessions"},
		Rows:    [][]interface{}{{"Poland", int64(0)}, {"Germany", int64(0)}},
	}
	_, err := r.Chart(tools.ChartKindPie, res, "country", "sessions", "")
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for all-zero pie, got %v", err)
	}
}

func TestFunnelRendersInGivenOrder(t *testing.T) {
	r := newTestRenderer()

	rate := 80.0
	steps := []tools.FunnelStep{
		{Label: "All Sessions", Count: 1000},
		{Label: "Viewed Category", Count: 800, Rate: &rate},
		{Label: "Viewed Product", Count: 400},
	}

	png, err := r.Funnel(steps, "Conversion Funnel")
	if err != nil {
		t.Fatalf("Funnel returned error: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("Funnel output is not a PNG")
	}
}

func TestFunnelEmptySteps(t *testing.T) {
	r := newTestRenderer()

	_, err := r.Funnel(nil, "")
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for empty funnel, got %v", err)
	}
}

func TestTimeSeriesDaily(t *testing.T) {
	r := newTestRenderer()

	res := &clickstore.Result{
		Columns: []string{"date", "clicks"},
		Rows: [][]interface{}{
			{"2008-04-01", int64(10)},
			{"2008-04-01", int64(5)},
			{"2008-04-02", int64(7)},
			{"2008-05-01", int64(3)},
		},
	}

	png, points, err := r.TimeSeries(res, "date", "clicks", tools.GranularityDay, "Daily Clicks")
	if err != nil {
		t.Fatalf("TimeSeries returned error: %v", err)
	}
	if points != 3 {
		t.Errorf("Expected 3 grouped points, got %d", points)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("TimeSeries output is not a PNG")
	}
}

func TestTimeSeriesMonthly(t *testing.T) {
	r := newTestRenderer()

	res := &clickstore.Result{
		Columns: []string{"date", "clicks"},
		Rows: [][]interface{}{
			{"2008-04-01", int64(10)},
			{"2008-04-20", int64(5)},
			{"2008-05-02", int64(7)},
		},
	}

	_, points, err := r.TimeSeries(res, "date", "clicks", tools.GranularityMonth, "")
	if err != nil {
		t.Fatalf("TimeSeries returned error: %v", err)
	}
	if points != 2 {
		t.Errorf("Expected 2 monthly points, got %d", points)
	}
}

func TestTimeSeriesUnparseableTime(t *testing.T) {
	r := newTestRenderer()

	res := &clickstore.Result{
		Columns: []string{"date", "clicks"},
		Rows:    [][]interface{}{{"yesterday", int64(10)}},
	}

	_, _, err := r.TimeSeries(res, "date", "clicks", tools.GranularityDay, "")
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for unparseable time, got %v", err)
	}
}

func TestFromRows(t *testing.T) {
	rows := []map[string]interface{}{
		{"country": "Poland", "sessions": float64(3000)},
		{"country": "Germany", "sessions": float64(1200), "extra": "x"},
	}

	res, err := FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows returned error: %v", err)
	}
	if res.RowCount() != 2 {
		t.Fatalf("Expected 2 rows, got %d", res.RowCount())
	}

	// Columns are the sorted union of keys; missing cells are nil.
	want := []string{"country", "extra", "sessions"}
	if len(res.Columns) != len(want) {
		t.Fatalf("Expected columns %v, got %v", want, res.Columns)
	}
	for i, col := range want {
		if res.Columns[i] != col {
			t.Errorf("Column %d = %q, want %q", i, res.Columns[i], col)
		}
	}
	if res.Rows[0][1] != nil {
		t.Errorf("Expected nil for missing cell, got %v", res.Rows[0][1])
	}

	// Integral JSON numbers normalize to int64.
	if res.Rows[0][2] != int64(3000) {
		t.Errorf("Expected int64(3000), got %T %v", res.Rows[0][2], res.Rows[0][2])
	}
}

func TestFromRowsEmpty(t *testing.T) {
	_, err := FromRows(nil)
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for empty rows, got %v", err)
	}
}
