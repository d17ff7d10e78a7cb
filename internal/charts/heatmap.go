package charts

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"

	"github.com/supertime1/MCP-demo/internal/clickstore"
	"github.com/supertime1/MCP-demo/internal/errortypes"
)

// HeatmapGrid is the pivoted 2D form of a tabular result. Cells for
// combinations absent from the input hold zero; every row/column value
// seen in the data appears in the grid.
type HeatmapGrid struct {
	RowLabels []string
	ColLabels []string
	Cells     [][]float64
	Max       float64
}

// Pivot builds the grid from a tabular result. Row and column labels keep
// first-appearance order. Duplicate combinations accumulate.
func Pivot(res *clickstore.Result, rowField, colField, valueField string) (*HeatmapGrid, error) {
	ri, err := fieldIndex(res, rowField)
	if err != nil {
		return nil, err
	}
	ci, err := fieldIndex(res, colField)
	if err != nil {
		return nil, err
	}
	vi, err := fieldIndex(res, valueField)
	if err != nil {
		return nil, err
	}
	if res.RowCount() == 0 {
		return nil, errortypes.ValidationError(errors.New("no rows to pivot"), "empty heatmap data")
	}

	values, err := numbersOf(res, vi)
	if err != nil {
		return nil, err
	}
	rowLabels := labelsOf(res, ri)
	colLabels := labelsOf(res, ci)

	grid := &HeatmapGrid{}
	rowIdx := map[string]int{}
	colIdx := map[string]int{}
	cells := map[[2]int]float64{}

	for i := range res.Rows {
		r, ok := rowIdx[rowLabels[i]]
		if !ok {
			r = len(grid.RowLabels)
			rowIdx[rowLabels[i]] = r
			grid.RowLabels = append(grid.RowLabels, rowLabels[i])
		}
		c, ok := colIdx[colLabels[i]]
		if !ok {
			c = len(grid.ColLabels)
			colIdx[colLabels[i]] = c
			grid.ColLabels = append(grid.ColLabels, colLabels[i])
		}
		cells[[2]int{r, c}] += values[i]
	}

	grid.Cells = make([][]float64, len(grid.RowLabels))
	for r := range grid.Cells {
		grid.Cells[r] = make([]float64, len(grid.ColLabels))
		for c := range grid.Cells[r] {
			v := cells[[2]int{r, c}]
			grid.Cells[r][c] = v
			if v > grid.Max {
				grid.Max = v
			}
		}
	}
	return grid, nil
}

// Heatmap pivots the result and renders the grid as colored cells, white
// for zero through deep red at the maximum.
func (r *Renderer) Heatmap(res *clickstore.Result, rowField, colField, valueField string) ([]byte, *HeatmapGrid, error) {
	grid, err := Pivot(res, rowField, colField, valueField)
	if err != nil {
		return nil, nil, err
	}

	const gap = 2
	cellW := (r.width - gap*(len(grid.ColLabels)+1)) / len(grid.ColLabels)
	cellH := (r.height - gap*(len(grid.RowLabels)+1)) / len(grid.RowLabels)
	if cellW < 1 {
		cellW = 1
	}
	if cellH < 1 {
		cellH = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	fill(img, img.Bounds(), color.White)

	for row := range grid.Cells {
		for col, v := range grid.Cells[row] {
			x0 := gap + col*(cellW+gap)
			y0 := gap + row*(cellH+gap)
			fill(img, image.Rect(x0, y0, x0+cellW, y0+cellH), heatColor(v, grid.Max))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, nil, errortypes.InternalError(err, "heatmap encoding failed")
	}
	return buf.Bytes(), grid, nil
}

// heatColor maps v in [0, max] onto a white-to-red ramp.
func heatColor(v, max float64) color.RGBA {
	if max <= 0 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	ratio := v / max
	if ratio > 1 {
		ratio = 1
	}
	shade := uint8(255 - ratio*200)
	return color.RGBA{R: 255, G: shade, B: shade, A: 255}
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}
