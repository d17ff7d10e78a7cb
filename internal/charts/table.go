package charts

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/supertime1/MCP-demo/internal/clickstore"
	"github.com/supertime1/MCP-demo/internal/errortypes"
)

// fieldIndex resolves a field name against the result columns, returning a
// validation error when the field is absent.
func fieldIndex(res *clickstore.Result, field string) (int, error) {
	for i, col := range res.Columns {
		if col == field {
			return i, nil
		}
	}
	return 0, errortypes.ValidationError(
		fmt.Errorf("field %q not present in data (have %v)", field, res.Columns),
		"unknown chart field").WithField("field", field)
}

// labelsOf renders one column as display labels.
func labelsOf(res *clickstore.Result, idx int) []string {
	labels := make([]string, res.RowCount())
	for i, row := range res.Rows {
		labels[i] = fmt.Sprint(row[idx])
	}
	return labels
}

// numbersOf coerces one column to float64 values. Non-numeric text is a
// validation error; nil counts as zero.
func numbersOf(res *clickstore.Result, idx int) ([]float64, error) {
	nums := make([]float64, res.RowCount())
	for i, row := range res.Rows {
		switch v := row[idx].(type) {
		case int64:
			nums[i] = float64(v)
		case float64:
			nums[i] = v
		case nil:
			nums[i] = 0
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errortypes.ValidationError(
					fmt.Errorf("value %q in column %q is not numeric", v, res.Columns[idx]),
					"non-numeric chart value")
			}
			nums[i] = f
		default:
			return nil, errortypes.ValidationError(
				fmt.Errorf("column %q holds unsupported type %T", res.Columns[idx], v),
				"non-numeric chart value")
		}
	}
	return nums, nil
}

// FromRows builds a tabular result from inline records. Columns are the
// sorted union of the record keys so the shape is deterministic.
func FromRows(rows []map[string]interface{}) (*clickstore.Result, error) {
	if len(rows) == 0 {
		return nil, errortypes.ValidationError(errors.New("inline data is empty"), "no chart data")
	}

	keySet := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			keySet[k] = true
		}
	}
	columns := make([]string, 0, len(keySet))
	for k := range keySet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	res := &clickstore.Result{Columns: columns}
	for _, row := range rows {
		out := make([]interface{}, len(columns))
		for i, col := range columns {
			out[i] = normalize(row[col])
		}
		res.Rows = append(res.Rows, out)
	}
	return res, nil
}

// normalize maps JSON-decoded values onto the store's row value types.
func normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	case int:
		return int64(n)
	default:
		return v
	}
}
