package ingest

import (
	"strconv"
	"strings"
)

// Event is one cleaned clickstream record ready for insertion.
type Event struct {
	Year          int
	Month         int
	Day           int
	OrderSequence int
	Country       string
	SessionID     int64
	Category      string
	Product       string
	Colour        string
	Location      int
	Photography   string
	Price         float64
	Price2        float64
	Page          string
}

// Code-to-name maps for the UCI dataset's integer-coded columns. Unmapped
// codes keep a prefixed form rather than being dropped.
var countryCodes = map[string]string{
	"1": "Poland", "2": "Germany", "3": "UK", "4": "France",
	"5": "Czech Republic", "6": "Slovakia", "29": "Other",
}

var categoryCodes = map[string]string{
	"1": "Trousers", "2": "Knitwear", "3": "Skirts", "4": "Blouses",
	"5": "Sale", "6": "Dresses", "7": "Lingerie", "8": "Jackets",
}

var colourCodes = map[string]string{
	"1": "black", "2": "navy", "3": "brown", "4": "white", "5": "grey",
	"6": "beige", "7": "pink", "8": "red", "9": "green", "10": "other",
}

// cleanRecord maps one raw semicolon-CSV record (keyed by header name)
// into an Event, decoding integer codes and defaulting blanks to Unknown.
func cleanRecord(row map[string]string) Event {
	return Event{
		Year:          atoiOr(row["year"], 2008),
		Month:         atoiOr(row["month"], 4),
		Day:           atoiOr(row["day"], 1),
		OrderSequence: atoiOr(row["order"], 1),
		Country:       mapCode(countryCodes, row["country"], "Country_"),
		SessionID:     int64(atoiOr(row["session ID"], 0)),
		Category:      mapCode(categoryCodes, row["page 1 (main category)"], "Category_"),
		Product:       orUnknown(row["page 2 (clothing model)"]),
		Colour:        mapCode(colourCodes, row["colour"], "Color_"),
		Location:      atoiOr(row["location"], 0),
		Photography:   photographyName(row["model photography"]),
		Price:         atofOr(row["price"], 0),
		Price2:        atofOr(row["price 2"], 0),
		Page:          pageName(row["page"]),
	}
}

func mapCode(codes map[string]string, code, prefix string) string {
	code = strings.TrimSpace(code)
	if code == "" || code == "0" {
		return "Unknown"
	}
	if name, ok := codes[code]; ok {
		return name
	}
	// Non-numeric values are already names (sample data path).
	if _, err := strconv.Atoi(code); err != nil {
		return code
	}
	return prefix + code
}

func orUnknown(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return "Unknown"
}

func photographyName(v string) string {
	switch strings.TrimSpace(v) {
	case "1", "model":
		return "model"
	default:
		return "no_model"
	}
}

func pageName(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return "Page_" + v
	}
	return "Unknown"
}

func atoiOr(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func atofOr(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}
