package ingest

import (
	"fmt"
	"math/rand"
)

// Sample data dimensions, scaled for a demo database.
const (
	sampleSessions = 5000
	sampleClicks   = 25000
)

var (
	sampleCountries  = []string{"Poland", "Germany", "UK", "France", "Czech Republic", "Slovakia", "Other"}
	sampleCategories = []string{"Trousers", "Knitwear", "Skirts", "Blouses", "Sale", "Dresses", "Lingerie", "Jackets"}
	sampleColours    = []string{"black", "navy", "brown", "white", "grey", "beige", "pink", "red", "green"}
	samplePages      = []string{"category", "product", "cart", "checkout"}
)

// GenerateSample produces synthetic clickstream events matching the shape
// of the real UCI dataset: April-August 2008, sparse optional fields. The
// seed makes runs reproducible.
func GenerateSample(seed int64) []Event {
	rng := rand.New(rand.NewSource(seed))

	events := make([]Event, 0, sampleClicks)
	for i := 0; i < sampleClicks; i++ {
		e := Event{
			Year:          2008,
			Month:         4 + rng.Intn(5),
			Day:           1 + rng.Intn(30),
			OrderSequence: 1 + rng.Intn(20),
			Country:       sampleCountries[rng.Intn(len(sampleCountries))],
			SessionID:     int64(1 + rng.Intn(sampleSessions)),
			Category:      "Unknown",
			Product:       "Unknown",
			Colour:        "Unknown",
			Photography:   "no_model",
			Page:          "Unknown",
		}
		if rng.Float64() > 0.3 {
			e.Category = sampleCategories[rng.Intn(len(sampleCategories))]
		}
		if rng.Float64() > 0.4 {
			e.Product = fmt.Sprintf("P%d", 1+rng.Intn(217))
		}
		if rng.Float64() > 0.5 {
			e.Colour = sampleColours[rng.Intn(len(sampleColours))]
		}
		if rng.Float64() > 0.3 {
			e.Location = 1 + rng.Intn(6)
		}
		if rng.Float64() > 0.6 {
			e.Photography = "model"
		}
		if rng.Float64() > 0.4 {
			e.Price = 20 + rng.Float64()*180
		}
		if rng.Float64() > 0.7 {
			e.Price2 = 20 + rng.Float64()*180
		}
		if rng.Float64() > 0.2 {
			e.Page = "Page_" + samplePages[rng.Intn(len(samplePages))]
		}
		events = append(events, e)
	}
	return events
}
