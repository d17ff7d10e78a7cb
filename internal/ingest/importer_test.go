package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/supertime1/MCP-demo/internal/clickstore"
)

func testEvents() []Event {
	return []Event{
		{Year: 2008, Month: 4, Day: 1, OrderSequence: 1, Country: "Poland", SessionID: 1,
			Category: "Trousers", Product: "P1", Colour: "black", Photography: "model",
			Price: 40, Page: "Page_1"},
		{Year: 2008, Month: 4, Day: 1, OrderSequence: 2, Country: "Poland", SessionID: 1,
			Category: "Trousers", Product: "P2", Colour: "navy", Photography: "model",
			Price: 60, Page: "Page_2"},
		{Year: 2008, Month: 4, Day: 2, OrderSequence: 1, Country: "Germany", SessionID: 2,
			Category: "Skirts", Product: "P1", Colour: "white", Photography: "no_model",
			Price: 30, Page: "Page_1"},
		// Session 3 never views a product or price: non-converting.
		{Year: 2008, Month: 4, Day: 3, OrderSequence: 1, Country: "Germany", SessionID: 3,
			Category: "Unknown", Product: "Unknown", Colour: "Unknown", Photography: "no_model",
			Page: "Unknown"},
	}
}

func newTestImporter(t *testing.T) (*Importer, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "ecommerce.db")
	im, err := NewImporter(dbPath)
	if err != nil {
		t.Fatalf("NewImporter returned error: %v", err)
	}
	t.Cleanup(func() { im.Close() })

	ctx := context.Background()
	if err := im.applySchema(ctx); err != nil {
		t.Fatalf("applySchema returned error: %v", err)
	}
	if err := im.insertEvents(ctx, testEvents()); err != nil {
		t.Fatalf("insertEvents returned error: %v", err)
	}
	if err := im.BuildRollups(ctx); err != nil {
		t.Fatalf("BuildRollups returned error: %v", err)
	}
	return im, dbPath
}

func TestImportAndRollups(t *testing.T) {
	im, _ := newTestImporter(t)

	counts, err := im.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if counts["clickstream"] != 4 {
		t.Errorf("Expected 4 clickstream rows, got %d", counts["clickstream"])
	}
	if counts["user_sessions"] != 3 {
		t.Errorf("Expected 3 sessions, got %d", counts["user_sessions"])
	}
	// P1 appears under two categories as two product rows, plus P2.
	if counts["product_analytics"] != 3 {
		t.Errorf("Expected 3 product rows, got %d", counts["product_analytics"])
	}
	if counts["country_analytics"] != 2 {
		t.Errorf("Expected 2 country rows, got %d", counts["country_analytics"])
	}
}

func TestRollupValues(t *testing.T) {
	_, dbPath := newTestImporter(t)

	// Read the rollups back through the serving layer.
	store := clickstore.NewSQLiteClickStore()
	if err := store.Initialize(dbPath); err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	res, err := store.Query(ctx,
		"SELECT total_clicks, converted, total_value FROM user_sessions WHERE session_id = 1", 0)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if res.RowCount() != 1 {
		t.Fatalf("Expected 1 row for session 1, got %d", res.RowCount())
	}
	row := res.Rows[0]
	if row[0] != int64(2) {
		t.Errorf("Expected 2 clicks for session 1, got %v", row[0])
	}
	if row[1] != int64(1) {
		t.Errorf("Session 1 viewed priced products and should be converted, got %v", row[1])
	}
	if row[2] != float64(100) {
		t.Errorf("Expected total value 100, got %v", row[2])
	}

	res, err = store.Query(ctx,
		"SELECT converted FROM user_sessions WHERE session_id = 3", 0)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if res.Rows[0][0] != int64(0) {
		t.Errorf("Session 3 should not be converted, got %v", res.Rows[0][0])
	}

	res, err = store.Query(ctx,
		"SELECT total_sessions, total_clicks, avg_session_length FROM country_analytics WHERE country = 'Germany'", 0)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	row = res.Rows[0]
	if row[0] != int64(2) || row[1] != int64(2) {
		t.Errorf("Unexpected Germany totals: %v", row)
	}
	if row[2] != float64(1) {
		t.Errorf("Expected avg session length 1, got %v", row[2])
	}

	res, err = store.Query(ctx,
		"SELECT total_views, unique_sessions, countries FROM product_analytics WHERE product_code = 'P1' AND category = 'Trousers'", 0)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	row = res.Rows[0]
	if row[0] != int64(1) || row[1] != int64(1) {
		t.Errorf("Unexpected P1/Trousers stats: %v", row)
	}
}

func TestRollupsAreIdempotent(t *testing.T) {
	im, _ := newTestImporter(t)
	ctx := context.Background()

	// Rebuilding must replace, not accumulate.
	if err := im.BuildRollups(ctx); err != nil {
		t.Fatalf("Second BuildRollups returned error: %v", err)
	}

	counts, err := im.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if counts["user_sessions"] != 3 || counts["country_analytics"] != 2 {
		t.Errorf("Rollup rebuild changed counts: %v", counts)
	}
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clicks.csv")
	content := "year;month;day;order;country;session ID;page 1 (main category);page 2 (clothing model);colour;location;model photography;price;price 2;page\n" +
		"2008;4;1;1;1;1;1;A13;1;1;1;28.5;2;1\n" +
		"2008;4;1;2;2;2;3;B4;5;3;2;38;1;2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	events, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Country != "Poland" || events[0].Product != "A13" || events[0].Price != 28.5 {
		t.Errorf("Unexpected first event: %+v", events[0])
	}
	if events[1].Country != "Germany" || events[1].Category != "Skirts" || events[1].Colour != "grey" {
		t.Errorf("Unexpected second event: %+v", events[1])
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	if _, err := ReadCSV("/nonexistent/clicks.csv"); err == nil {
		t.Error("Expected error for missing CSV file")
	}
}
