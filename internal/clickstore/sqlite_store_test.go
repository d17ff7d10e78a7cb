package clickstore

import (
	"context"
	"path/filepath"
	"testing"

	"crawshaw.io/sqlite"

	"github.com/supertime1/MCP-demo/internal/errortypes"
)

// newTestStore creates a populated temp database and an initialized store
// over it.
func newTestStore(t *testing.T) *SQLiteClickStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_READWRITE|sqlite.SQLITE_OPEN_CREATE)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	statements := []string{
		`CREATE TABLE clickstream (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			country TEXT NOT NULL,
			session_id INTEGER NOT NULL,
			price REAL NOT NULL
		)`,
		`INSERT INTO clickstream (country, session_id, price) VALUES ('Poland', 1, 48.5)`,
		`INSERT INTO clickstream (country, session_id, price) VALUES ('Poland', 1, 0)`,
		`INSERT INTO clickstream (country, session_id, price) VALUES ('Germany', 2, 33.0)`,
	}
	for _, stmtSQL := range statements {
		stmt, err := conn.Prepare(stmtSQL)
		if err != nil {
			t.Fatalf("Failed to prepare %q: %v", stmtSQL, err)
		}
		if _, err := stmt.Step(); err != nil {
			t.Fatalf("Failed to execute %q: %v", stmtSQL, err)
		}
		stmt.Reset()
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Failed to close setup connection: %v", err)
	}

	store := NewSQLiteClickStore()
	if err := store.Initialize(dbPath); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestQuery(t *testing.T) {
	store := newTestStore(t)

	res, err := store.Query(context.Background(), "SELECT country, COUNT(*) AS clicks FROM clickstream GROUP BY country ORDER BY country", 0)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	if len(res.Columns) != 2 || res.Columns[0] != "country" || res.Columns[1] != "clicks" {
		t.Errorf("Unexpected columns: %v", res.Columns)
	}
	if res.RowCount() != 2 {
		t.Fatalf("Expected 2 rows, got %d", res.RowCount())
	}
	if res.Rows[0][0] != "Germany" || res.Rows[0][1] != int64(1) {
		t.Errorf("Unexpected first row: %v", res.Rows[0])
	}
	if res.Rows[1][0] != "Poland" || res.Rows[1][1] != int64(2) {
		t.Errorf("Unexpected second row: %v", res.Rows[1])
	}
	if res.Truncated {
		t.Error("Result should not be truncated")
	}
}

func TestQueryRowCap(t *testing.T) {
	store := newTestStore(t)

	res, err := store.Query(context.Background(), "SELECT * FROM clickstream", 2)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if res.RowCount() != 2 {
		t.Errorf("Expected 2 rows under cap, got %d", res.RowCount())
	}
	if !res.Truncated {
		t.Error("Expected truncation flag when the cap cuts rows")
	}
}

func TestQueryRejectsWrites(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Query(context.Background(), "DELETE FROM clickstream", 0)
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for write statement, got %v", err)
	}

	// The store contents must be untouched.
	res, err := store.Query(context.Background(), "SELECT COUNT(*) FROM clickstream", 0)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if res.Rows[0][0] != int64(3) {
		t.Errorf("Expected 3 rows intact, got %v", res.Rows[0][0])
	}
}

func TestQueryMalformedSQL(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Query(context.Background(), "SELECT FROM WHERE", 0)
	if !errortypes.IsQueryError(err) {
		t.Errorf("Expected query error for malformed SQL, got %v", err)
	}
}

func TestQueryCanceledContext(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Query(ctx, "SELECT * FROM clickstream", 0)
	if !errortypes.IsTimeoutError(err) {
		t.Errorf("Expected timeout error for canceled context, got %v", err)
	}
}

func TestTableSchema(t *testing.T) {
	store := newTestStore(t)

	cols, err := store.TableSchema(context.Background(), "clickstream")
	if err != nil {
		t.Fatalf("TableSchema returned error: %v", err)
	}
	if len(cols) != 4 {
		t.Fatalf("Expected 4 columns, got %d", len(cols))
	}
	if cols[0].Name != "id" {
		t.Errorf("Expected first column id, got %s", cols[0].Name)
	}
	if cols[1].Name != "country" || cols[1].Type != "TEXT" || cols[1].Nullable {
		t.Errorf("Unexpected country column: %+v", cols[1])
	}
}

func TestTableSchemaUnknownTable(t *testing.T) {
	store := newTestStore(t)

	_, err := store.TableSchema(context.Background(), "secrets")
	if !errortypes.IsNotFoundError(err) {
		t.Errorf("Expected not_found error, got %v", err)
	}
}

func TestSampleData(t *testing.T) {
	store := newTestStore(t)

	res, err := store.SampleData(context.Background(), "clickstream", 2)
	if err != nil {
		t.Fatalf("SampleData returned error: %v", err)
	}
	if res.RowCount() != 2 {
		t.Errorf("Expected 2 sample rows, got %d", res.RowCount())
	}

	// Sampling is idempotent: same rows on every call.
	again, err := store.SampleData(context.Background(), "clickstream", 2)
	if err != nil {
		t.Fatalf("SampleData returned error: %v", err)
	}
	if again.Rows[0][0] != res.Rows[0][0] || again.Rows[1][0] != res.Rows[1][0] {
		t.Error("Expected identical rows across sampling calls")
	}
}

func TestSampleDataUnknownTable(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SampleData(context.Background(), "nope", 5)
	if !errortypes.IsNotFoundError(err) {
		t.Errorf("Expected not_found error, got %v", err)
	}
}

func TestUninitializedStore(t *testing.T) {
	store := NewSQLiteClickStore()
	_, err := store.Query(context.Background(), "SELECT 1", 0)
	if err == nil {
		t.Error("Expected error from uninitialized store")
	}
}
