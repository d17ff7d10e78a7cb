package clickstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crawshaw.io/sqlite"

	"github.com/supertime1/MCP-demo/internal/errortypes"
)

// SQLiteClickStore is an implementation of ClickStore that uses SQLite.
type SQLiteClickStore struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	dbPath string
}

// NewSQLiteClickStore creates a new SQLiteClickStore instance.
func NewSQLiteClickStore() *SQLiteClickStore {
	return &SQLiteClickStore{}
}

// Initialize opens the SQLite database at the given path. The database is
// expected to be pre-populated; this layer never writes to it.
func (s *SQLiteClickStore) Initialize(dbPath string) error {
	s.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return errortypes.ConfigError(err, "failed to open SQLite database").
			WithField("path", dbPath)
	}
	s.conn = conn
	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteClickStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Tables returns the known-tables set, sorted.
func (s *SQLiteClickStore) Tables() []string {
	return KnownTables()
}

// Query executes a read-only SQL statement, capping the result at maxRows.
func (s *SQLiteClickStore) Query(ctx context.Context, sql string, maxRows int) (*Result, error) {
	if err := CheckReadOnly(sql); err != nil {
		return nil, err
	}
	return s.execute(ctx, sql, nil, maxRows)
}

// TableSchema returns the columns of a known table.
func (s *SQLiteClickStore) TableSchema(ctx context.Context, table string) ([]Column, error) {
	if err := CheckKnownTable(table); err != nil {
		return nil, err
	}

	// The table name is validated against the fixed known-tables set,
	// so interpolation here cannot inject.
	res, err := s.execute(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table), nil, 0)
	if err != nil {
		return nil, err
	}

	// PRAGMA table_info columns: cid, name, type, notnull, dflt_value, pk
	cols := make([]Column, 0, res.RowCount())
	for _, row := range res.Rows {
		name, _ := row[1].(string)
		typ, _ := row[2].(string)
		notnull, _ := row[3].(int64)
		cols = append(cols, Column{Name: name, Type: typ, Nullable: notnull == 0})
	}
	return cols, nil
}

// SampleData returns the first n rows of a known table in store-native order.
func (s *SQLiteClickStore) SampleData(ctx context.Context, table string, n int) (*Result, error) {
	if err := CheckKnownTable(table); err != nil {
		return nil, err
	}
	return s.execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT ?", table), []interface{}{n}, 0)
}

// execute runs one statement under the connection mutex with the context
// deadline wired to the SQLite interrupt. maxRows of 0 means uncapped.
func (s *SQLiteClickStore) execute(ctx context.Context, sql string, params []interface{}, maxRows int) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, errortypes.ConfigError(nil, "store not initialized")
	}

	start := time.Now()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	stmt, err := s.conn.Prepare(sql)
	if err != nil {
		return nil, s.wrapStoreError(ctx, err, sql)
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	for i, p := range params {
		switch v := p.(type) {
		case int:
			stmt.BindInt64(i+1, int64(v))
		case int64:
			stmt.BindInt64(i+1, v)
		case float64:
			stmt.BindFloat(i+1, v)
		case string:
			stmt.BindText(i+1, v)
		case nil:
			stmt.BindNull(i + 1)
		default:
			stmt.BindText(i+1, fmt.Sprint(v))
		}
	}

	result := &Result{}
	for i := 0; i < stmt.ColumnCount(); i++ {
		result.Columns = append(result.Columns, stmt.ColumnName(i))
	}

	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, s.wrapStoreError(ctx, err, sql)
		}
		if !hasRow {
			break
		}

		if maxRows > 0 && len(result.Rows) >= maxRows {
			result.Truncated = true
			break
		}

		row := make([]interface{}, stmt.ColumnCount())
		for i := range row {
			switch stmt.ColumnType(i) {
			case sqlite.SQLITE_INTEGER:
				row[i] = stmt.ColumnInt64(i)
			case sqlite.SQLITE_FLOAT:
				row[i] = stmt.ColumnFloat(i)
			case sqlite.SQLITE_TEXT:
				row[i] = stmt.ColumnText(i)
			case sqlite.SQLITE_BLOB:
				buf := make([]byte, stmt.ColumnLen(i))
				stmt.ColumnBytes(i, buf)
				row[i] = buf
			default:
				row[i] = nil
			}
		}
		result.Rows = append(result.Rows, row)
	}

	result.ElapsedMs = float64(time.Since(start).Microseconds()) / 1000.0
	return result, nil
}

// wrapStoreError classifies an execution failure: an expired context means
// the statement hit its deadline, everything else is a store rejection.
func (s *SQLiteClickStore) wrapStoreError(ctx context.Context, err error, sql string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errortypes.TimeoutError(err, "statement exceeded query timeout")
	}
	if ctx.Err() == context.Canceled {
		return errortypes.TimeoutError(err, "statement canceled")
	}
	return errortypes.QueryError(err, "statement failed").WithField("sql", sql)
}
