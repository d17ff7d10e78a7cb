package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"

	"crawshaw.io/sqlite"

	"github.com/supertime1/MCP-demo/internal/errortypes"
)

// Importer builds the analytics database from scratch.
type Importer struct {
	conn *sqlite.Conn
}

// NewImporter creates or opens the database file at dbPath.
func NewImporter(dbPath string) (*Importer, error) {
	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_READWRITE|sqlite.SQLITE_OPEN_CREATE)
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to open database for import").
			WithField("path", dbPath)
	}
	return &Importer{conn: conn}, nil
}

// Close releases the import connection.
func (im *Importer) Close() error {
	if im.conn != nil {
		return im.conn.Close()
	}
	return nil
}

// Run performs the full setup: schema, event load, rollups. When csvPath is
// empty, generated sample data stands in for the UCI download.
func (im *Importer) Run(ctx context.Context, csvPath string, seed int64) error {
	if err := im.applySchema(ctx); err != nil {
		return err
	}

	var events []Event
	if csvPath != "" {
		var err error
		events, err = ReadCSV(csvPath)
		if err != nil {
			return err
		}
		slog.Info("Loaded clickstream events from CSV", "path", csvPath, "events", len(events))
	} else {
		events = GenerateSample(seed)
		slog.Info("Generated sample clickstream events", "events", len(events), "seed", seed)
	}

	if err := im.insertEvents(ctx, events); err != nil {
		return err
	}
	if err := im.BuildRollups(ctx); err != nil {
		return err
	}

	slog.Info("Database setup completed")
	return nil
}

// ReadCSV parses the UCI semicolon-delimited clickstream CSV into cleaned
// events.
func ReadCSV(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to open clickstream CSV").
			WithField("path", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, errortypes.ValidationError(err, "clickstream CSV has no header")
	}

	var events []Event
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errortypes.ValidationError(err, "malformed clickstream CSV record")
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		events = append(events, cleanRecord(row))
	}
	return events, nil
}

const insertEventSQL = `INSERT INTO clickstream
	(year, month, day, order_sequence, country, session_id, page_1_main_category,
	 page_2_clothing_model, colour, location, model_photography, price, price_2, page)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// insertEvents bulk-inserts all events inside one transaction.
func (im *Importer) insertEvents(ctx context.Context, events []Event) error {
	im.conn.SetInterrupt(ctx.Done())
	defer im.conn.SetInterrupt(nil)

	if err := im.exec("BEGIN"); err != nil {
		return err
	}

	stmt, err := im.conn.Prepare(insertEventSQL)
	if err != nil {
		im.exec("ROLLBACK")
		return errortypes.QueryError(err, "failed to prepare event insert")
	}

	for _, e := range events {
		stmt.BindInt64(1, int64(e.Year))
		stmt.BindInt64(2, int64(e.Month))
		stmt.BindInt64(3, int64(e.Day))
		stmt.BindInt64(4, int64(e.OrderSequence))
		stmt.BindText(5, e.Country)
		stmt.BindInt64(6, e.SessionID)
		stmt.BindText(7, e.Category)
		stmt.BindText(8, e.Product)
		stmt.BindText(9, e.Colour)
		stmt.BindInt64(10, int64(e.Location))
		stmt.BindText(11, e.Photography)
		stmt.BindFloat(12, e.Price)
		stmt.BindFloat(13, e.Price2)
		stmt.BindText(14, e.Page)

		if _, err := stmt.Step(); err != nil {
			stmt.Reset()
			im.exec("ROLLBACK")
			return errortypes.QueryError(err, "failed to insert clickstream event")
		}
		stmt.Reset()
		stmt.ClearBindings()
	}

	if err := im.exec("COMMIT"); err != nil {
		return err
	}
	slog.Info("Inserted clickstream events", "events", len(events))
	return nil
}

// applySchema creates tables and indexes.
func (im *Importer) applySchema(ctx context.Context) error {
	im.conn.SetInterrupt(ctx.Done())
	defer im.conn.SetInterrupt(nil)

	for _, stmt := range schemaStatements {
		if err := im.exec(stmt); err != nil {
			return err
		}
	}
	slog.Info("Database schema created")
	return nil
}

// BuildRollups recomputes user_sessions, product_analytics, and
// country_analytics wholesale inside one transaction, so readers never see
// a partially rebuilt rollup.
func (im *Importer) BuildRollups(ctx context.Context) error {
	im.conn.SetInterrupt(ctx.Done())
	defer im.conn.SetInterrupt(nil)

	if err := im.exec("BEGIN"); err != nil {
		return err
	}
	for _, stmt := range rollupStatements {
		if err := im.exec(stmt); err != nil {
			im.exec("ROLLBACK")
			return err
		}
	}
	if err := im.exec("COMMIT"); err != nil {
		return err
	}
	slog.Info("Analytics rollup tables rebuilt")
	return nil
}

// Verify returns per-table row counts for post-setup reporting.
func (im *Importer) Verify(ctx context.Context) (map[string]int64, error) {
	im.conn.SetInterrupt(ctx.Done())
	defer im.conn.SetInterrupt(nil)

	counts := make(map[string]int64)
	for _, table := range []string{"clickstream", "user_sessions", "product_analytics", "country_analytics"} {
		stmt, err := im.conn.Prepare("SELECT COUNT(*) FROM " + table)
		if err != nil {
			return nil, errortypes.QueryError(err, "failed to count rows").WithField("table", table)
		}
		hasRow, err := stmt.Step()
		if err != nil {
			stmt.Reset()
			return nil, errortypes.QueryError(err, "failed to count rows").WithField("table", table)
		}
		if hasRow {
			counts[table] = stmt.ColumnInt64(0)
		}
		stmt.Reset()
	}
	return counts, nil
}

// exec runs a statement that returns no rows.
func (im *Importer) exec(sql string) error {
	stmt, err := im.conn.Prepare(sql)
	if err != nil {
		return errortypes.QueryError(err, "statement failed").WithField("sql", sql)
	}
	defer stmt.Reset()
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return errortypes.QueryError(err, "statement failed").WithField("sql", sql)
		}
		if !hasRow {
			return nil
		}
	}
}
