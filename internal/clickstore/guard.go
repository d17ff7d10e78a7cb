package clickstore

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/supertime1/MCP-demo/internal/errortypes"
)

// Statements may only start with one of these.
var allowedPrefixes = []string{"SELECT", "WITH", "EXPLAIN"}

// Keywords that would modify the store or its schema. Checked on word
// boundaries so column names like "updated_at" pass.
var writeKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER",
	"CREATE", "TRUNCATE", "REPLACE", "PRAGMA", "ATTACH", "DETACH",
}

var writeKeywordRe = regexp.MustCompile(`\b(` + strings.Join(writeKeywords, "|") + `)\b`)

// CheckReadOnly rejects any statement that is not a plain read. It returns
// a validation error naming the offending keyword, or nil.
func CheckReadOnly(sql string) error {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	if upper == "" {
		return errortypes.ValidationError(errors.New("empty statement"), "query rejected")
	}

	allowed := false
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(upper, prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return errortypes.ValidationError(
			errors.New("only SELECT, WITH, and EXPLAIN statements are allowed"),
			"query rejected")
	}

	if kw := writeKeywordRe.FindString(upper); kw != "" {
		return errortypes.ValidationError(
			errors.New("statement contains disallowed keyword "+kw),
			"query rejected").WithField("keyword", kw)
	}

	return nil
}

// knownTables is the fixed set of tables the schema and sampling tools
// will address. sqlite_sequence backs the event log's AUTOINCREMENT id.
var knownTables = map[string]bool{
	"clickstream":       true,
	"user_sessions":     true,
	"product_analytics": true,
	"country_analytics": true,
	"sqlite_sequence":   true,
}

// CheckKnownTable returns a not-found error for tables outside the
// known-tables set.
func CheckKnownTable(table string) error {
	if !knownTables[table] {
		return errortypes.NotFoundError(
			errors.New("unknown table "+table),
			"table not found").WithField("table", table)
	}
	return nil
}

// KnownTables returns the known-tables set, sorted.
func KnownTables() []string {
	names := make([]string, 0, len(knownTables))
	for name := range knownTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
