// Package database loads generated dumps into PostgreSQL.
//
// A dump carries its own BEGIN/COMMIT, so it is sent as one simple-protocol
// request and either applies completely or not at all. Afterwards the row
// counts of the seeded tables are compared with the sequence values the dump
// sets, which catch dumps applied on top of existing data.
package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Applier executes dumps over a single connection.
type Applier struct {
	conn *pgx.Conn
}

// Connect opens a connection to dsn.
func Connect(ctx context.Context, dsn string) (*Applier, error) {
	if dsn == "" {
		return nil, errors.New("database URL is required")
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgx connect: %w", err)
	}
	return &Applier{conn: conn}, nil
}

// Close closes the connection.
func (a *Applier) Close(ctx context.Context) error {
	return a.conn.Close(ctx)
}

// Apply executes every statement of script.
func (a *Applier) Apply(ctx context.Context, script string) error {
	if _, err := a.conn.PgConn().Exec(ctx, script).ReadAll(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("apply dump: %s (%s)", pgErr.Message, pgErr.SQLState())
		}
		return fmt.Errorf("apply dump: %w", err)
	}
	return nil
}

// Counts returns the number of rows of every table.
func (a *Applier) Counts(ctx context.Context, tables []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var n int64
		query := "SELECT count(*) FROM " + pgx.Identifier{table}.Sanitize()
		if err := a.conn.QueryRow(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

var setvalRe = regexp.MustCompile(`(?m)^SELECT setval\('"(\w+)_id_seq"', (\d+), (true|false)\);$`)

// ExpectedCounts reads the row count of every table from the sequence resets
// at the end of a dump. A reset with is_called = false means the table is
// empty.
func ExpectedCounts(script string) map[string]int64 {
	counts := make(map[string]int64)
	for _, m := range setvalRe.FindAllStringSubmatch(script, -1) {
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			continue
		}
		if m[3] == "false" {
			n = 0
		}
		counts[m[1]] = n
	}
	return counts
}

// Tables returns the table names of counts in sorted order.
func Tables(counts map[string]int64) []string {
	tables := make([]string, 0, len(counts))
	for t := range counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

// Verify compares expected and actual row counts and reports every table
// that differs.
func Verify(expected, actual map[string]int64) error {
	var mismatches []string
	for _, table := range Tables(expected) {
		if got := actual[table]; got != expected[table] {
			mismatches = append(mismatches, fmt.Sprintf("%s: want %d rows, have %d", table, expected[table], got))
		}
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("row count mismatch: %s", strings.Join(mismatches, "; "))
	}
	return nil
}
