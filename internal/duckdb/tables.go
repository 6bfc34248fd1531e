package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-kb/internal/table"
)

// rowColumn preserves file order.
const rowColumn = "__kb_row"

// TableInfo describes an imported table.
type TableInfo struct {
	Name       string
	Columns    []string
	Rows       int64
	Source     FileFingerprint
	ImportedAt time.Time
}

// ErrTableNotFound is returned when a table has not been imported.
var ErrTableNotFound = errors.New("table not imported")

// ImportRaw replaces table name with raw, recording src as its origin.
func (s *Store) ImportRaw(name string, raw *table.Raw, src FileFingerprint) error {
	tbl, err := dataTable(name)
	if err != nil {
		return err
	}
	if len(raw.Columns) == 0 {
		return fmt.Errorf("import %s: table has no columns", name)
	}

	for _, col := range raw.Columns {
		if col == rowColumn {
			return fmt.Errorf("import %s: column name %q is reserved", name, rowColumn)
		}
	}

	defs := make([]string, 0, len(raw.Columns)+1)
	defs = append(defs, quoteIdent(rowColumn)+" BIGINT")
	for _, col := range raw.Columns {
		defs = append(defs, quoteIdent(col)+" VARCHAR")
	}
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// The appender shares conn, so its rows commit or roll back with the catalog.
	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("import %s: %w", name, err)
	}
	committed := false
	defer func() {
		if !committed {
			conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	if _, err := conn.ExecContext(ctx, "DELETE FROM kb_tables WHERE name = ?", name); err != nil {
		return fmt.Errorf("update catalog: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(tbl)); err != nil {
		return fmt.Errorf("drop %s: %w", tbl, err)
	}
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tbl), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", tbl, err)
	}
	if err := appendRows(conn, tbl, raw); err != nil {
		return fmt.Errorf("import %s: %w", name, err)
	}
	_, err = conn.ExecContext(ctx, `INSERT INTO kb_tables VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, strings.Join(raw.Columns, "\t"), int64(len(raw.Rows)),
		src.Path, src.Size, src.modTimeString(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update catalog: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("import %s: commit: %w", name, err)
	}
	committed = true
	return nil
}

// appendRows bulk-inserts rows on conn using the Appender API.
func appendRows(conn *sql.Conn, tbl string, raw *table.Raw) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", tbl)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	vals := make([]driver.Value, len(raw.Columns)+1)
	for i, cells := range raw.Rows {
		if len(cells) != len(raw.Columns) {
			appender.Close()
			return fmt.Errorf("row %d: expected %d cells, found %d", i+1, len(raw.Columns), len(cells))
		}
		vals[0] = int64(i)
		for j, c := range cells {
			vals[j+1] = c
		}
		if err := appender.AppendRow(vals...); err != nil {
			appender.Close()
			return fmt.Errorf("append row %d: %w", i+1, err)
		}
	}
	return appender.Close()
}

// Info returns the catalog entry for name.
func (s *Store) Info(name string) (TableInfo, error) {
	var (
		info    TableInfo
		columns string
		modTime string
	)
	err := s.db.QueryRow(`SELECT name, columns, row_count, source_path, source_size, source_modtime, imported_at
		FROM kb_tables WHERE name = ?`, name).Scan(
		&info.Name, &columns, &info.Rows, &info.Source.Path, &info.Source.Size, &modTime, &info.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return TableInfo{}, fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	if err != nil {
		return TableInfo{}, fmt.Errorf("query catalog: %w", err)
	}
	info.Columns = strings.Split(columns, "\t")
	if t, err := time.Parse(time.RFC3339Nano, modTime); err == nil {
		info.Source.ModTime = t
	}
	return info, nil
}

// Tables lists the imported tables by name.
func (s *Store) Tables() ([]TableInfo, error) {
	rows, err := s.db.Query("SELECT name FROM kb_tables ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		names = append(names, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	infos := make([]TableInfo, 0, len(names))
	for _, n := range names {
		info, err := s.Info(n)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Fresh reports whether name was imported from a file with the same size
// and modification time as src.
func (s *Store) Fresh(name string, src FileFingerprint) bool {
	info, err := s.Info(name)
	if err != nil {
		return false
	}
	return info.Source.Size == src.Size && info.Source.modTimeString() == src.modTimeString()
}

// LoadRaw reads an imported table back in file order.
func (s *Store) LoadRaw(name string) (*table.Raw, error) {
	info, err := s.Info(name)
	if err != nil {
		return nil, err
	}
	tbl, _ := dataTable(name)

	cols := make([]string, len(info.Columns))
	for i, c := range info.Columns {
		cols[i] = quoteIdent(c)
	}
	rows, err := s.db.Query(fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(cols, ", "), quoteIdent(tbl), quoteIdent(rowColumn)))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tbl, err)
	}
	defer rows.Close()

	raw := &table.Raw{Columns: info.Columns, Rows: make([][]string, 0, info.Rows)}
	cells := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tbl, err)
		}
		rec := make([]string, len(cells))
		for i, c := range cells {
			rec[i] = c.String
		}
		raw.Rows = append(raw.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", tbl, err)
	}
	return raw, nil
}

// Table loads an imported table and indexes it with opts.
func (s *Store) Table(name string, opts table.Options) (*table.Table, error) {
	raw, err := s.LoadRaw(name)
	if err != nil {
		return nil, err
	}
	return table.Build(raw, opts)
}
