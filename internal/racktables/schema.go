package racktables

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TablePlan records what the prober learned about one optional or
// schema-variant table. A Missing plan causes the dependent stage to be
// skipped; a present plan carries the column names the queries should use.
type TablePlan struct {
	Table   string
	Missing bool
	Columns []string
	// Picked maps a logical column role to the physical column chosen
	// for it, e.g. "name" -> "pctype_name".
	Picked map[string]string
}

// Has reports whether the table carries the given physical column.
func (p TablePlan) Has(column string) bool {
	for _, c := range p.Columns {
		if strings.EqualFold(c, column) {
			return true
		}
	}
	return false
}

// Col returns the physical column picked for a logical role, or "" when
// nothing was picked.
func (p TablePlan) Col(role string) string {
	return p.Picked[role]
}

// Prober inspects the source schema once at startup so the stages never
// issue SHOW COLUMNS themselves.
type Prober struct {
	db *sql.DB
}

func NewProber(db *sql.DB) *Prober {
	return &Prober{db: db}
}

// TableExists checks for the table via SHOW TABLES LIKE.
func (p *Prober) TableExists(ctx context.Context, table string) (bool, error) {
	// Table names come from static stage code, never from user input.
	row := p.db.QueryRowContext(ctx, fmt.Sprintf("SHOW TABLES LIKE '%s'", table))
	var name string
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return true, nil
}

// Columns returns the column names of a table in definition order.
func (p *Prober) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, "SHOW COLUMNS FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var field, colType, null, key string
		var def sql.NullString
		var extra string
		if err := rows.Scan(&field, &colType, &null, &key, &def, &extra); err != nil {
			return nil, err
		}
		columns = append(columns, field)
	}
	return columns, rows.Err()
}

// Plan probes one table and picks a column for each requested role. The
// preference lists are tried in order; when none matches, the first column
// containing "name" is used, and as a last resort the first column of the
// table with a logged warning.
func (p *Prober) Plan(ctx context.Context, table string, roles map[string][]string) (TablePlan, error) {
	exists, err := p.TableExists(ctx, table)
	if err != nil {
		return TablePlan{}, err
	}
	if !exists {
		zap.S().Warnw("source table missing", "table", table)
		return TablePlan{Table: table, Missing: true}, nil
	}

	columns, err := p.Columns(ctx, table)
	if err != nil {
		return TablePlan{}, err
	}

	plan := TablePlan{Table: table, Columns: columns, Picked: make(map[string]string)}
	for role, preferred := range roles {
		if col := PickColumn(columns, preferred); col != "" {
			if !contains(preferred, col) {
				zap.S().Warnw("no preferred column found, falling back",
					"table", table, "role", role, "picked", col)
			}
			plan.Picked[role] = col
		}
	}
	return plan, nil
}

// PickColumn chooses a column from the available set: first preferred
// match, then the first column containing "name", then the first column.
func PickColumn(columns []string, preferred []string) string {
	for _, want := range preferred {
		for _, col := range columns {
			if col == want {
				return col
			}
		}
	}
	for _, col := range columns {
		if strings.Contains(strings.ToLower(col), "name") {
			return col
		}
	}
	if len(columns) > 0 {
		return columns[0]
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
