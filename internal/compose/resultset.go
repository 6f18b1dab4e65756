package compose

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ResultSet is an ordered sequence of rows with named columns.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

func (r *ResultSet) Len() int {
	return len(r.Rows)
}

// Row returns row i as a column name to value mapping.
func (r *ResultSet) Row(i int) map[string]any {
	row := make(map[string]any, len(r.Columns))
	for idx, column := range r.Columns {
		row[column] = r.Rows[i][idx]
	}
	return row
}

// Equal reports whether both result sets have the same columns and the same
// rows in the same order.
func (r *ResultSet) Equal(other *ResultSet) bool {
	if r == nil || other == nil {
		return r == other
	}
	return reflect.DeepEqual(r.Columns, other.Columns) && reflect.DeepEqual(r.Rows, other.Rows)
}

// String renders a header line followed by one line per row, cells separated
// by " | ".
func (r *ResultSet) String() string {
	var builder strings.Builder
	builder.WriteString(strings.Join(r.Columns, " | "))
	for _, row := range r.Rows {
		builder.WriteString("\n")
		cells := make([]string, len(row))
		for idx, value := range row {
			cells[idx] = FormatValue(value)
		}
		builder.WriteString(strings.Join(cells, " | "))
	}
	return builder.String()
}

// FormatValue renders a scanned value the way the engine would print it.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// normalizeValue makes a scanned value independent of the column's declared
// type. The driver parses date and time columns into time.Time, but a
// temporary table created from a query declares no such types and yields
// the stored text instead, so times are rendered back to that text.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(sqlite3.SQLiteTimestampFormats[0])
	default:
		return value
	}
}

func scanResultSet(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &ResultSet{Columns: columns, Rows: make([][]any, 0)}
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for idx := range values {
			targets[idx] = &values[idx]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		for idx, value := range values {
			values[idx] = normalizeValue(value)
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}
