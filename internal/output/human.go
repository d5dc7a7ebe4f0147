package output

import (
	"strings"

	"github.com/Select-Button-Games/Atlas-DataBase/internal/core"
)

type humanFormatter struct{}

// FormatDatabase renders every table in sorted name order: a "Table:"
// heading, a tab-terminated header line, then one line per row in
// insertion order. Missing cells render as the zero value of the column
// type, so two structurally equal databases always print identically.
func (humanFormatter) FormatDatabase(db *core.Database) (string, error) {
	if db == nil {
		return "", nil
	}

	var b strings.Builder
	for _, table := range db.Tables() {
		b.WriteString("Table: ")
		b.WriteString(table.Name)
		b.WriteByte('\n')

		for _, col := range table.Columns {
			b.WriteString(col.Name)
			b.WriteByte('\t')
		}
		b.WriteByte('\n')

		for _, row := range table.Rows {
			for _, col := range table.Columns {
				b.WriteString(row.GetOr(col.Name, col.Type).String())
				b.WriteByte('\t')
			}
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
