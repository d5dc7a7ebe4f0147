// Package output renders database contents for the console. The human
// formatter reproduces the engine's classic tab-separated dump; the
// interface leaves room for other renderings.
package output

import (
	"github.com/Select-Button-Games/Atlas-DataBase/internal/core"
)

// Formatter renders a database to text.
type Formatter interface {
	FormatDatabase(db *core.Database) (string, error)
}

// New returns the formatter for the given format name. The empty string
// and "human" select the tab-separated dump.
func New(format string) (Formatter, error) {
	switch format {
	case "", "human":
		return humanFormatter{}, nil
	}
	return nil, &UnsupportedFormatError{Format: format}
}

// UnsupportedFormatError reports an unknown output format name.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported output format: " + e.Format
}
