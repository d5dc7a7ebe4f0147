// Package storage reads and writes whole-database binary files. The
// current format opens with a 4-byte magic and a 1-byte version and
// persists foreign-key annotations; the two headerless legacy layouts
// (the original 3-type form and the 6-type form) remain readable, with
// the variant chosen by the caller.
package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Select-Button-Games/Atlas-DataBase/internal/core"
)

// Magic opens every file written by Save.
var Magic = [4]byte{'A', 'D', 'B', 'F'}

// Version is the current format version: the 6-type body plus per-column
// foreign-key annotations.
const Version = 3

// Format selects the reader variant for files without a header.
type Format int

const (
	// FormatAuto reads the header if the magic is present and otherwise
	// falls back to the 6-type legacy layout.
	FormatAuto Format = iota
	// FormatLegacyV2 is the headerless 6-type layout with a primary-key
	// byte per column and no foreign keys.
	FormatLegacyV2
	// FormatLegacyV1 is the original headerless 3-type layout (INT,
	// STRING, BOOL) without the primary-key byte.
	FormatLegacyV1
)

// Save writes db to path in the current format, replacing any existing
// file.
func Save(path string, db *core.Database) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storage: create %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := Write(w, db); err != nil {
		return fmt.Errorf("storage: write %q: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("storage: write %q: %w", path, err)
	}
	return f.Sync()
}

// Write streams db in the current format.
func Write(w io.Writer, db *core.Database) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{Version}); err != nil {
		return err
	}

	tables := db.Tables()
	if err := core.WriteSize(w, uint64(len(tables))); err != nil {
		return err
	}
	for _, t := range tables {
		if err := writeTable(w, t); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, t *core.Table) error {
	if err := core.WriteString(w, t.Name); err != nil {
		return err
	}

	if err := core.WriteSize(w, uint64(len(t.Columns))); err != nil {
		return err
	}
	for _, c := range t.Columns {
		if err := writeColumn(w, c); err != nil {
			return err
		}
	}

	if err := core.WriteSize(w, uint64(len(t.Rows))); err != nil {
		return err
	}
	for _, row := range t.Rows {
		for _, c := range t.Columns {
			if err := row.GetOr(c.Name, c.Type).EncodePayload(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeColumn(w io.Writer, c *core.Column) error {
	if err := core.WriteString(w, c.Name); err != nil {
		return err
	}
	if err := core.WriteSize(w, uint64(c.Type)); err != nil {
		return err
	}
	var pk byte
	if c.PrimaryKey {
		pk = 1
	}
	if _, err := w.Write([]byte{pk}); err != nil {
		return err
	}

	if c.ForeignKey == nil {
		_, err := w.Write([]byte{0})
		return err
	}
	if _, err := w.Write([]byte{1}); err != nil {
		return err
	}
	if err := core.WriteString(w, c.ForeignKey.ReferencedTable); err != nil {
		return err
	}
	return core.WriteString(w, c.ForeignKey.ReferencedColumn)
}

// Load reads the database stored at path.
func Load(path string, format Format) (*core.Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", path, err)
	}
	defer f.Close()

	db, err := Read(bufio.NewReader(f), format)
	if err != nil {
		return nil, fmt.Errorf("storage: read %q: %w", path, err)
	}
	return db, nil
}

// Read decodes a database from r according to format.
func Read(r *bufio.Reader, format Format) (*core.Database, error) {
	switch format {
	case FormatAuto:
		head, err := r.Peek(5)
		if err == nil && bytes.Equal(head[:4], Magic[:]) {
			if head[4] != Version {
				return nil, fmt.Errorf("%w: unsupported format version %d", core.ErrCorruptFile, head[4])
			}
			if _, err := r.Discard(5); err != nil {
				return nil, err
			}
			return readBody(r, true, true)
		}
		return readBody(r, true, false)
	case FormatLegacyV2:
		return readBody(r, true, false)
	case FormatLegacyV1:
		return readBody(r, false, false)
	}
	return nil, fmt.Errorf("storage: unknown format %d", format)
}

// readBody decodes the table list. sixTypes selects the 6-type layout
// (with the primary-key byte); withFK additionally expects foreign-key
// annotations per column.
func readBody(r io.Reader, sixTypes, withFK bool) (*core.Database, error) {
	numTables, err := core.ReadSize(r)
	if err != nil {
		return nil, corrupt(err)
	}

	db := core.NewDatabase()
	for i := uint64(0); i < numTables; i++ {
		t, err := readTable(r, sixTypes, withFK)
		if err != nil {
			return nil, err
		}
		db.AddTable(t)
	}
	return db, nil
}

func readTable(r io.Reader, sixTypes, withFK bool) (*core.Table, error) {
	name, err := core.ReadString(r, core.MaxNameLen)
	if err != nil {
		return nil, corrupt(err)
	}
	table := core.NewTable(name)

	numCols, err := core.ReadSize(r)
	if err != nil {
		return nil, corrupt(err)
	}
	for i := uint64(0); i < numCols; i++ {
		col, err := readColumn(r, sixTypes, withFK)
		if err != nil {
			return nil, err
		}
		if err := table.AddColumn(col); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrCorruptFile, err)
		}
	}

	numRows, err := core.ReadSize(r)
	if err != nil {
		return nil, corrupt(err)
	}
	for i := uint64(0); i < numRows; i++ {
		row := core.NewRow()
		for _, c := range table.Columns {
			v, err := core.DecodePayload(r, c.Type)
			if err != nil {
				return nil, corrupt(err)
			}
			row.Set(c.Name, v)
		}
		table.RestoreRow(row)
	}
	return table, nil
}

func readColumn(r io.Reader, sixTypes, withFK bool) (*core.Column, error) {
	name, err := core.ReadString(r, core.MaxNameLen)
	if err != nil {
		return nil, corrupt(err)
	}

	tag, err := core.ReadSize(r)
	if err != nil {
		return nil, corrupt(err)
	}
	maxTag := uint64(core.TypeBlob)
	if !sixTypes {
		maxTag = uint64(core.TypeBool)
	}
	if tag > maxTag {
		return nil, fmt.Errorf("%w: column %q has type tag %d", core.ErrCorruptFile, name, tag)
	}
	col := core.NewColumn(name, core.DataType(tag))

	if sixTypes {
		var pk [1]byte
		if _, err := io.ReadFull(r, pk[:]); err != nil {
			return nil, corrupt(err)
		}
		col.PrimaryKey = pk[0] != 0
	}

	if withFK {
		var present [1]byte
		if _, err := io.ReadFull(r, present[:]); err != nil {
			return nil, corrupt(err)
		}
		if present[0] != 0 {
			refTable, err := core.ReadString(r, core.MaxNameLen)
			if err != nil {
				return nil, corrupt(err)
			}
			refCol, err := core.ReadString(r, core.MaxNameLen)
			if err != nil {
				return nil, corrupt(err)
			}
			col.SetForeignKey(refTable, refCol)
		}
	}
	return col, nil
}

// corrupt folds short reads into the corrupt-file kind; other I/O errors
// pass through untouched.
func corrupt(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: unexpected end of file", core.ErrCorruptFile)
	}
	return err
}
