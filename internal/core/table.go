package core

import (
	"fmt"
)

// Table holds an ordered column list, rows in insertion order (the
// physical scan order), and the primary-key tree used for uniqueness
// checks and lookups.
type Table struct {
	Name    string
	Columns []*Column
	Rows    []Row

	// IndexDegree is used when allocating the primary-key tree and
	// column indexes. Defaults to DefaultIndexDegree.
	IndexDegree int

	pkTree *ValueTree
}

// NewTable returns an empty table.
func NewTable(name string) *Table {
	return &Table{Name: name, IndexDegree: DefaultIndexDegree}
}

// GetColumn returns the column with the given name, or nil.
func (t *Table) GetColumn(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the primary-key column, or nil when the table has
// none.
func (t *Table) PrimaryKey() *Column {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c
		}
	}
	return nil
}

// PrimaryKeyTree returns the table's primary-key tree, or nil.
func (t *Table) PrimaryKeyTree() *ValueTree { return t.pkTree }

// AddColumn appends a column. A duplicate name fails, as does a second
// primary key. Adding the primary-key column allocates both the column's
// index and the table's primary-key tree.
func (t *Table) AddColumn(c *Column) error {
	if t.GetColumn(c.Name) != nil {
		return fmt.Errorf("table %q: column %q: %w", t.Name, c.Name, ErrDuplicateColumn)
	}
	if c.PrimaryKey {
		if t.PrimaryKey() != nil {
			return fmt.Errorf("table %q: %w", t.Name, ErrDuplicatePrimaryKeyColumn)
		}
		if err := c.MakePrimaryKey(t.degree()); err != nil {
			return err
		}
		if t.pkTree == nil {
			tree, err := NewValueTree(t.degree())
			if err != nil {
				return err
			}
			t.pkTree = tree
		}
	}
	t.Columns = append(t.Columns, c)
	return nil
}

func (t *Table) degree() int {
	if t.IndexDegree < 2 {
		return DefaultIndexDegree
	}
	return t.IndexDegree
}

// AddRow validates and appends a row. All checks run before any mutation:
// primary-key uniqueness against the tree, then foreign-key integrity
// against the manager's current database. On success the row is appended
// and every index is fed.
func (t *Table) AddRow(row Row, mgr *DatabaseManager) error {
	if pk := t.PrimaryKey(); pk != nil && t.pkTree != nil {
		v := row.GetOr(pk.Name, pk.Type)
		if t.pkTree.Search(v) {
			return fmt.Errorf("table %q: %w", t.Name, ErrDuplicatePrimaryKey)
		}
	}

	if err := t.validateForeignKeys(row, mgr); err != nil {
		return err
	}

	t.Rows = append(t.Rows, row)
	for _, c := range t.Columns {
		if c.Index() != nil {
			c.AddToIndex(row.GetOr(c.Name, c.Type))
		}
	}
	if pk := t.PrimaryKey(); pk != nil && t.pkTree != nil {
		t.pkTree.Insert(row.GetOr(pk.Name, pk.Type))
	}
	return nil
}

// RestoreRow appends a row and feeds the indexes without running any
// integrity checks. It exists for loaders replaying rows from a database
// file, where the constraints already held when the file was written and
// referenced tables may not have been read yet.
func (t *Table) RestoreRow(row Row) {
	t.Rows = append(t.Rows, row)
	for _, c := range t.Columns {
		if c.Index() != nil {
			c.AddToIndex(row.GetOr(c.Name, c.Type))
		}
	}
	if pk := t.PrimaryKey(); pk != nil && t.pkTree != nil {
		t.pkTree.Insert(row.GetOr(pk.Name, pk.Type))
	}
}

// validateForeignKeys checks that every foreign-key column's value exists
// in the referenced table's referenced column, resolved through the
// manager's current database.
func (t *Table) validateForeignKeys(row Row, mgr *DatabaseManager) error {
	for _, c := range t.Columns {
		if c.ForeignKey == nil {
			continue
		}
		fk := c.ForeignKey

		var db *Database
		if mgr != nil {
			db = mgr.Current()
		}
		if db == nil {
			return fmt.Errorf("table %q: column %q: %w", t.Name, c.Name, ErrNoDatabaseSelected)
		}
		ref := db.GetTable(fk.ReferencedTable)
		if ref == nil {
			return fmt.Errorf("table %q: column %q references %q: %w",
				t.Name, c.Name, fk.ReferencedTable, ErrMissingReferencedTable)
		}
		refCol := ref.GetColumn(fk.ReferencedColumn)
		if refCol == nil {
			return fmt.Errorf("table %q: column %q references %s(%s): %w",
				t.Name, c.Name, fk.ReferencedTable, fk.ReferencedColumn, ErrMissingReferencedColumn)
		}

		want := row.GetOr(c.Name, c.Type)
		found := false
		for _, refRow := range ref.Rows {
			if refRow.GetOr(refCol.Name, refCol.Type).Equal(want) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("table %q: column %q value %s not in %s(%s): %w",
				t.Name, c.Name, want, fk.ReferencedTable, fk.ReferencedColumn, ErrForeignKeyViolation)
		}
	}
	return nil
}

// findRowByPK returns the index of the row whose primary-key column
// equals pk, or -1.
func (t *Table) findRowByPK(pkCol *Column, pk Value) int {
	for i, row := range t.Rows {
		if row.GetOr(pkCol.Name, pkCol.Type).Equal(pk) {
			return i
		}
	}
	return -1
}

// DeleteRow removes the row whose primary key equals pk, keeping the
// primary-key tree and column indexes in step.
func (t *Table) DeleteRow(pk Value) error {
	pkCol := t.PrimaryKey()
	if pkCol == nil {
		return fmt.Errorf("table %q: primary key column: %w", t.Name, ErrUnknownColumn)
	}
	i := t.findRowByPK(pkCol, pk)
	if i < 0 {
		return fmt.Errorf("table %q: %w", t.Name, ErrRowNotFound)
	}

	row := t.Rows[i]
	if t.pkTree != nil {
		t.pkTree.Remove(pk)
	}
	for _, c := range t.Columns {
		c.RemoveFromIndex(row.GetOr(c.Name, c.Type))
	}
	t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
	return nil
}

// UpdateRow replaces the row whose primary key equals oldPK with newRow.
// The new row is re-validated: a primary-key change colliding with another
// row fails DuplicatePrimaryKey, and foreign keys are checked again. The
// table is left untouched on any failure.
func (t *Table) UpdateRow(oldPK Value, newRow Row, mgr *DatabaseManager) error {
	pkCol := t.PrimaryKey()
	if pkCol == nil {
		return fmt.Errorf("table %q: primary key column: %w", t.Name, ErrUnknownColumn)
	}
	i := t.findRowByPK(pkCol, oldPK)
	if i < 0 {
		return fmt.Errorf("table %q: %w", t.Name, ErrRowNotFound)
	}

	newPK := newRow.GetOr(pkCol.Name, pkCol.Type)
	if !newPK.Equal(oldPK) && t.pkTree != nil && t.pkTree.Search(newPK) {
		return fmt.Errorf("table %q: %w", t.Name, ErrDuplicatePrimaryKey)
	}
	if err := t.validateForeignKeys(newRow, mgr); err != nil {
		return err
	}

	old := t.Rows[i]
	if t.pkTree != nil {
		t.pkTree.Remove(oldPK)
		t.pkTree.Insert(newPK)
	}
	for _, c := range t.Columns {
		if c.Index() == nil {
			continue
		}
		c.RemoveFromIndex(old.GetOr(c.Name, c.Type))
		c.AddToIndex(newRow.GetOr(c.Name, c.Type))
	}
	t.Rows[i] = newRow
	return nil
}
