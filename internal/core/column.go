package core

import (
	"github.com/Select-Button-Games/Atlas-DataBase/internal/btree"
)

// DefaultIndexDegree is the minimum degree of freshly allocated index
// trees.
const DefaultIndexDegree = 3

// ValueTree is a B-tree ordered by the Value total order.
type ValueTree = btree.Tree[Value]

// NewValueTree allocates an empty index tree of the given minimum degree.
func NewValueTree(degree int) (*ValueTree, error) {
	return btree.New[Value](degree, Value.Compare)
}

// ForeignKey names the table and column a column's values must appear in.
type ForeignKey struct {
	ReferencedTable  string
	ReferencedColumn string
}

// Column describes one table column: a name, a declared type, an optional
// primary-key flag and an optional foreign-key reference. A primary-key
// column owns an index tree over its values.
type Column struct {
	Name       string
	Type       DataType
	PrimaryKey bool
	ForeignKey *ForeignKey

	index *ValueTree
}

// NewColumn returns a plain column of the given name and type.
func NewColumn(name string, t DataType) *Column {
	return &Column{Name: name, Type: t}
}

// MakePrimaryKey flags the column as the primary key and allocates its
// index tree if it does not have one yet.
func (c *Column) MakePrimaryKey(degree int) error {
	c.PrimaryKey = true
	if c.index == nil {
		idx, err := NewValueTree(degree)
		if err != nil {
			return err
		}
		c.index = idx
	}
	return nil
}

// SetForeignKey records a reference to table(column).
func (c *Column) SetForeignKey(table, column string) {
	c.ForeignKey = &ForeignKey{ReferencedTable: table, ReferencedColumn: column}
}

// Index returns the column's index tree, or nil for unindexed columns.
func (c *Column) Index() *ValueTree { return c.index }

// AddToIndex inserts v into the column's index. No-op without an index.
func (c *Column) AddToIndex(v Value) {
	if c.index != nil {
		c.index.Insert(v)
	}
}

// RemoveFromIndex removes v from the column's index. No-op without an
// index or when v is absent.
func (c *Column) RemoveFromIndex(v Value) {
	if c.index != nil {
		c.index.Remove(v)
	}
}
