package core

// Row maps column names to values. Rows carry no schema; they are only
// meaningful inside a Table, and a row need not populate every column.
type Row struct {
	data map[string]Value
}

// NewRow returns an empty row.
func NewRow() Row {
	return Row{data: make(map[string]Value)}
}

// Set inserts or overwrites the value stored under the column name.
func (r *Row) Set(column string, v Value) {
	if r.data == nil {
		r.data = make(map[string]Value)
	}
	r.data[column] = v
}

// Get returns the stored value and whether the column was set.
func (r Row) Get(column string) (Value, bool) {
	v, ok := r.data[column]
	return v, ok
}

// GetOr returns the stored value, or the zero value of the given type when
// the column was never set on this row.
func (r Row) GetOr(column string, t DataType) Value {
	if v, ok := r.data[column]; ok {
		return v
	}
	return Zero(t)
}

// Len returns the number of populated columns.
func (r Row) Len() int { return len(r.data) }

// Columns returns the set of populated column names, in no particular order.
func (r Row) Columns() []string {
	names := make([]string, 0, len(r.data))
	for name := range r.data {
		names = append(names, name)
	}
	return names
}

// Clone returns a copy that shares no map state with the receiver.
func (r Row) Clone() Row {
	c := NewRow()
	for k, v := range r.data {
		c.data[k] = v
	}
	return c
}
