package core

import "sort"

// Database is a named collection of tables. Iteration order is sorted by
// table name, which keeps printing and persistence deterministic.
type Database struct {
	tables map[string]*Table
}

// NewDatabase returns an empty database.
func NewDatabase() *Database {
	return &Database{tables: make(map[string]*Table)}
}

// AddTable installs a table, silently replacing any existing table of the
// same name.
func (d *Database) AddTable(t *Table) {
	d.tables[t.Name] = t
}

// GetTable returns the named table, or nil.
func (d *Database) GetTable(name string) *Table {
	return d.tables[name]
}

// Len returns the number of tables.
func (d *Database) Len() int { return len(d.tables) }

// TableNames returns all table names in sorted order.
func (d *Database) TableNames() []string {
	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables returns all tables sorted by name.
func (d *Database) Tables() []*Table {
	names := d.TableNames()
	out := make([]*Table, len(names))
	for i, name := range names {
		out[i] = d.tables[name]
	}
	return out
}

// Clear drops every table.
func (d *Database) Clear() {
	d.tables = make(map[string]*Table)
}

// DatabaseManager owns every database and tracks which one statements
// currently target. It is passed explicitly wherever cross-table
// resolution is needed; nothing in the engine holds it globally.
type DatabaseManager struct {
	databases   map[string]*Database
	current     *Database
	currentName string
}

// NewManager returns a manager with no databases and no selection.
func NewManager() *DatabaseManager {
	return &DatabaseManager{databases: make(map[string]*Database)}
}

// CreateDatabase installs a new empty database under the name, replacing
// any existing one. If the replaced database was selected, the selection
// moves to the fresh instance.
func (m *DatabaseManager) CreateDatabase(name string) *Database {
	db := NewDatabase()
	m.databases[name] = db
	if m.currentName == name {
		m.current = db
	}
	return db
}

// AttachDatabase installs an already built database (used when loading
// from disk), with the same replacement semantics as CreateDatabase.
func (m *DatabaseManager) AttachDatabase(name string, db *Database) {
	m.databases[name] = db
	if m.currentName == name {
		m.current = db
	}
}

// SelectDatabase makes the named database current. Returns false and
// leaves the selection unchanged when no such database exists.
func (m *DatabaseManager) SelectDatabase(name string) bool {
	db, ok := m.databases[name]
	if !ok {
		return false
	}
	m.current = db
	m.currentName = name
	return true
}

// Current returns the selected database, or nil.
func (m *DatabaseManager) Current() *Database { return m.current }

// CurrentName returns the selected database's name, or "".
func (m *DatabaseManager) CurrentName() string {
	if m.current == nil {
		return ""
	}
	return m.currentName
}

// DatabaseNames returns every database name in sorted order.
func (m *DatabaseManager) DatabaseNames() []string {
	names := make([]string, 0, len(m.databases))
	for name := range m.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
