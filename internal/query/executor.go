package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Select-Button-Games/Atlas-DataBase/internal/core"
)

// ErrUnknownDatabase is returned by USE when the database does not exist.
var ErrUnknownDatabase = errors.New("database not found")

// Executor dispatches parsed statements onto the database manager.
type Executor struct {
	mgr *core.DatabaseManager

	// IndexDegree is the B-tree minimum degree given to tables created by
	// ADD TABLE.
	IndexDegree int
}

// NewExecutor returns an executor over the given manager.
func NewExecutor(mgr *core.DatabaseManager) *Executor {
	return &Executor{mgr: mgr, IndexDegree: core.DefaultIndexDegree}
}

// ExecuteBatch splits input on ';', trims each piece, and executes every
// non-empty statement in order. A failed statement does not stop the
// batch; the joined errors of all failed statements are returned, nil
// when every statement succeeded.
func (e *Executor) ExecuteBatch(input string) error {
	var errs []error
	for _, piece := range strings.Split(input, ";") {
		stmt := strings.TrimSpace(piece)
		if stmt == "" {
			continue
		}
		if err := e.Execute(stmt); err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", stmt, err))
		}
	}
	return errors.Join(errs...)
}

// Execute parses and runs a single statement.
func (e *Executor) Execute(input string) error {
	stmt, err := Parse(input)
	if err != nil {
		return err
	}
	switch s := stmt.(type) {
	case CreateDatabase:
		e.mgr.CreateDatabase(s.Name)
		return nil
	case UseDatabase:
		if !e.mgr.SelectDatabase(s.Name) {
			return fmt.Errorf("USE %s: %w", s.Name, ErrUnknownDatabase)
		}
		return nil
	case AddTable:
		return e.execAddTable(s)
	case Insert:
		return e.execInsert(s)
	case Remove:
		return e.execRemove(s)
	case Update:
		return e.execUpdate(s)
	}
	return fmt.Errorf("%w: unhandled statement type %T", ErrParse, stmt)
}

func (e *Executor) current() (*core.Database, error) {
	db := e.mgr.Current()
	if db == nil {
		return nil, core.ErrNoDatabaseSelected
	}
	return db, nil
}

func (e *Executor) table(db *core.Database, name string) (*core.Table, error) {
	t := db.GetTable(name)
	if t == nil {
		return nil, fmt.Errorf("table %q: %w", name, core.ErrUnknownTable)
	}
	return t, nil
}

func (e *Executor) execAddTable(s AddTable) error {
	db, err := e.current()
	if err != nil {
		return err
	}

	table := core.NewTable(s.Name)
	table.IndexDegree = e.IndexDegree
	for _, def := range s.Columns {
		typ, primary, err := resolveColumnType(def)
		if err != nil {
			return err
		}
		col := core.NewColumn(def.Name, typ)
		col.PrimaryKey = primary
		if def.References != nil {
			col.SetForeignKey(def.References.Table, def.References.Column)
		}
		if err := table.AddColumn(col); err != nil {
			return err
		}
	}

	db.AddTable(table)
	return nil
}

// resolveColumnType maps a column definition's type keyword to a DataType.
// The bare keyword PRIMARY_KEY in type position is the legacy three-type
// shorthand for an INT primary key.
func resolveColumnType(def ColumnDef) (core.DataType, bool, error) {
	if def.TypeKeyword == "PRIMARY_KEY" {
		return core.TypeInt, true, nil
	}
	typ, ok := core.DataTypeFromKeyword(def.TypeKeyword)
	if !ok {
		return 0, false, fmt.Errorf("%w: unknown column type %q", ErrParse, def.TypeKeyword)
	}
	return typ, def.PrimaryKey, nil
}

func (e *Executor) execInsert(s Insert) error {
	db, err := e.current()
	if err != nil {
		return err
	}
	table, err := e.table(db, s.Table)
	if err != nil {
		return err
	}

	row := core.NewRow()
	for i, colName := range s.Columns {
		col := table.GetColumn(colName)
		if col == nil {
			return fmt.Errorf("column %q: %w", colName, core.ErrUnknownColumn)
		}
		v, err := ParseValue(col.Type, s.Values[i])
		if err != nil {
			return err
		}
		row.Set(colName, v)
	}
	return table.AddRow(row, e.mgr)
}

func (e *Executor) execRemove(s Remove) error {
	db, err := e.current()
	if err != nil {
		return err
	}
	table, err := e.table(db, s.Table)
	if err != nil {
		return err
	}
	col := table.GetColumn(s.Column)
	if col == nil || !col.PrimaryKey {
		return fmt.Errorf("primary key column %q: %w", s.Column, core.ErrUnknownColumn)
	}
	v, err := ParseValue(col.Type, s.Value)
	if err != nil {
		return err
	}
	return table.DeleteRow(v)
}

func (e *Executor) execUpdate(s Update) error {
	db, err := e.current()
	if err != nil {
		return err
	}
	table, err := e.table(db, s.Table)
	if err != nil {
		return err
	}
	col := table.GetColumn(s.WhereColumn)
	if col == nil || !col.PrimaryKey {
		return fmt.Errorf("primary key column %q: %w", s.WhereColumn, core.ErrUnknownColumn)
	}
	oldPK, err := ParseValue(col.Type, s.WhereValue)
	if err != nil {
		return err
	}

	newRow := core.NewRow()
	for _, a := range s.Assignments {
		target := table.GetColumn(a.Column)
		if target == nil {
			return fmt.Errorf("column %q: %w", a.Column, core.ErrUnknownColumn)
		}
		v, err := ParseValue(target.Type, a.Value)
		if err != nil {
			return err
		}
		newRow.Set(a.Column, v)
	}
	return table.UpdateRow(oldPK, newRow, e.mgr)
}

// ParseValue types a raw statement token against a declared column type.
// Strings and blobs take the token verbatim (no quote handling); BOOL maps
// the literal "true" to true and anything else to false.
func ParseValue(t core.DataType, raw string) (core.Value, error) {
	switch t {
	case core.TypeInt:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: invalid INT value %q", ErrParse, raw)
		}
		return core.Int(int32(n)), nil
	case core.TypeString:
		return core.String(raw), nil
	case core.TypeBool:
		return core.Bool(raw == "true"), nil
	case core.TypeTimestamp:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: invalid TIMESTAMP value %q", ErrParse, raw)
		}
		return core.Timestamp(n), nil
	case core.TypeFloat:
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: invalid FLOAT value %q", ErrParse, raw)
		}
		return core.Float(float32(f)), nil
	case core.TypeBlob:
		return core.Blob([]byte(raw)), nil
	}
	return core.Value{}, fmt.Errorf("%w: unknown data type %d", ErrParse, t)
}
