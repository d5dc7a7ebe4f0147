package query

import (
	"fmt"
	"strings"
)

// Statement is a parsed mini-language statement.
type Statement interface {
	stmt()
}

// CreateDatabase is "CREATE DATABASE <name>".
type CreateDatabase struct {
	Name string
}

// UseDatabase is "USE <name>".
type UseDatabase struct {
	Name string
}

// ColumnDef is one column in an ADD TABLE statement. The type keyword is
// kept raw so the executor can resolve the legacy bare PRIMARY_KEY form.
type ColumnDef struct {
	Name        string
	TypeKeyword string
	PrimaryKey  bool
	References  *Reference
}

// Reference is a REFERENCES table(column) attribute.
type Reference struct {
	Table  string
	Column string
}

// AddTable is "ADD TABLE <name> (<col defs>)".
type AddTable struct {
	Name    string
	Columns []ColumnDef
}

// Insert is "INSERT INTO <table> (<cols>) VALUES (<values>)". Values are
// raw tokens; the executor types them against the named columns.
type Insert struct {
	Table   string
	Columns []string
	Values  []string
}

// Remove is "REMOVE FROM <table> WHERE <col> = <value>".
type Remove struct {
	Table  string
	Column string
	Value  string
}

// Assignment is one "<col> = <value>" in an UPDATE SET clause.
type Assignment struct {
	Column string
	Value  string
}

// Update is "UPDATE <table> SET <assignments> WHERE <col> = <value>".
type Update struct {
	Table       string
	Assignments []Assignment
	WhereColumn string
	WhereValue  string
}

func (CreateDatabase) stmt() {}
func (UseDatabase) stmt()    {}
func (AddTable) stmt()       {}
func (Insert) stmt()         {}
func (Remove) stmt()         {}
func (Update) stmt()         {}

// Parse parses a single trimmed statement.
func Parse(input string) (Statement, error) {
	l := newLexer(input)
	switch {
	case l.keyword("CREATE"):
		return parseCreateDatabase(l)
	case l.keyword("USE"):
		return parseUseDatabase(l)
	case l.keyword("ADD"):
		return parseAddTable(l)
	case l.keyword("INSERT"):
		return parseInsert(l)
	case l.keyword("REMOVE"):
		return parseRemove(l)
	case l.keyword("UPDATE"):
		return parseUpdate(l)
	}
	return nil, fmt.Errorf("%w: statement not recognized: %q", ErrParse, input)
}

func parseCreateDatabase(l *lexer) (Statement, error) {
	if err := l.expectKeyword("DATABASE"); err != nil {
		return nil, err
	}
	name, err := l.ident()
	if err != nil {
		return nil, err
	}
	if err := expectEnd(l); err != nil {
		return nil, err
	}
	return CreateDatabase{Name: name}, nil
}

func parseUseDatabase(l *lexer) (Statement, error) {
	name, err := l.ident()
	if err != nil {
		return nil, err
	}
	if err := expectEnd(l); err != nil {
		return nil, err
	}
	return UseDatabase{Name: name}, nil
}

func parseAddTable(l *lexer) (Statement, error) {
	if err := l.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := l.ident()
	if err != nil {
		return nil, err
	}
	if err := l.expectSymbol('('); err != nil {
		return nil, err
	}

	var cols []ColumnDef
	for {
		col, err := parseColumnDef(l)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if l.symbol(',') {
			continue
		}
		break
	}
	if err := l.expectSymbol(')'); err != nil {
		return nil, err
	}
	if err := expectEnd(l); err != nil {
		return nil, err
	}
	return AddTable{Name: name, Columns: cols}, nil
}

// parseColumnDef parses "<name> <type> [PRIMARY_KEY] [REFERENCES t(c)]".
// The attributes may appear in either order.
func parseColumnDef(l *lexer) (ColumnDef, error) {
	name, err := l.ident()
	if err != nil {
		return ColumnDef{}, err
	}
	typeKw, err := l.ident()
	if err != nil {
		return ColumnDef{}, err
	}
	col := ColumnDef{Name: name, TypeKeyword: typeKw}

	for {
		switch {
		case l.keyword("PRIMARY_KEY"):
			col.PrimaryKey = true
		case l.keyword("REFERENCES"):
			refTable, err := l.ident()
			if err != nil {
				return ColumnDef{}, err
			}
			if err := l.expectSymbol('('); err != nil {
				return ColumnDef{}, err
			}
			refCol, err := l.ident()
			if err != nil {
				return ColumnDef{}, err
			}
			if err := l.expectSymbol(')'); err != nil {
				return ColumnDef{}, err
			}
			col.References = &Reference{Table: refTable, Column: refCol}
		default:
			return col, nil
		}
	}
}

func parseInsert(l *lexer) (Statement, error) {
	if err := l.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := l.ident()
	if err != nil {
		return nil, err
	}

	if err := l.expectSymbol('('); err != nil {
		return nil, err
	}
	var cols []string
	for {
		col, err := l.ident()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if l.symbol(',') {
			continue
		}
		break
	}
	if err := l.expectSymbol(')'); err != nil {
		return nil, err
	}

	if err := l.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if err := l.expectSymbol('('); err != nil {
		return nil, err
	}
	var vals []string
	for {
		val, err := l.valueUntil(",)")
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
		if l.symbol(',') {
			continue
		}
		break
	}
	if err := l.expectSymbol(')'); err != nil {
		return nil, err
	}
	if err := expectEnd(l); err != nil {
		return nil, err
	}

	if len(cols) != len(vals) {
		return nil, fmt.Errorf("%w: %d columns but %d values", ErrParse, len(cols), len(vals))
	}
	return Insert{Table: table, Columns: cols, Values: vals}, nil
}

func parseRemove(l *lexer) (Statement, error) {
	if err := l.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := l.ident()
	if err != nil {
		return nil, err
	}
	if err := l.expectKeyword("WHERE"); err != nil {
		return nil, err
	}
	col, err := l.ident()
	if err != nil {
		return nil, err
	}
	if err := l.expectSymbol('='); err != nil {
		return nil, err
	}
	val, err := l.restValue()
	if err != nil {
		return nil, err
	}
	return Remove{Table: table, Column: col, Value: val}, nil
}

// parseUpdate splits the SET clause from the WHERE clause at the last
// " WHERE " occurrence (values are unquoted, so this mirrors the greedy
// match the statement shape implies), then parses each part.
func parseUpdate(l *lexer) (Statement, error) {
	table, err := l.ident()
	if err != nil {
		return nil, err
	}
	if err := l.expectKeyword("SET"); err != nil {
		return nil, err
	}

	rest := l.rest()
	cut := strings.LastIndex(rest, " WHERE ")
	if cut < 0 {
		return nil, fmt.Errorf("%w: UPDATE missing WHERE clause: %q", ErrParse, rest)
	}
	setClause, whereClause := rest[:cut], rest[cut+len(" WHERE "):]

	var assigns []Assignment
	for _, part := range strings.Split(setClause, ",") {
		al := newLexer(part)
		col, err := al.ident()
		if err != nil {
			return nil, err
		}
		if err := al.expectSymbol('='); err != nil {
			return nil, err
		}
		val, err := al.restValue()
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, Assignment{Column: col, Value: val})
	}

	wl := newLexer(whereClause)
	whereCol, err := wl.ident()
	if err != nil {
		return nil, err
	}
	if err := wl.expectSymbol('='); err != nil {
		return nil, err
	}
	whereVal, err := wl.restValue()
	if err != nil {
		return nil, err
	}

	return Update{
		Table:       table,
		Assignments: assigns,
		WhereColumn: whereCol,
		WhereValue:  whereVal,
	}, nil
}

func expectEnd(l *lexer) error {
	if !l.done() {
		return fmt.Errorf("%w: unexpected trailing input %q", ErrParse, l.rest())
	}
	return nil
}
