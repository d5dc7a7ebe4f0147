package core

import "errors"

// Stable error kinds surfaced by the engine. Callers match with errors.Is;
// the concrete messages wrap these with statement context.
var (
	ErrNoDatabaseSelected = errors.New("no database selected")
	ErrUnknownTable       = errors.New("table not found")
	ErrUnknownColumn      = errors.New("column not found")

	ErrDuplicatePrimaryKey       = errors.New("duplicate primary key value")
	ErrDuplicatePrimaryKeyColumn = errors.New("table can only have one primary key")
	ErrDuplicateColumn           = errors.New("duplicate column name")

	ErrMissingReferencedTable  = errors.New("referenced table not found")
	ErrMissingReferencedColumn = errors.New("referenced column not found")
	ErrForeignKeyViolation     = errors.New("foreign key constraint violation")

	ErrRowNotFound = errors.New("row with the given primary key not found")

	ErrCorruptFile = errors.New("corrupt database file")
)
