package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Select-Button-Games/Atlas-DataBase/internal/config"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/core"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/storage"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DatabaseFile = filepath.Join(dir, "database.bin")
	cfg.Storage.CommandsFile = filepath.Join(dir, "commands.txt")
	cfg.Logging.File = filepath.Join(dir, "atlasdb.log")
	return cfg
}

func writeCommands(t *testing.T, cfg config.Config, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(cfg.Storage.CommandsFile, []byte(text), 0o644))
}

func TestRunExecutesPrintsAndSaves(t *testing.T) {
	cfg := testConfig(t)
	writeCommands(t, cfg, `CREATE DATABASE TestDB; USE TestDB;
ADD TABLE t (id INT PRIMARY_KEY, name STRING);
INSERT INTO t (id, name) VALUES (1, alice);
INSERT INTO t (id, name) VALUES (2, bob);
`)

	d := New(cfg)
	var out bytes.Buffer
	d.Out = &out
	require.NoError(t, d.Run())

	assert.Equal(t, "Table: t\nid\tname\t\n1\talice\t\n2\tbob\t\n", out.String())

	// The selected database was persisted.
	db, err := storage.Load(cfg.Storage.DatabaseFile, storage.FormatAuto)
	require.NoError(t, err)
	require.NotNil(t, db.GetTable("t"))
	assert.Len(t, db.GetTable("t").Rows, 2)
}

func TestRunLoadsExistingDatabase(t *testing.T) {
	cfg := testConfig(t)
	writeCommands(t, cfg, `CREATE DATABASE TestDB; USE TestDB;
ADD TABLE t (id INT PRIMARY_KEY, name STRING);
INSERT INTO t (id, name) VALUES (1, alice);
`)
	d := New(cfg)
	d.Out = &bytes.Buffer{}
	require.NoError(t, d.Run())

	// Second run starts from the saved file; the duplicate-free insert
	// goes through, the duplicate would not.
	writeCommands(t, cfg, "INSERT INTO t (id, name) VALUES (2, bob);\n")
	d2 := New(cfg)
	var out bytes.Buffer
	d2.Out = &out
	require.NoError(t, d2.Run())

	assert.Equal(t, "Table: t\nid\tname\t\n1\talice\t\n2\tbob\t\n", out.String())
}

// Save-then-load reprints identically: the persisted form carries
// everything the printer shows.
func TestRunPersistenceRoundTripPrint(t *testing.T) {
	cfg := testConfig(t)
	writeCommands(t, cfg, `CREATE DATABASE TestDB; USE TestDB;
ADD TABLE t (id INT PRIMARY_KEY, name STRING);
INSERT INTO t (id, name) VALUES (1, alice);
INSERT INTO t (id, name) VALUES (2, bob);
`)
	d := New(cfg)
	var first bytes.Buffer
	d.Out = &first
	require.NoError(t, d.Run())

	writeCommands(t, cfg, "\n")
	d2 := New(cfg)
	var second bytes.Buffer
	d2.Out = &second
	require.NoError(t, d2.Run())

	assert.Equal(t, first.String(), second.String())
}

func TestRunStopsAtFirstFailedLine(t *testing.T) {
	cfg := testConfig(t)
	writeCommands(t, cfg, `CREATE DATABASE TestDB; USE TestDB;
THIS IS NOT A STATEMENT;
ADD TABLE t (id INT PRIMARY_KEY);
`)
	d := New(cfg)
	d.Out = &bytes.Buffer{}
	err := d.Run()
	require.Error(t, err)

	// The failing line aborted the run before the ADD TABLE line.
	assert.Nil(t, d.Manager().Current().GetTable("t"))
}

func TestRunFailuresWithinALineContinue(t *testing.T) {
	cfg := testConfig(t)
	writeCommands(t, cfg,
		"CREATE DATABASE TestDB; USE TestDB; ADD TABLE t (id INT PRIMARY_KEY); INSERT INTO t (id) VALUES (1); INSERT INTO t (id) VALUES (1); INSERT INTO t (id) VALUES (2)\n")
	d := New(cfg)
	d.Out = &bytes.Buffer{}
	err := d.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDuplicatePrimaryKey)

	// Both unique inserts landed even though the middle one failed.
	assert.Len(t, d.Manager().Current().GetTable("t").Rows, 2)
}

func TestRunMissingCommandsFile(t *testing.T) {
	cfg := testConfig(t)
	d := New(cfg)
	d.Out = &bytes.Buffer{}
	assert.Error(t, d.Run())
}

func TestRunBlankLinesAreSkipped(t *testing.T) {
	cfg := testConfig(t)
	writeCommands(t, cfg, "\n\nCREATE DATABASE TestDB; USE TestDB;\n\nADD TABLE t (id INT PRIMARY_KEY);\n")
	d := New(cfg)
	d.Out = &bytes.Buffer{}
	require.NoError(t, d.Run())
	assert.NotNil(t, d.Manager().Current().GetTable("t"))
}
