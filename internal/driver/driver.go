// Package driver runs the engine's batch cycle: lock the database file,
// load it if present, execute a commands file line by line, print the
// selected database, and save it back. It owns the rotating log the
// engine writes while a batch runs.
package driver

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gofrs/flock"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Select-Button-Games/Atlas-DataBase/internal/config"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/core"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/output"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/query"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/storage"
)

// Driver wires the manager, executor, and persistence together for one
// batch run.
type Driver struct {
	cfg config.Config
	mgr *core.DatabaseManager
	exe *query.Executor
	log *slog.Logger

	// Out receives the database dump at the end of a run. Defaults to
	// os.Stdout.
	Out io.Writer
}

// New returns a driver over a fresh manager. Log output goes to the
// rotating file named in the configuration.
func New(cfg config.Config) *Driver {
	logw := &lumberjack.Logger{
		Filename:   cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	mgr := core.NewManager()
	exe := query.NewExecutor(mgr)
	exe.IndexDegree = cfg.Engine.BTreeDegree
	return &Driver{
		cfg: cfg,
		mgr: mgr,
		exe: exe,
		log: slog.New(slog.NewTextHandler(logw, nil)),
		Out: os.Stdout,
	}
}

// Manager exposes the driver's database manager.
func (d *Driver) Manager() *core.DatabaseManager { return d.mgr }

// Executor exposes the driver's statement executor.
func (d *Driver) Executor() *query.Executor { return d.exe }

// Run performs the full cycle: load (if the database file exists),
// execute the commands file, print the current database, save. The
// database file is held under an exclusive lock for the whole run.
func (d *Driver) Run() error {
	lock := flock.New(d.cfg.Storage.DatabaseFile + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("driver: lock database file: %w", err)
	}
	if !locked {
		return fmt.Errorf("driver: database file %q is in use", d.cfg.Storage.DatabaseFile)
	}
	defer lock.Unlock()

	if err := d.loadIfPresent(); err != nil {
		return err
	}

	if err := d.ExecuteFile(d.cfg.Storage.CommandsFile); err != nil {
		return err
	}

	if db := d.mgr.Current(); db != nil {
		f, err := output.New("human")
		if err != nil {
			return err
		}
		text, err := f.FormatDatabase(db)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(d.Out, text); err != nil {
			return err
		}
		if err := storage.Save(d.cfg.Storage.DatabaseFile, db); err != nil {
			d.log.Error("save failed", "file", d.cfg.Storage.DatabaseFile, "error", err)
			return err
		}
		d.log.Info("database saved", "file", d.cfg.Storage.DatabaseFile)
	}
	return nil
}

// loadIfPresent loads the database file into the catalog and selects it.
// A missing file just starts the engine empty.
func (d *Driver) loadIfPresent() error {
	path := d.cfg.Storage.DatabaseFile
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	db, err := storage.Load(path, storage.FormatAuto)
	if err != nil {
		d.log.Error("load failed", "file", path, "error", err)
		return err
	}
	d.mgr.AttachDatabase(d.cfg.Storage.DatabaseName, db)
	d.mgr.SelectDatabase(d.cfg.Storage.DatabaseName)
	d.log.Info("database loaded", "file", path, "name", d.cfg.Storage.DatabaseName)
	return nil
}

// ExecuteFile feeds each non-blank line of the file to the executor as a
// batch. The first failed line aborts the run; failures inside a line do
// not stop the remaining statements on that line.
func (d *Driver) ExecuteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("driver: open commands file %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		d.log.Info("executing", "line", lineNo, "command", line)
		if err := d.exe.ExecuteBatch(line); err != nil {
			d.log.Error("command failed", "line", lineNo, "error", err)
			return fmt.Errorf("driver: %s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("driver: read commands file %q: %w", path, err)
	}
	return nil
}
