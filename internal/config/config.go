// Package config loads the engine's TOML configuration file and applies
// defaults. Every field can be left out; a missing file yields the
// default configuration.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/Select-Button-Games/Atlas-DataBase/internal/core"
)

// Config is the fully resolved engine configuration.
type Config struct {
	Storage Storage `toml:"storage"`
	Engine  Engine  `toml:"engine"`
	Logging Logging `toml:"logging"`
	Auth    Auth    `toml:"auth"`
}

// Storage names the files the driver works with.
type Storage struct {
	// DatabaseFile is the binary database file loaded at startup and
	// rewritten at shutdown.
	DatabaseFile string `toml:"database_file"`
	// CommandsFile is the statement file the run command executes.
	CommandsFile string `toml:"commands_file"`
	// DatabaseName is the catalog name the loaded file is attached under.
	DatabaseName string `toml:"database_name"`
}

// Engine holds tuning knobs for the in-memory engine.
type Engine struct {
	// BTreeDegree is the minimum degree of primary-key index trees.
	BTreeDegree int `toml:"btree_degree"`
}

// Logging configures the driver's rotating log file.
type Logging struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Auth configures the credential gate in front of the engine.
type Auth struct {
	Enabled   bool   `toml:"enabled"`
	UsersFile string `toml:"users_file"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Storage: Storage{
			DatabaseFile: "database.bin",
			CommandsFile: "commands.txt",
			DatabaseName: "TestDB",
		},
		Engine: Engine{
			BTreeDegree: core.DefaultIndexDegree,
		},
		Logging: Logging{
			File:       "atlasdb.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Auth: Auth{
			Enabled:   false,
			UsersFile: "users.dat",
		},
	}
}

// LoadFile reads the configuration at path. A missing file is not an
// error; the defaults are returned.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads TOML configuration from r on top of the defaults.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode error: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Engine.BTreeDegree < 2 {
		return fmt.Errorf("config: btree_degree %d is below the minimum of 2", c.Engine.BTreeDegree)
	}
	if c.Storage.DatabaseName == "" {
		return fmt.Errorf("config: database_name must not be empty")
	}
	return nil
}
