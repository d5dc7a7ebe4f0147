// Package main contains the cli implementation of the engine. It uses
// cobra package for cli tool implementation.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Select-Button-Games/Atlas-DataBase/internal/auth"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/config"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/core"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/driver"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/output"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/query"
	"github.com/Select-Button-Games/Atlas-DataBase/internal/storage"
)

type runFlags struct {
	configFile   string
	commandsFile string
	databaseFile string
	user         string
}

type execFlags struct {
	configFile   string
	databaseFile string
	databaseName string
}

type printFlags struct {
	format string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "atlasdb",
		Short: "Connectionless relational database engine",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(execCmd())
	rootCmd.AddCommand(printCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the database, execute the commands file, print and save",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runRun(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "atlasdb.toml", "Configuration file")
	cmd.Flags().StringVar(&flags.commandsFile, "commands", "", "Commands file (overrides config)")
	cmd.Flags().StringVar(&flags.databaseFile, "database", "", "Database file (overrides config)")
	cmd.Flags().StringVarP(&flags.user, "user", "u", "", "Username for the credential gate")

	return cmd
}

func runRun(flags *runFlags) error {
	cfg, err := config.LoadFile(flags.configFile)
	if err != nil {
		return err
	}
	if flags.commandsFile != "" {
		cfg.Storage.CommandsFile = flags.commandsFile
	}
	if flags.databaseFile != "" {
		cfg.Storage.DatabaseFile = flags.databaseFile
	}

	if cfg.Auth.Enabled {
		if err := login(cfg, flags.user); err != nil {
			return err
		}
	}

	return driver.New(cfg).Run()
}

// login gates the engine behind the credential store. The first run with
// an empty store registers the user instead.
func login(cfg config.Config, username string) error {
	store := auth.NewStore(cfg.Auth.UsersFile)

	if username == "" {
		fmt.Print("Enter username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		return err
	}

	if !store.UserDataExists() {
		if err := store.Register(username, password); err != nil {
			return err
		}
		fmt.Println("User created successfully.")
		return nil
	}
	if err := store.Login(username, password); err != nil {
		return err
	}
	fmt.Println("Login successful.")
	return nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func execCmd() *cobra.Command {
	flags := &execFlags{}
	cmd := &cobra.Command{
		Use:   "exec <statements>",
		Short: "Execute a statement batch against a database file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExec(args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "atlasdb.toml", "Configuration file")
	cmd.Flags().StringVar(&flags.databaseFile, "database", "", "Database file (overrides config)")
	cmd.Flags().StringVar(&flags.databaseName, "name", "", "Catalog name for the loaded database (overrides config)")

	return cmd
}

func runExec(batch string, flags *execFlags) error {
	cfg, err := config.LoadFile(flags.configFile)
	if err != nil {
		return err
	}
	if flags.databaseFile != "" {
		cfg.Storage.DatabaseFile = flags.databaseFile
	}
	if flags.databaseName != "" {
		cfg.Storage.DatabaseName = flags.databaseName
	}

	mgr := core.NewManager()
	if _, err := os.Stat(cfg.Storage.DatabaseFile); err == nil {
		db, err := storage.Load(cfg.Storage.DatabaseFile, storage.FormatAuto)
		if err != nil {
			return err
		}
		mgr.AttachDatabase(cfg.Storage.DatabaseName, db)
		mgr.SelectDatabase(cfg.Storage.DatabaseName)
	}

	exe := query.NewExecutor(mgr)
	exe.IndexDegree = cfg.Engine.BTreeDegree
	if err := exe.ExecuteBatch(batch); err != nil {
		return err
	}

	if db := mgr.Current(); db != nil {
		return storage.Save(cfg.Storage.DatabaseFile, db)
	}
	return nil
}

func printCmd() *cobra.Command {
	flags := &printFlags{}
	cmd := &cobra.Command{
		Use:   "print <database.bin>",
		Short: "Dump the contents of a database file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runPrint(args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "human", "Output format")

	return cmd
}

func runPrint(path string, flags *printFlags) error {
	db, err := storage.Load(path, storage.FormatAuto)
	if err != nil {
		return err
	}
	f, err := output.New(flags.format)
	if err != nil {
		return err
	}
	text, err := f.FormatDatabase(db)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}

func userCmd() *cobra.Command {
	var usersFile string
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the credential store",
	}

	addCmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			password, err := readPassword("Enter password: ")
			if err != nil {
				return err
			}
			return auth.NewStore(usersFile).Register(args[0], password)
		},
	}
	addCmd.Flags().StringVar(&usersFile, "users-file", "users.dat", "Credential store file")

	cmd.AddCommand(addCmd)
	return cmd
}
