// Command migrate applies or rolls back the registry schema.
//
//	migrate up
//	migrate down
//	migrate version
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iliyamo/inn-guest-registry/internal/config"
	"github.com/iliyamo/inn-guest-registry/internal/database"
)

var errUsage = errors.New("usage")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s up|down|version\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 || !validCommand(flag.Arg(0)) {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func validCommand(cmd string) bool {
	switch cmd {
	case database.Up, database.Down, "version":
		return true
	}
	return false
}

func run(cmd string, out io.Writer) error {
	if !validCommand(cmd) {
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if cmd != "version" {
		if err := database.Migrate(db, cmd); err != nil {
			return fmt.Errorf("migrate %s: %w", cmd, err)
		}
	}
	v, dirty, err := database.Version(db)
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	fmt.Fprintf(out, "schema version %d (dirty=%t)\n", v, dirty)
	return nil
}
