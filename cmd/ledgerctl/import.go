package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"ledgerview/internal/sources/memory"
	"ledgerview/internal/storage"
)

type importCmd struct {
	dir    string
	dbPath string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import CSV tables into the SQLite database" }
func (*importCmd) Usage() string {
	return `ledgerctl import [-d <dir>] [-db <path>]

  Loads every <table>.csv of a directory and replaces the table of the same
  name in the SQLite database used by DATA_BACKEND=sqlite.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "d", "", "Directory of CSV exports. Defaults to DATA_DIR")
	f.StringVar(&c.dbPath, "db", "", "SQLite database path. Defaults to SQLITE_DB_PATH")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	dir, dbPath := c.dir, c.dbPath
	if dir == "" {
		dir = cfg.DataDir
	}
	if dbPath == "" {
		dbPath = cfg.SQLiteDBPath
	}

	n, err := importDir(ctx, dir, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", dir, err)
		return subcommands.ExitFailure
	}
	logger.Info("Import complete", "tables", n, "path", dbPath)
	return subcommands.ExitSuccess
}

// importDir copies every table found in dir into the database at dbPath and
// returns how many tables were imported.
func importDir(ctx context.Context, dir, dbPath string) (int, error) {
	files, err := memory.NewFromFiles(dir)
	if err != nil {
		return 0, err
	}
	db, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	names := files.Names()
	for _, name := range names {
		t, err := files.ReadTable(ctx, name)
		if err != nil {
			return 0, err
		}
		if err := db.Import(ctx, name, t); err != nil {
			return 0, err
		}
	}
	return len(names), nil
}
