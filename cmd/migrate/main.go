// Command migrate manages the bot's SQLite schema from the command line.
// The bot applies pending migrations itself on startup; this tool exists
// for rollbacks and for inspecting migration state.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"avito_bot/migrations"
)

var commands = map[string]struct {
	help string
	run  func(db *sql.DB) error
}{
	"up":      {"apply all pending migrations", func(db *sql.DB) error { return goose.Up(db, ".") }},
	"up-one":  {"apply the next pending migration", func(db *sql.DB) error { return goose.UpByOne(db, ".") }},
	"down":    {"roll back the latest migration", func(db *sql.DB) error { return goose.Down(db, ".") }},
	"status":  {"print per-migration status", func(db *sql.DB) error { return goose.Status(db, ".") }},
	"version": {"print the current schema version", func(db *sql.DB) error { return goose.Version(db, ".") }},
	"reset":   {"roll back everything", func(db *sql.DB) error { return goose.Reset(db, ".") }},
}

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/bot.db"), "path to sqlite database")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		usage()
		os.Exit(1)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		log.Fatalf("unknown command %q, see -h", args[0])
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}

	if err := cmd.run(db); err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [-db path] <command>")
	fmt.Fprintln(os.Stderr, "")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, commands[name].help)
	}
	flag.PrintDefaults()
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
