// Command jsondb inspects and edits jsondb store files from the shell.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	_ "github.com/mattn/go-sqlite3" // SQLite driver for --backend=sqlite
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/stevemurr/jsondb"
	"github.com/stevemurr/jsondb/document"
)

const usage = `Usage: jsondb [flags] <command> [args]

Commands:
  tables                     list table names
  create <table>             create (or reset) a table
  drop <table>               drop a table
  count <table>              print the number of records
  all <table>                print every record
  get <table> <id>           print one record by id
  add <table> <record>       append a record (JSON, comments/trailing commas ok)
  set <table> <id> <fields>  merge fields into a record
  rm <table> <id>            remove a record by id
  dump                       print the whole document

Flags:
`

var errUsage = errors.New("usage error")

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "jsondb:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("jsondb", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	file := flags.StringP("file", "f", env("JSONDB_FILE", "jsondb.json"), "store file path")
	backend := flags.String("backend", env("JSONDB_BACKEND", "json"), "document backend: json, sqlite or memory")
	verbose := flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	noColor := true
	if f, ok := stderr.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
		stderr = colorable.NewColorable(f)
	}
	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:   level,
		NoColor: noColor,
	}))

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return fmt.Errorf("%w: missing command", errUsage)
	}

	db, err := jsondb.OpenDatabase(*file, jsondb.Options{Backend: *backend})
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Debug("opened database", "file", *file, "backend", *backend)

	return dispatch(db, logger, rest[0], rest[1:], stdout)
}

func dispatch(db *jsondb.Database, logger *slog.Logger, cmd string, args []string, stdout io.Writer) error {
	switch cmd {
	case "tables":
		return printJSON(stdout, db.ListTables())

	case "create":
		if len(args) != 1 {
			return fmt.Errorf("%w: create <table>", errUsage)
		}
		if err := db.CreateTable(args[0], nil); err != nil {
			return err
		}
		logger.Debug("created table", "table", args[0])
		return nil

	case "drop":
		if len(args) != 1 {
			return fmt.Errorf("%w: drop <table>", errUsage)
		}
		if err := db.DropTable(args[0]); err != nil {
			return err
		}
		logger.Debug("dropped table", "table", args[0])
		return nil

	case "count":
		if len(args) != 1 {
			return fmt.Errorf("%w: count <table>", errUsage)
		}
		n, err := db.Table(args[0]).Count()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, n)
		return nil

	case "all":
		if len(args) != 1 {
			return fmt.Errorf("%w: all <table>", errUsage)
		}
		recs, err := db.Table(args[0]).All()
		if err != nil {
			return err
		}
		if recs == nil {
			recs = []jsondb.Record{}
		}
		return printJSON(stdout, recs)

	case "get":
		if len(args) != 2 {
			return fmt.Errorf("%w: get <table> <id>", errUsage)
		}
		rec, found, err := db.Table(args[0]).Get(parseID(args[1]))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no record with id %q in table %q", args[1], args[0])
		}
		return printJSON(stdout, rec)

	case "add":
		if len(args) != 2 {
			return fmt.Errorf("%w: add <table> <record>", errUsage)
		}
		rec, err := parseRecord(args[1])
		if err != nil {
			return err
		}
		if _, ok := rec["id"]; !ok {
			rec["id"] = jsondb.GenerateID()
		}
		if _, err := db.Table(args[0]).Add(rec); err != nil {
			return err
		}
		logger.Debug("added record", "table", args[0], "id", rec["id"])
		return printJSON(stdout, rec)

	case "set":
		if len(args) != 3 {
			return fmt.Errorf("%w: set <table> <id> <fields>", errUsage)
		}
		fields, err := parseRecord(args[2])
		if err != nil {
			return err
		}
		rec, found, err := db.Table(args[0]).Update(parseID(args[1]), fields)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no record with id %q in table %q", args[1], args[0])
		}
		return printJSON(stdout, rec)

	case "rm":
		if len(args) != 2 {
			return fmt.Errorf("%w: rm <table> <id>", errUsage)
		}
		rec, found, err := db.Table(args[0]).Remove(parseID(args[1]))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no record with id %q in table %q", args[1], args[0])
		}
		return printJSON(stdout, rec)

	case "dump":
		// Marshal under the read lock so the output is one consistent
		// snapshot of the document.
		res := db.Query(func(doc document.Document) any {
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			return b
		})
		if err, ok := res.(error); ok {
			return err
		}
		_, err := fmt.Fprintln(stdout, string(res.([]byte)))
		return err

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// parseID maps a CLI argument to a record id: integers stay integers so
// they compare equal to JSON numbers, everything else is a string.
func parseID(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

// parseRecord parses a record argument leniently (JWCC: comments and
// trailing commas allowed) into strict JSON.
func parseRecord(s string) (jsondb.Record, error) {
	standardized, err := hujson.Standardize([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	var rec jsondb.Record
	if err := json.Unmarshal(standardized, &rec); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	if rec == nil {
		return nil, errors.New("invalid record: not a JSON object")
	}
	return rec, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
