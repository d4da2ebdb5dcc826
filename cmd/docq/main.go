package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/thisisjab/docq/config"
	"github.com/thisisjab/docq/fault"
	"github.com/thisisjab/docq/printer"
	"github.com/thisisjab/docq/querier"
	"github.com/thisisjab/docq/store"
)

const usageText = `docq — query and edit a JSON document store from the command line

Usage:
  docq [flags] <command> [arguments]

Commands:
  query <expression>          print documents matching the expression
  list                        print every document in the table
  insert <json>               insert a JSON object document, printing its ID
  update <json> <expression>  merge fields into matching documents
  delete <expression>         remove matching documents
  watch <expression>          re-run the query whenever the store file changes
  config-init                 write a default docq.yaml to the working directory

Query expressions take the form 'field OP value', where OP is one of ==, !=,
>, >=, < or <=. Values may be quoted strings, numbers, or simple arithmetic
expressions such as '2+3' or 'math.pi'.

`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("docq", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fmt.Fprintln(stderr, "Flags:")
		flags.PrintDefaults()
	}

	flags.StringP("db", "f", "docq.json", "path to the store file")
	flags.String("table", store.DefaultTable, "table to operate on")
	flags.Bool("pretty", true, "indent document output")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "colored-text", "log format (json, text, colored-text)")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	logger, err := cfg.Logger(stderr)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return 1
	}
	command, commandArgs := rest[0], rest[1:]

	var runErr error
	switch command {
	case "query":
		if runErr = wantArgs(command, commandArgs, 1); runErr == nil {
			runErr = runQuery(cfg, stdout, commandArgs[0])
		}
	case "list":
		if runErr = wantArgs(command, commandArgs, 0); runErr == nil {
			runErr = runList(cfg, stdout)
		}
	case "insert":
		if runErr = wantArgs(command, commandArgs, 1); runErr == nil {
			runErr = runInsert(cfg, stdout, commandArgs[0])
		}
	case "update":
		if runErr = wantArgs(command, commandArgs, 2); runErr == nil {
			runErr = runUpdate(cfg, stdout, commandArgs[0], commandArgs[1])
		}
	case "delete":
		if runErr = wantArgs(command, commandArgs, 1); runErr == nil {
			runErr = runDelete(cfg, stdout, commandArgs[0])
		}
	case "watch":
		if runErr = wantArgs(command, commandArgs, 1); runErr == nil {
			ctx, cancel := context.WithCancel(context.Background())

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigChan
				logger.Info("received signal. shutting down.", "signal", sig)
				cancel()
			}()

			runErr = runWatch(ctx, cfg, logger, stdout, commandArgs[0])

			signal.Stop(sigChan)
			cancel()
		}
	case "config-init":
		if runErr = wantArgs(command, commandArgs, 0); runErr == nil {
			runErr = config.WriteDefault("docq.yaml")
		}
	default:
		runErr = fault.New(fault.BadInputCode, fmt.Sprintf("unknown command: %s", command))
	}

	if runErr != nil {
		logger.Error("command failed.", "command", command, "code", fault.Code(runErr), "error", runErr)
		return 1
	}

	return 0
}

func wantArgs(command string, args []string, n int) error {
	if len(args) != n {
		return fault.New(fault.BadInputCode,
			fmt.Sprintf("%s expects %d argument(s), got %d", command, n, len(args)))
	}
	return nil
}

// openStore wraps store open failures with their boundary fault code.
func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fault.New(fault.StoreOpenCode,
			fmt.Sprintf("cannot open document store %s", cfg.Database.Path)).WithOriginal(err)
	}
	return s, nil
}

func runQuery(cfg *config.Config, stdout io.Writer, expr string) error {
	pred, err := querier.Compile(expr)
	if err != nil {
		return err
	}
	return executeQuery(cfg, stdout, pred)
}

func executeQuery(cfg *config.Config, stdout io.Writer, pred querier.Predicate) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	docs, err := s.Table(cfg.Database.Table).Search(pred)
	if err != nil {
		return fault.New(fault.StoreSearchCode, "failed to search database").WithOriginal(err)
	}

	return printer.Print(stdout, docs, cfg.Output.Pretty)
}

func runList(cfg *config.Config, stdout io.Writer) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	docs, err := s.Table(cfg.Database.Table).All()
	if err != nil {
		return fault.New(fault.StoreSearchCode, "failed to search database").WithOriginal(err)
	}

	return printer.Print(stdout, docs, cfg.Output.Pretty)
}

func runInsert(cfg *config.Config, stdout io.Writer, rawDoc string) error {
	doc, err := decodeDocument(rawDoc)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.Table(cfg.Database.Table).Insert(doc)
	if err != nil {
		return fault.New(fault.StoreSearchCode, "failed to insert document").WithOriginal(err)
	}

	_, err = fmt.Fprintln(stdout, id)
	return err
}

func runUpdate(cfg *config.Config, stdout io.Writer, rawFields, expr string) error {
	fields, err := decodeDocument(rawFields)
	if err != nil {
		return err
	}

	pred, err := querier.Compile(expr)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	updated, err := s.Table(cfg.Database.Table).Update(fields, pred)
	if err != nil {
		return fault.New(fault.StoreSearchCode, "failed to update documents").WithOriginal(err)
	}

	_, err = fmt.Fprintln(stdout, updated)
	return err
}

func runDelete(cfg *config.Config, stdout io.Writer, expr string) error {
	pred, err := querier.Compile(expr)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.Table(cfg.Database.Table).Remove(pred)
	if err != nil {
		return fault.New(fault.StoreSearchCode, "failed to delete documents").WithOriginal(err)
	}

	_, err = fmt.Fprintln(stdout, removed)
	return err
}

func decodeDocument(raw string) (store.Document, error) {
	var doc store.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fault.New(fault.BadInputCode, "document must be a JSON object").WithOriginal(err)
	}
	return doc, nil
}
