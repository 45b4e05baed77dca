// Package cmd implements the CLI command structure for duke.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/nibzard/duke-go/internal/config"
	"github.com/nibzard/duke-go/internal/logging"
	"github.com/nibzard/duke-go/internal/session"
	"github.com/nibzard/duke-go/internal/storage"
	"github.com/nibzard/duke-go/internal/todo"
)

// Version is set via ldflags at build time.
var Version = "dev"

// now is replaced in tests.
var now = time.Now

// streams are the process streams a command reads and writes.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// env is what every subcommand receives.
type env struct {
	streams
	cfg     *config.Config
	sources *config.ConfigWithSources
	logger  *log.Logger
}

// Run executes the duke CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
}

func run(ctx context.Context, args []string, s streams) error {
	fs := pflag.NewFlagSet("duke", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(s.err)
	fs.Usage = func() {
		printUsage(fs, s.err)
	}
	help := fs.BoolP("help", "h", false, "Show help")
	showVersion := fs.BoolP("version", "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, s.out)
		return nil
	}
	if *showVersion {
		return versionCommand(s.out)
	}

	logger, closeLog, err := logging.Open(cws.Config, s.err)
	if err != nil {
		return err
	}
	defer closeLog()

	e := &env{streams: s, cfg: cws.Config, sources: cws, logger: logger}

	subcommand := "repl"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}
	logger.Debug("running command", "command", subcommand, "data_file", e.cfg.DataFile)

	switch subcommand {
	case "repl":
		return replCommand(ctx, e, remainingArgs)
	case "tui":
		return tuiCommand(ctx, e, remainingArgs)
	case "exec":
		return execCommand(e, remainingArgs)
	case "ls":
		return lsCommand(e, remainingArgs)
	case "export":
		return exportCommand(e, remainingArgs)
	case "doctor":
		return doctorCommand(e, remainingArgs)
	case "config":
		return configCommand(e, remainingArgs)
	case "version":
		return versionCommand(s.out)
	case "help":
		printUsage(fs, s.out)
		return nil
	default:
		fmt.Fprintf(s.err, "Unknown command: %s\n", subcommand)
		printUsage(fs, s.err)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openSession hydrates a session from the configured data file.
func openSession(e *env) (*session.Session, error) {
	sess, err := session.Open(storage.NewStore(e.cfg.DataFile), session.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("opening task list: %w", err)
	}
	return sess, nil
}

// execCommand processes a single command line given as arguments.
func execCommand(e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("exec requires a command, e.g. duke exec todo read book")
	}
	sess, err := openSession(e)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, sess.Process(strings.Join(args, " ")))
	return nil
}

// lsCommand prints the stored list without creating the data file.
func lsCommand(e *env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	tasks, err := loadTasks(e.cfg.DataFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, todo.NewList(tasks).RenderAll())
	return nil
}

// exportCommand writes the stored list as a schema-validated JSON document.
func exportCommand(e *env, args []string) error {
	fs := pflag.NewFlagSet("duke export", pflag.ContinueOnError)
	fs.SetOutput(e.err)
	out := fs.StringP("out", "o", "", "Write the export to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	tasks, err := loadTasks(e.cfg.DataFile)
	if err != nil {
		return err
	}

	if *out == "" {
		return storage.WriteExport(e.out, tasks, now())
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := storage.WriteExport(f, tasks, now()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	e.logger.Info("exported tasks", "path", *out, "count", len(tasks))
	return nil
}

// configCommand prints the effective configuration or an example file.
func configCommand(e *env, args []string) error {
	fs := pflag.NewFlagSet("duke config", pflag.ContinueOnError)
	fs.SetOutput(e.err)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(e.out, config.ExampleConfig())
		return nil
	}
	writeSources(e.out, e.sources)
	return nil
}

// loadTasks reads the data file. A missing file is an empty list.
func loadTasks(path string) ([]todo.Task, error) {
	tasks, err := storage.NewStore(path).Load()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return tasks, nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "duke version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *pflag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Duke - a personal task tracker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  duke [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  repl              Interactive session on stdin (default command)")
	fmt.Fprintln(w, "  tui [--no-alt-screen]  Interactive chat window")
	fmt.Fprintln(w, "  exec <command>    Run one command, e.g. duke exec todo read book")
	fmt.Fprintln(w, "  ls                Print the stored task list")
	fmt.Fprintln(w, "  export [-o FILE]  Export tasks as JSON")
	fmt.Fprintln(w, "  doctor            Check config and the data file")
	fmt.Fprintln(w, "  config [--example]  Show effective config or an example file")
	fmt.Fprintln(w, "  version           Show version information")
	fmt.Fprintln(w, "  help              Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task commands:")
	fmt.Fprintln(w, "  todo <description>")
	fmt.Fprintln(w, "  deadline <description> /by dd/MM/yyyy HH:mm")
	fmt.Fprintln(w, "  event <description> /at dd/MM/yyyy HH:mm")
	fmt.Fprintln(w, "  list | done <n> | delete <n> | find <keyword> | bye")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fmt.Fprint(w, fs.FlagUsages())
}
