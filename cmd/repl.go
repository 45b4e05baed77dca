package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/nibzard/duke-go/internal/logging"
	"github.com/nibzard/duke-go/internal/session"
	"github.com/nibzard/duke-go/internal/ui"
)

const maxLineSize = 1024 * 1024

// replCommand runs an interactive session on stdin.
func replCommand(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	sess, err := openSession(e)
	if err != nil {
		return err
	}
	return runREPL(ctx, sess, e.in, e.out, isTerminal(e.in))
}

// runREPL prints the greeting and feeds every input line to h until the
// exit keyword, end of input, or cancellation.
func runREPL(ctx context.Context, h ui.Handler, in io.Reader, out io.Writer, prompt bool) error {
	fmt.Fprintln(out, session.Greeting)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			reply := h.Handle(line)
			fmt.Fprintln(out, reply.Text)
			if reply.Exit {
				return nil
			}
		}
	}
}

// runTUI is replaced in tests.
var runTUI = ui.RunTUI

// tuiCommand runs the chat window around a session.
func tuiCommand(ctx context.Context, e *env, args []string) error {
	fs := pflag.NewFlagSet("duke tui", pflag.ContinueOnError)
	fs.SetOutput(e.err)
	noAltScreen := fs.Bool("no-alt-screen", false, "Draw inline instead of using the alternate screen")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if e.cfg.LogFile == "" {
		// stderr shares the terminal with the TUI, so log lines are held
		// until it exits.
		var held bytes.Buffer
		e.logger = logging.New(&held, logging.OptionsFromConfig(e.cfg))
		defer held.WriteTo(e.err)
	}

	sess, err := openSession(e)
	if err != nil {
		return err
	}
	return runTUI(ctx, sess, ui.WithDataPath(sess.Path()), ui.WithAltScreen(!*noAltScreen))
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
