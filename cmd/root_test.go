// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/duke-go/internal/session"
	"github.com/nibzard/duke-go/internal/storage"
	"github.com/nibzard/duke-go/internal/todo"
	"github.com/nibzard/duke-go/internal/ui"
)

// sandbox runs each test in an empty project directory with no user config.
func sandbox(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{"DUKE_DATA_FILE", "DUKE_LOG_LEVEL", "DUKE_LOG_FORMAT", "DUKE_LOG_TIMESTAMPS", "DUKE_LOG_CALLER", "DUKE_LOG_FILE"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(project); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return project
}

type result struct {
	out, err string
}

func runWith(t *testing.T, ctx context.Context, stdin string, args ...string) (result, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(ctx, args, streams{in: strings.NewReader(stdin), out: &out, err: &errOut})
	return result{out: out.String(), err: errOut.String()}, err
}

func mustRun(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	res, err := runWith(t, context.Background(), stdin, args...)
	if err != nil {
		t.Fatalf("run %v: %v\nstderr: %s", args, err, res.err)
	}
	return res
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRun(t *testing.T) {
	t.Run("shows help with --help flag", func(t *testing.T) {
		sandbox(t)
		res := mustRun(t, "", "--help")
		if !strings.Contains(res.out, "Usage:") || !strings.Contains(res.out, "--data-file") {
			t.Errorf("help output: %q", res.out)
		}
	})

	t.Run("shows help with help command", func(t *testing.T) {
		sandbox(t)
		res := mustRun(t, "", "help")
		if !strings.Contains(res.out, "Commands:") {
			t.Errorf("help output: %q", res.out)
		}
	})

	t.Run("shows version with -v flag", func(t *testing.T) {
		sandbox(t)
		res := mustRun(t, "", "-v")
		if !strings.Contains(res.out, "duke version "+Version) {
			t.Errorf("version output: %q", res.out)
		}
	})

	t.Run("shows version with version command", func(t *testing.T) {
		sandbox(t)
		res := mustRun(t, "", "version")
		if !strings.Contains(res.out, "duke version") {
			t.Errorf("version output: %q", res.out)
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		sandbox(t)
		_, err := runWith(t, context.Background(), "", "unknown-command")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("unknown flag returns error", func(t *testing.T) {
		sandbox(t)
		if _, err := runWith(t, context.Background(), "", "--nope"); err == nil {
			t.Error("expected error for unknown flag")
		}
	})
}

func TestREPLSession(t *testing.T) {
	project := sandbox(t)

	input := strings.Join([]string{
		"todo read book",
		"deadline return book /by 15/10/2019 18:00",
		"deadline return book /by whenever",
		"done 5",
		"list",
		"bye",
		"todo never processed",
	}, "\n")
	res := mustRun(t, input)

	for _, want := range []string{
		session.Greeting,
		"[T][ ] read book",
		"now you have 1 task(s)",
		"[D][ ] return book (by: 2019-10-15 18:00)",
		"dd/MM/yyyy HH:mm",
		"out of bounds",
		"1.[T][ ] read book\n2.[D][ ] return book (by: 2019-10-15 18:00)",
		session.Farewell,
	} {
		if !strings.Contains(res.out, want) {
			t.Errorf("output missing %q:\n%s", want, res.out)
		}
	}
	if strings.Contains(res.out, "never processed") {
		t.Error("input after bye was processed")
	}
	if strings.Contains(res.out, "> ") {
		t.Error("prompt printed for non-terminal input")
	}

	got := readFile(t, filepath.Join(project, "data", "duke.txt"))
	if want := "T,0,read book\nD,0,return book,15/10/2019 18:00"; got != want {
		t.Errorf("data file: got %q, want %q", got, want)
	}
}

func TestREPLEndOfInput(t *testing.T) {
	sandbox(t)
	res := mustRun(t, "todo a\n", "repl")
	if strings.Contains(res.out, session.Farewell) {
		t.Error("farewell printed without bye")
	}
}

func TestREPLCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runREPL(ctx, fakeHandler{}, pr, &out, false)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("runREPL: got %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runREPL did not return after cancel")
	}
}

type fakeHandler struct{}

func (fakeHandler) Handle(line string) session.Reply {
	return session.Reply{Text: line}
}

// stubTUI replaces the chat window with fn for the duration of the test.
func stubTUI(t *testing.T, fn func(h ui.Handler) error) {
	t.Helper()
	orig := runTUI
	t.Cleanup(func() { runTUI = orig })
	runTUI = func(_ context.Context, h ui.Handler, _ ...ui.TUIOption) error {
		return fn(h)
	}
}

func TestTUIKeepsOperatorLog(t *testing.T) {
	t.Run("write failure is logged after the window closes", func(t *testing.T) {
		project := sandbox(t)
		stubTUI(t, func(h ui.Handler) error {
			if err := os.Remove(filepath.Join(project, "data", "duke.txt")); err != nil {
				return err
			}
			reply := h.Handle("todo read book")
			if !strings.HasPrefix(reply.Text, "Got it.") {
				t.Errorf("reply: got %q", reply.Text)
			}
			if strings.Contains(reply.Text, "failed") {
				t.Errorf("storage failure leaked into the reply: %q", reply.Text)
			}
			return nil
		})

		res := mustRun(t, "", "tui", "--no-alt-screen")
		if !strings.Contains(res.err, "created data file") {
			t.Errorf("stderr missing bootstrap log: %q", res.err)
		}
		if !strings.Contains(res.err, "append failed") {
			t.Errorf("stderr missing write failure: %q", res.err)
		}
	})

	t.Run("log is flushed when the window cannot start", func(t *testing.T) {
		sandbox(t)
		stubTUI(t, func(ui.Handler) error {
			return errors.New("tui requires a TTY")
		})

		res, err := runWith(t, context.Background(), "", "tui")
		if err == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(res.err, "loaded tasks") {
			t.Errorf("stderr missing session log: %q", res.err)
		}
	})

	t.Run("log file takes the log directly", func(t *testing.T) {
		project := sandbox(t)
		logPath := filepath.Join(project, "duke.log")
		stubTUI(t, func(ui.Handler) error { return nil })

		res := mustRun(t, "", "--log-file", logPath, "tui")
		if res.err != "" {
			t.Errorf("stderr: got %q, want empty", res.err)
		}
		if got := readFile(t, logPath); !strings.Contains(got, "loaded tasks") {
			t.Errorf("log file: %q", got)
		}
	})

	t.Run("rejects extra arguments", func(t *testing.T) {
		sandbox(t)
		stubTUI(t, func(ui.Handler) error { return nil })
		if _, err := runWith(t, context.Background(), "", "tui", "extra"); err == nil {
			t.Error("expected an error for extra arguments")
		}
	})
}

func TestExecCommand(t *testing.T) {
	project := sandbox(t)

	res := mustRun(t, "", "exec", "event", "party", "/at", "20/10/2019", "19:00")
	if !strings.Contains(res.out, "[E][ ] party (at: 2019-10-20 19:00)") {
		t.Errorf("exec output: %q", res.out)
	}
	mustRun(t, "", "exec", "done", "1")

	got := readFile(t, filepath.Join(project, "data", "duke.txt"))
	if got != "E,1,party,20/10/2019 19:00" {
		t.Errorf("data file: got %q", got)
	}

	if _, err := runWith(t, context.Background(), "", "exec"); err == nil {
		t.Error("exec without a command should fail")
	}
}

func TestDataFileFlag(t *testing.T) {
	project := sandbox(t)
	mustRun(t, "", "-f", "tasks/mine.txt", "exec", "todo", "x")

	if got := readFile(t, filepath.Join(project, "tasks", "mine.txt")); got != "T,0,x" {
		t.Errorf("custom data file: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(project, "data")); !os.IsNotExist(err) {
		t.Error("default data directory should not be created")
	}
}

func TestLogFileFlag(t *testing.T) {
	project := sandbox(t)
	res := mustRun(t, "", "--log-file", "logs/duke.log", "--log-level", "debug", "exec", "todo", "x")
	if res.err != "" {
		t.Errorf("logs leaked to stderr: %q", res.err)
	}
	logs := readFile(t, filepath.Join(project, "logs", "duke.log"))
	if !strings.Contains(logs, "running command") || !strings.Contains(logs, "loaded tasks") {
		t.Errorf("log file: %q", logs)
	}
}

func TestLsCommand(t *testing.T) {
	project := sandbox(t)

	res := mustRun(t, "", "ls")
	if strings.TrimSpace(res.out) != todo.EmptyList {
		t.Errorf("ls on missing file: got %q", res.out)
	}
	if _, err := os.Stat(filepath.Join(project, "data")); !os.IsNotExist(err) {
		t.Error("ls should not create the data directory")
	}

	mustRun(t, "", "exec", "todo", "read", "book")
	res = mustRun(t, "", "ls")
	if want := todo.ListHeader + "\n1.[T][ ] read book\n"; res.out != want {
		t.Errorf("ls: got %q, want %q", res.out, want)
	}
}

func TestExportCommand(t *testing.T) {
	project := sandbox(t)
	fixed := time.Date(2020, time.March, 1, 12, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	mustRun(t, "", "exec", "todo", "a,", "b")
	mustRun(t, "", "exec", "deadline", "c", "/by", "01/01/2020", "09:00")

	res := mustRun(t, "", "export")
	var doc storage.ExportDocument
	if err := json.Unmarshal([]byte(res.out), &doc); err != nil {
		t.Fatalf("export is not JSON: %v\n%s", err, res.out)
	}
	if len(doc.Tasks) != 2 || doc.Tasks[0].Description != "a, b" || doc.Tasks[1].By != "01/01/2020 09:00" {
		t.Errorf("unexpected export: %+v", doc.Tasks)
	}
	if !doc.ExportedAt.Equal(fixed) {
		t.Errorf("ExportedAt: got %v, want %v", doc.ExportedAt, fixed)
	}

	mustRun(t, "", "export", "--out", "out.json")
	if got := readFile(t, filepath.Join(project, "out.json")); got != res.out {
		t.Errorf("file export differs from stdout export:\n%s\n%s", got, res.out)
	}
}

func TestDoctorCommand(t *testing.T) {
	project := sandbox(t)

	res := mustRun(t, "", "doctor")
	if !strings.Contains(res.out, "Missing") || !strings.Contains(res.out, "All checks passed.") {
		t.Errorf("doctor on fresh project: %q", res.out)
	}
	if !strings.Contains(res.out, "(default)") {
		t.Errorf("doctor should show config sources: %q", res.out)
	}

	mustRun(t, "", "exec", "todo", "x")
	res = mustRun(t, "", "doctor")
	if !strings.Contains(res.out, "1 task(s), 0 done") {
		t.Errorf("doctor with data: %q", res.out)
	}

	if err := os.WriteFile(filepath.Join(project, "data", "duke.txt"), []byte("T,0,ok\nZ,0,bad"), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := runWith(t, context.Background(), "", "doctor")
	if err == nil || !strings.Contains(err.Error(), "doctor found problems") {
		t.Errorf("doctor on corrupt file: got %v", err)
	}
	if !strings.Contains(res.out, "Line 2") {
		t.Errorf("doctor should report the bad line: %q", res.out)
	}
}

func TestConfigCommand(t *testing.T) {
	project := sandbox(t)
	if err := os.WriteFile(filepath.Join(project, "duke.toml"), []byte(`log_format = "logfmt"`), 0644); err != nil {
		t.Fatal(err)
	}

	res := mustRun(t, "", "config")
	if !strings.Contains(res.out, "logfmt") || !strings.Contains(res.out, "(project file)") {
		t.Errorf("config output: %q", res.out)
	}

	res = mustRun(t, "", "config", "--example")
	if !strings.Contains(res.out, `data_file = "data/duke.txt"`) {
		t.Errorf("example config: %q", res.out)
	}
}

func TestCorruptDataFileFailsSession(t *testing.T) {
	project := sandbox(t)
	if err := os.MkdirAll(filepath.Join(project, "data"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, "data", "duke.txt"), []byte("T,7,x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := runWith(t, context.Background(), "list\n")
	var pe *storage.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("expected *storage.ParseError, got %v", err)
	}
}
