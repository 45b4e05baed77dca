package session

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nibzard/duke-go/internal/logging"
	"github.com/nibzard/duke-go/internal/storage"
)

func openSession(t *testing.T, path string) (*Session, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts := logging.DefaultOptions()
	opts.Level = log.DebugLevel
	s, err := Open(storage.NewStore(path), WithLogger(logging.New(&buf, opts)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, &buf
}

func readData(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read data file: %v", err)
	}
	return string(data)
}

func TestOpenBootstrapsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "duke.txt")
	s, logs := openSession(t, path)

	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
	if got := readData(t, path); got != "" {
		t.Errorf("new data file: got %q, want empty", got)
	}
	if !strings.Contains(logs.String(), "created data file") {
		t.Errorf("bootstrap not logged: %q", logs.String())
	}
}

func TestOpenLoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duke.txt")
	if err := os.WriteFile(path, []byte("T,1,read book\nD,0,return book,15/10/2019 18:00"), 0644); err != nil {
		t.Fatal(err)
	}
	s, _ := openSession(t, path)

	want := "Here are the tasks in your list:\n1.[T][X] read book\n2.[D][ ] return book (by: 2019-10-15 18:00)"
	if got := s.Process("list"); got != want {
		t.Errorf("list: got %q, want %q", got, want)
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duke.txt")
	if err := os.WriteFile(path, []byte("Q,0,what"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(storage.NewStore(path))
	var pe *storage.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Open: got %v, want *storage.ParseError", err)
	}
}

func TestProcessPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "duke.txt")
	s, _ := openSession(t, path)

	steps := []struct {
		line string
		want string
	}{
		{"todo read book", "T,0,read book"},
		{"deadline return book /by 15/10/2019 18:00", "T,0,read book\nD,0,return book,15/10/2019 18:00"},
		{"event party /at 20/10/2019 19:30", "T,0,read book\nD,0,return book,15/10/2019 18:00\nE,0,party,20/10/2019 19:30"},
		{"done 2", "T,0,read book\nD,1,return book,15/10/2019 18:00\nE,0,party,20/10/2019 19:30"},
		{"delete 1", "D,1,return book,15/10/2019 18:00\nE,0,party,20/10/2019 19:30"},
		{"list", "D,1,return book,15/10/2019 18:00\nE,0,party,20/10/2019 19:30"},
		{"find party", "D,1,return book,15/10/2019 18:00\nE,0,party,20/10/2019 19:30"},
		{"delete 9", "D,1,return book,15/10/2019 18:00\nE,0,party,20/10/2019 19:30"},
		{"deadline x /by soon", "D,1,return book,15/10/2019 18:00\nE,0,party,20/10/2019 19:30"},
	}
	for _, step := range steps {
		s.Process(step.line)
		if got := readData(t, path); got != step.want {
			t.Fatalf("after %q: data file %q, want %q", step.line, got, step.want)
		}
	}

	reopened, _ := openSession(t, path)
	if reopened.Len() != 2 {
		t.Errorf("reopened Len: got %d, want 2", reopened.Len())
	}
}

func TestHandleExit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duke.txt")
	s, _ := openSession(t, path)
	s.Process("todo one")

	reply := s.Handle("bye")
	if !reply.Exit || reply.Text != Farewell {
		t.Errorf("bye: got %+v", reply)
	}
	if s.Len() != 1 {
		t.Errorf("bye changed the list: len %d", s.Len())
	}
}

func TestHandleResponses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duke.txt")
	s, _ := openSession(t, path)

	reply := s.Handle("todo read book")
	if reply.Exit {
		t.Error("todo should not end the session")
	}
	if !strings.Contains(reply.Text, "[T][ ] read book") || !strings.Contains(reply.Text, "now you have 1 task(s)") {
		t.Errorf("todo: got %q", reply.Text)
	}

	reply = s.Handle("done 5")
	if !reply.Result.Rejected() || !strings.Contains(reply.Text, "out of bounds") {
		t.Errorf("done 5: got %+v", reply)
	}

	reply = s.Handle("deadline x /by tomorrow")
	if !reply.Result.Hint {
		t.Errorf("bad timestamp should produce a hint: %+v", reply)
	}
}

func TestStorageFailureIsLoggedNotReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duke.txt")
	s, logs := openSession(t, path)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	resp := s.Process("todo first")
	if !strings.Contains(resp, "[T][ ] first") {
		t.Errorf("response should be unaffected by storage failure: %q", resp)
	}
	if strings.Contains(resp, "append") {
		t.Errorf("storage error leaked into response: %q", resp)
	}
	if !strings.Contains(logs.String(), "append failed") {
		t.Errorf("append failure not logged: %q", logs.String())
	}
	if !s.Stale() {
		t.Error("session should be stale after a failed write")
	}

	s.Process("todo second")
	if s.Stale() {
		t.Error("session should recover after a successful rewrite")
	}
	if got, want := readData(t, path), "T,0,first\nT,0,second"; got != want {
		t.Errorf("data file: got %q, want %q", got, want)
	}
	if !strings.Contains(logs.String(), "resynchronised") {
		t.Errorf("resync not logged: %q", logs.String())
	}
}

func TestIsExit(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"bye", true},
		{"  bye  ", true},
		{"bye now", true},
		{"byebye", false},
		{"BYE", false},
		{"", false},
		{"todo bye", false},
	}
	for _, tt := range tests {
		if got := IsExit(tt.line); got != tt.want {
			t.Errorf("IsExit(%q): got %v, want %v", tt.line, got, tt.want)
		}
	}
}
