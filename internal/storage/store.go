package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/duke-go/internal/todo"
)

// LineSeparator terminates records on disk.
const LineSeparator = "\n"

// ErrNotFound is returned by Load when the data file does not exist.
var ErrNotFound = errors.New("data file not found")

// ParseError reports a record that could not be decoded.
type ParseError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Store reads and writes the task file at a fixed path.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path. The file is not
// touched until one of the methods is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads every record in file order. Blank lines are skipped.
func (s *Store) Load() ([]todo.Task, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	tasks := make([]todo.Task, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		task, err := Decode(line)
		if err != nil {
			return nil, &ParseError{Path: s.path, Line: lineNo, Text: line, Err: err}
		}
		tasks = append(tasks, task)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return tasks, nil
}

// Append writes one record at the end of the file. currentCount is the number
// of records already stored; the first record is written without a leading
// line separator.
func (s *Store) Append(task todo.Task, currentCount int) error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open data file for append: %w", err)
	}

	line := Encode(task)
	if currentCount > 0 {
		line = LineSeparator + line
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close data file: %w", err)
	}
	return nil
}

// Rewrite replaces the file contents with tasks. The new contents are written
// to a temporary file in the same directory and renamed into place.
func (s *Store) Rewrite(tasks []todo.Task) error {
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = Encode(t)
	}
	data := strings.Join(lines, LineSeparator)

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.WriteString(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// Create makes the data file and its parent directory if they do not exist.
// An existing file is left untouched.
func (s *Store) Create() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("create data file: %w", err)
	}
	return f.Close()
}
