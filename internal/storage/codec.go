// Package storage persists task lists as comma-delimited text lines.
package storage

import (
	"fmt"
	"strings"

	"github.com/nibzard/duke-go/internal/todo"
)

// Delimiter separates the fields of a record.
const Delimiter = ","

// Done flag values.
const (
	flagDone    = "1"
	flagNotDone = "0"
)

// Encode formats t as a single record line without a line terminator:
//
//	T,<0|1>,<description>
//	D,<0|1>,<description>,<dd/MM/yyyy HH:mm>
//	E,<0|1>,<description>,<dd/MM/yyyy HH:mm>
func Encode(t todo.Task) string {
	flag := flagNotDone
	if t.Done {
		flag = flagDone
	}
	fields := []string{t.Kind.Tag(), flag, t.Description}
	if t.Kind != todo.KindTodo {
		fields = append(fields, todo.FormatTimestamp(t.When))
	}
	return strings.Join(fields, Delimiter)
}

// Decode parses one record line. The description may itself contain the
// delimiter: todos take everything after the flag, and timed tasks take the
// timestamp after the last delimiter.
func Decode(line string) (todo.Task, error) {
	line = strings.TrimSuffix(line, "\r")

	tag, rest, ok := strings.Cut(line, Delimiter)
	if !ok {
		return todo.Task{}, fmt.Errorf("expected at least 3 fields")
	}
	kind, ok := todo.KindFromTag(tag)
	if !ok {
		return todo.Task{}, fmt.Errorf("unknown kind tag %q", tag)
	}

	flag, rest, ok := strings.Cut(rest, Delimiter)
	if !ok {
		return todo.Task{}, fmt.Errorf("expected at least 3 fields")
	}
	var done bool
	switch flag {
	case flagDone:
		done = true
	case flagNotDone:
	default:
		return todo.Task{}, fmt.Errorf("invalid done flag %q", flag)
	}

	var (
		task todo.Task
		err  error
	)
	if kind == todo.KindTodo {
		task, err = todo.NewTodo(rest)
	} else {
		i := strings.LastIndex(rest, Delimiter)
		if i < 0 {
			return todo.Task{}, fmt.Errorf("%s record is missing its timestamp", kind)
		}
		task, err = todo.New(kind, rest[:i], rest[i+1:])
	}
	if err != nil {
		return todo.Task{}, fmt.Errorf("invalid %s record: %w", kind, err)
	}
	task.Done = done
	return task, nil
}
