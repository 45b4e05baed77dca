// Package parser turns one line of user input into one operation on a task list.
package parser

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nibzard/duke-go/internal/todo"
)

// FormatHint is the response given when a deadline or event time does not parse.
// It is guidance rather than a rejection: the user is expected to retry the
// same command with a corrected timestamp.
const FormatHint = "Please specify the date and time in this format: " + todo.InputLayoutHint

// Command keywords.
const (
	CmdList     = "list"
	CmdDone     = "done"
	CmdDelete   = "delete"
	CmdFind     = "find"
	CmdTodo     = "todo"
	CmdDeadline = "deadline"
	CmdEvent    = "event"
)

// Effect describes what a processed command did to the list.
type Effect int

const (
	EffectNone Effect = iota
	EffectAdded
	EffectRemoved
	EffectUpdated
)

func (e Effect) String() string {
	switch e {
	case EffectAdded:
		return "added"
	case EffectRemoved:
		return "removed"
	case EffectUpdated:
		return "updated"
	default:
		return "none"
	}
}

// Result is the outcome of processing one line.
type Result struct {
	// Response is the text shown to the user.
	Response string
	// Effect tells the caller how to reconcile persistent storage.
	Effect Effect
	// Hint is set when Response is the timestamp format guidance.
	Hint bool
	// Err classifies a rejected command. Response already holds its message.
	Err error
}

// Rejected reports whether the command was refused.
func (r Result) Rejected() bool {
	return r.Err != nil
}

type timedSpec struct {
	separator  string
	emptyMsg   string
	missingMsg string
}

var timedSpecs = map[todo.Kind]timedSpec{
	todo.KindDeadline: {
		separator:  "/by",
		emptyMsg:   "☹ OOPS!!! The description of a deadline cannot be empty.",
		missingMsg: "☹ OOPS!!! Please specify the deadline time",
	},
	todo.KindEvent: {
		separator:  "/at",
		emptyMsg:   "☹ OOPS!!! The description of an event cannot be empty.",
		missingMsg: "☹ OOPS!!! Please specify the event time",
	},
}

// Process interprets line against list. It never returns an error: rejected
// commands come back as a Result whose Response explains the problem and whose
// Err is a *UserInputError. The list is only touched by valid commands.
func Process(line string, list *todo.List) Result {
	keyword, rest := splitCommand(line)

	switch keyword {
	case CmdList:
		return Result{Response: list.RenderAll()}
	case CmdDone:
		index, err := parseIndex(rest, list.Len(), "☹ OOPS!!! Please specify which task is done")
		if err != nil {
			return reject(err)
		}
		return Result{Response: list.MarkDoneAt(index), Effect: EffectUpdated}
	case CmdDelete:
		index, err := parseIndex(rest, list.Len(), "☹ OOPS!!! Please specify which task you want to delete")
		if err != nil {
			return reject(err)
		}
		return Result{Response: list.Remove(index), Effect: EffectRemoved}
	case CmdFind:
		if rest == "" {
			return reject(newError(ErrMissingKeyword, "☹ OOPS!!! Please specify the keyword to find"))
		}
		return Result{Response: todo.RenderNumbered(todo.FindHeader, list.Search(rest))}
	case CmdTodo:
		if rest == "" {
			return reject(newError(ErrEmptyDescription, "☹ OOPS!!! The description of a todo cannot be empty."))
		}
		task, err := todo.NewTodo(rest)
		if err != nil {
			return reject(descriptionError(err, "☹ OOPS!!! The description of a todo cannot be empty."))
		}
		return Result{Response: list.Add(task), Effect: EffectAdded}
	case CmdDeadline:
		return addTimed(todo.KindDeadline, rest, list)
	case CmdEvent:
		return addTimed(todo.KindEvent, rest, list)
	default:
		return reject(newError(ErrUnknownCommand, "☹ OOPS!!! I'm sorry, but I don't understand that command :-("))
	}
}

func addTimed(kind todo.Kind, rest string, list *todo.List) Result {
	spec := timedSpecs[kind]
	if rest == "" {
		return reject(newError(ErrEmptyDescription, spec.emptyMsg))
	}

	description, when, found := cutSeparator(rest, spec.separator)
	if !found {
		return reject(newError(ErrMissingSeparator, spec.missingMsg))
	}
	if description == "" {
		return reject(newError(ErrEmptyDescription, spec.emptyMsg))
	}

	task, err := todo.New(kind, description, when)
	if err != nil {
		var tsErr *todo.TimestampError
		if errors.As(err, &tsErr) {
			return Result{Response: FormatHint, Hint: true}
		}
		return reject(descriptionError(err, spec.emptyMsg))
	}
	return Result{Response: list.Add(task), Effect: EffectAdded}
}

// parseIndex converts a one-based task number into a zero-based index.
func parseIndex(arg string, length int, missingMsg string) (int, *UserInputError) {
	if arg == "" {
		return 0, newError(ErrMissingNumber, missingMsg)
	}
	n, err := strconv.Atoi(arg)
	if err != nil || strings.HasPrefix(arg, "+") {
		return 0, newError(ErrInvalidNumber, "☹ OOPS!!! Invalid task number.")
	}
	if n <= 0 || n > length {
		return 0, newError(ErrOutOfBounds, "☹ OOPS!!! Your task number is out of bounds")
	}
	return n - 1, nil
}

func descriptionError(err error, emptyMsg string) *UserInputError {
	if errors.Is(err, todo.ErrMultilineDescription) {
		return newError(ErrInvalidDescription, "☹ OOPS!!! The description must fit on a single line.")
	}
	return newError(ErrEmptyDescription, emptyMsg)
}

func reject(err *UserInputError) Result {
	return Result{Response: err.Message, Err: err}
}

// splitCommand separates the keyword from the trimmed remainder of line.
func splitCommand(line string) (keyword, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// cutSeparator splits s around the first occurrence of sep that stands as its
// own word, so "/by" inside "/bypass" is not a separator.
func cutSeparator(s, sep string) (before, after string, found bool) {
	offset := 0
	for {
		i := strings.Index(s[offset:], sep)
		if i < 0 {
			return s, "", false
		}
		start := offset + i
		end := start + len(sep)
		if spaceBefore(s[:start]) && spaceAfter(s[end:]) {
			return strings.TrimSpace(s[:start]), strings.TrimSpace(s[end:]), true
		}
		offset = end
	}
}

func spaceBefore(s string) bool {
	if s == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func spaceAfter(s string) bool {
	if s == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
