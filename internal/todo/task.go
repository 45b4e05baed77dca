package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Timestamp layouts.
const (
	// InputLayout is the layout users type and the layout persisted on disk.
	InputLayout = "02/01/2006 15:04"
	// DisplayLayout is the layout used when rendering a task.
	DisplayLayout = "2006-01-02 15:04"
	// InputLayoutHint is InputLayout spelled the way users read it.
	InputLayoutHint = "dd/MM/yyyy HH:mm"
)

// Kind identifies the task variant.
type Kind int

const (
	KindTodo Kind = iota
	KindDeadline
	KindEvent
)

// String returns the command keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindTodo:
		return "todo"
	case KindDeadline:
		return "deadline"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Tag returns the single-letter tag used in rendering and on disk.
func (k Kind) Tag() string {
	switch k {
	case KindTodo:
		return "T"
	case KindDeadline:
		return "D"
	case KindEvent:
		return "E"
	default:
		return "?"
	}
}

// timeLabel returns the label shown before the timestamp, or "" for todos.
func (k Kind) timeLabel() string {
	switch k {
	case KindDeadline:
		return "by"
	case KindEvent:
		return "at"
	default:
		return ""
	}
}

// KindFromTag maps a persisted tag back to its kind.
func KindFromTag(tag string) (Kind, bool) {
	switch tag {
	case "T":
		return KindTodo, true
	case "D":
		return KindDeadline, true
	case "E":
		return KindEvent, true
	default:
		return 0, false
	}
}

var (
	// ErrEmptyDescription is returned when a task is built without a description.
	ErrEmptyDescription = errors.New("description is empty")
	// ErrMultilineDescription is returned when a description contains a line break.
	ErrMultilineDescription = errors.New("description contains a line break")
)

// TimestampError reports a timestamp that does not match InputLayout.
type TimestampError struct {
	Input string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("timestamp %q does not match %s: %v", e.Input, InputLayoutHint, e.Err)
}

// Unwrap returns the underlying error.
func (e *TimestampError) Unwrap() error {
	return e.Err
}

// Task is a single tracked item. When is the due time for deadlines and the
// occurrence time for events; it is zero for todos.
type Task struct {
	Kind        Kind
	Description string
	Done        bool
	When        time.Time
}

// NewTodo builds a todo.
func NewTodo(description string) (Task, error) {
	if err := validateDescription(description); err != nil {
		return Task{}, err
	}
	return Task{Kind: KindTodo, Description: description}, nil
}

// NewDeadline builds a deadline due at by.
func NewDeadline(description string, by time.Time) (Task, error) {
	return newTimed(KindDeadline, description, by)
}

// NewEvent builds an event happening at at.
func NewEvent(description string, at time.Time) (Task, error) {
	return newTimed(KindEvent, description, at)
}

// New builds a task of any kind from user text. For deadlines and events,
// when is parsed with ParseTimestamp; for todos it is ignored.
func New(kind Kind, description, when string) (Task, error) {
	switch kind {
	case KindTodo:
		return NewTodo(description)
	case KindDeadline, KindEvent:
		if err := validateDescription(description); err != nil {
			return Task{}, err
		}
		ts, err := ParseTimestamp(when)
		if err != nil {
			return Task{}, err
		}
		return newTimed(kind, description, ts)
	default:
		return Task{}, fmt.Errorf("unknown task kind %d", int(kind))
	}
}

func newTimed(kind Kind, description string, when time.Time) (Task, error) {
	if err := validateDescription(description); err != nil {
		return Task{}, err
	}
	if when.IsZero() {
		return Task{}, &TimestampError{Err: errors.New("timestamp is missing")}
	}
	normalized, err := normalize(when)
	if err != nil {
		return Task{}, err
	}
	return Task{Kind: kind, Description: description, When: normalized}, nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	if strings.ContainsAny(description, "\r\n") {
		return ErrMultilineDescription
	}
	return nil
}

// ParseTimestamp parses s in InputLayout. Surrounding whitespace is ignored.
func ParseTimestamp(s string) (time.Time, error) {
	input := strings.TrimSpace(s)
	ts, err := time.Parse(InputLayout, input)
	if err != nil {
		return time.Time{}, &TimestampError{Input: s, Err: err}
	}
	return normalize(ts)
}

// FormatTimestamp formats ts in InputLayout.
func FormatTimestamp(ts time.Time) string {
	return ts.Format(InputLayout)
}

// normalize drops seconds and zone so that FormatTimestamp and ParseTimestamp
// round-trip exactly.
func normalize(ts time.Time) (time.Time, error) {
	if ts.Year() < 0 || ts.Year() > 9999 {
		return time.Time{}, &TimestampError{
			Input: ts.String(),
			Err:   fmt.Errorf("year %d out of range", ts.Year()),
		}
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), 0, 0, time.UTC), nil
}

// MarkDone sets the task as done and returns the confirmation message.
func (t *Task) MarkDone() string {
	t.Done = true
	return "Nice! I've marked this task as done:\n  " + t.Render()
}

// Render returns the display form of the task.
func (t Task) Render() string {
	check := " "
	if t.Done {
		check = "X"
	}
	line := fmt.Sprintf("[%s][%s] %s", t.Kind.Tag(), check, t.Description)
	if label := t.Kind.timeLabel(); label != "" {
		line += fmt.Sprintf(" (%s: %s)", label, t.When.Format(DisplayLayout))
	}
	return line
}

// String implements fmt.Stringer.
func (t Task) String() string {
	return t.Render()
}

// Equal reports whether two tasks have the same kind, flag, description and time.
func (t Task) Equal(other Task) bool {
	return t.Kind == other.Kind &&
		t.Done == other.Done &&
		t.Description == other.Description &&
		t.When.Equal(other.When)
}
