package todo

import (
	"fmt"
	"strings"
)

// Response headers shared by the list renderings.
const (
	ListHeader  = "Here are the tasks in your list:"
	FindHeader  = "Here are the matching tasks in your list:"
	EmptyList   = "Your list is empty."
	countFormat = "So now you have %d task(s) in the list."
)

// List is the ordered, in-memory collection of tasks for a session.
type List struct {
	tasks []Task
}

// NewList returns a list holding a copy of tasks.
func NewList(tasks []Task) *List {
	l := &List{tasks: make([]Task, len(tasks))}
	copy(l.tasks, tasks)
	return l
}

// Len returns the number of tasks.
func (l *List) Len() int {
	return len(l.tasks)
}

// Tasks returns a copy of the tasks in display order.
func (l *List) Tasks() []Task {
	out := make([]Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Add appends task and returns the confirmation message.
func (l *List) Add(task Task) string {
	l.tasks = append(l.tasks, task)
	return fmt.Sprintf("Got it. I've added this task:\n  %s\n%s", task.Render(), l.countLine())
}

// Remove deletes the task at index and returns the confirmation message.
func (l *List) Remove(index int) string {
	removed := l.tasks[index]
	l.tasks = append(l.tasks[:index], l.tasks[index+1:]...)
	return fmt.Sprintf("Noted. I've removed this task:\n  %s\n%s", removed.Render(), l.countLine())
}

// Get returns the task at index.
func (l *List) Get(index int) Task {
	return l.tasks[index]
}

// MarkDoneAt marks the task at index as done.
func (l *List) MarkDoneAt(index int) string {
	return l.tasks[index].MarkDone()
}

// Search returns the tasks whose description contains keyword, in list order.
// The match is case-sensitive.
func (l *List) Search(keyword string) []Task {
	var matches []Task
	for _, t := range l.tasks {
		if strings.Contains(t.Description, keyword) {
			matches = append(matches, t)
		}
	}
	return matches
}

// RenderAll returns the numbered listing of every task.
func (l *List) RenderAll() string {
	if len(l.tasks) == 0 {
		return EmptyList
	}
	return RenderNumbered(ListHeader, l.tasks)
}

func (l *List) countLine() string {
	return fmt.Sprintf(countFormat, len(l.tasks))
}

// RenderNumbered renders header followed by tasks numbered from 1.
func RenderNumbered(header string, tasks []Task) string {
	var b strings.Builder
	b.WriteString(header)
	for i, t := range tasks {
		fmt.Fprintf(&b, "\n%d.%s", i+1, t.Render())
	}
	return b.String()
}
