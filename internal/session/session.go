// Package session hosts the command engine for one interactive run: it
// hydrates the task list from the data file, feeds command lines to the
// parser, and mirrors every state change back to disk.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/duke-go/internal/logging"
	"github.com/nibzard/duke-go/internal/parser"
	"github.com/nibzard/duke-go/internal/storage"
	"github.com/nibzard/duke-go/internal/todo"
)

const (
	// Greeting is shown when an interactive session starts.
	Greeting = "Hello! I'm Duke\nWhat can I do for you?"

	// Farewell is the response to the exit keyword.
	Farewell = "Bye. Hope to see you again soon!"

	// ExitKeyword ends the session.
	ExitKeyword = "bye"
)

// Reply is the outcome of one command line.
type Reply struct {
	Text string
	Exit bool
	// Result is the parser outcome. It is the zero value for the exit keyword.
	Result parser.Result
}

// Session owns the task list for one run. Its methods are safe for
// concurrent use; commands are processed one at a time.
type Session struct {
	mu     sync.Mutex
	store  *storage.Store
	list   *todo.List
	logger *log.Logger

	// stale is set after a failed write. The next change rewrites the
	// whole file instead of appending to it.
	stale bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the operator logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open hydrates a session from store. A missing data file is created
// (together with its directory) and the session starts empty. A corrupt
// data file is returned as a *storage.ParseError.
func Open(store *storage.Store, opts ...Option) (*Session, error) {
	s := &Session{store: store, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}

	tasks, err := store.Load()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if err := store.Create(); err != nil {
			return nil, fmt.Errorf("bootstrap data file: %w", err)
		}
		s.logger.Info("created data file", "path", store.Path())
		tasks = nil
	case err != nil:
		return nil, err
	}

	s.list = todo.NewList(tasks)
	s.logger.Info("loaded tasks", "path", store.Path(), "count", s.list.Len())
	return s, nil
}

// Process runs one command line and returns the response text.
func (s *Session) Process(line string) string {
	return s.Handle(line).Text
}

// Handle runs one command line. The exit keyword produces the farewell
// without touching the task list.
func (s *Session) Handle(line string) Reply {
	if IsExit(line) {
		return Reply{Text: Farewell, Exit: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := parser.Process(line, s.list)
	switch {
	case res.Rejected():
		s.logger.Debug("command rejected", "kind", parser.KindOf(res.Err))
	case res.Hint:
		s.logger.Debug("timestamp format hint shown")
	default:
		s.logger.Debug("command processed", "effect", res.Effect, "count", s.list.Len())
	}
	s.persist(res.Effect)

	return Reply{Text: res.Response, Result: res}
}

// IsExit reports whether line asks to end the session.
func IsExit(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && fields[0] == ExitKeyword
}

// persist mirrors an effect to the data file. Failures are logged and
// never reach the user; the in-memory list stays authoritative.
func (s *Session) persist(effect parser.Effect) {
	if effect == parser.EffectNone {
		return
	}

	var err error
	if effect == parser.EffectAdded && !s.stale {
		n := s.list.Len()
		err = s.store.Append(s.list.Get(n-1), n-1)
		if err != nil {
			s.logger.Error("append failed", "path", s.store.Path(), "err", err)
		}
	} else {
		err = s.store.Rewrite(s.list.Tasks())
		if err != nil {
			s.logger.Error("rewrite failed", "path", s.store.Path(), "err", err)
		} else if s.stale {
			s.logger.Info("data file resynchronised", "path", s.store.Path(), "count", s.list.Len())
		}
	}
	s.stale = err != nil
}

// Tasks returns a copy of the current tasks in list order.
func (s *Session) Tasks() []todo.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Tasks()
}

// Len returns the number of tasks.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Len()
}

// Stale reports whether the data file is known to be out of date.
func (s *Session) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// Path returns the data file path.
func (s *Session) Path() string {
	return s.store.Path()
}
