// Package todo holds the in-memory task list and the operations on it.
// Every mutation writes the full list through the Persister.
package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Makepad-fr/todolist/internal/model"
)

var (
	ErrNotReady       = errors.New("list not loaded yet")
	ErrAlreadyLoaded  = errors.New("list already loaded")
	ErrEmptyContent   = errors.New("content is empty")
	ErrContentTooLong = fmt.Errorf("content longer than %d characters", model.MaxContentLen)
)

// Persister loads and saves the whole list.
type Persister interface {
	Load(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
}

// SaveError reports a mutation that was applied in memory but could not be
// written. The list stays usable; the next successful save catches up.
type SaveError struct {
	Op  string
	Err error
}

func (e *SaveError) Error() string { return e.Op + ": save: " + e.Err.Error() }
func (e *SaveError) Unwrap() error { return e.Err }

// State is the list lifecycle. Writes are only possible once Ready.
type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// List is the task store. It is not safe for concurrent use.
type List struct {
	p     Persister
	tasks []model.Task
	state State

	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

type Option func(*List)

func WithClock(fn func() time.Time) Option { return func(l *List) { l.now = fn } }

func WithIDGenerator(fn func() string) Option { return func(l *List) { l.newID = fn } }

func WithLogger(log zerolog.Logger) Option { return func(l *List) { l.log = log } }

func New(p Persister, opts ...Option) *List {
	l := &List{
		p:     p,
		now:   time.Now,
		newID: uuid.NewString,
		log:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *List) State() State { return l.state }

// Load seeds the list from storage and moves it to Ready. It must be called
// exactly once, before any mutation.
func (l *List) Load(ctx context.Context) error {
	if l.state == StateReady {
		return ErrAlreadyLoaded
	}
	tasks, err := l.p.Load(ctx)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	l.tasks = tasks
	l.state = StateReady
	l.log.Debug().Int("tasks", len(tasks)).Msg("list ready")
	return nil
}

// Add appends a new, not-done task.
func (l *List) Add(ctx context.Context, content string) (model.Task, error) {
	if l.state != StateReady {
		return model.Task{}, ErrNotReady
	}
	content, err := ValidateContent(content)
	if err != nil {
		return model.Task{}, err
	}

	t := model.Task{
		ID:        l.newID(),
		Content:   content,
		Timestamp: l.now().UnixMilli(),
	}
	l.tasks = append(l.tasks, t)
	l.log.Debug().Str("id", t.ID).Msg("added task")
	return t, l.save(ctx, "add")
}

// Toggle flips the done flag of the task with id. An unknown id is a no-op
// and reports false.
func (l *List) Toggle(ctx context.Context, id string) (bool, error) {
	if l.state != StateReady {
		return false, ErrNotReady
	}
	i := l.index(id)
	if i < 0 {
		return false, nil
	}
	l.tasks[i].IsDone = !l.tasks[i].IsDone
	l.log.Debug().Str("id", id).Bool("done", l.tasks[i].IsDone).Msg("toggled task")
	return true, l.save(ctx, "toggle")
}

// Delete removes every task with id, keeping the order of the rest. An
// unknown id is a no-op and reports false.
func (l *List) Delete(ctx context.Context, id string) (bool, error) {
	if l.state != StateReady {
		return false, ErrNotReady
	}
	kept := l.tasks[:0]
	for _, t := range l.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	removed := len(l.tasks) - len(kept)
	clear(l.tasks[len(kept):])
	l.tasks = kept
	if removed == 0 {
		return false, nil
	}
	l.log.Debug().Str("id", id).Msg("deleted task")
	return true, l.save(ctx, "delete")
}

// CountDone is recomputed from the full list on every call.
func (l *List) CountDone() int { return model.CountDone(l.tasks) }

func (l *List) Len() int { return len(l.tasks) }

// Tasks returns a copy of the list in insertion order.
func (l *List) Tasks() []model.Task {
	out := make([]model.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

func (l *List) index(id string) int {
	for i, t := range l.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (l *List) save(ctx context.Context, op string) error {
	if err := l.p.Save(ctx, l.tasks); err != nil {
		l.log.Warn().Err(err).Str("op", op).Msg("save failed, keeping in-memory list")
		return &SaveError{Op: op, Err: err}
	}
	return nil
}

// ValidateContent trims s and checks it against the content bounds.
func ValidateContent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(s) > model.MaxContentLen {
		return "", ErrContentTooLong
	}
	return s, nil
}
