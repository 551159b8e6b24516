package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Makepad-fr/todolist/internal/config"
	"github.com/Makepad-fr/todolist/internal/model"
)

// Adapter reads and writes the whole task list under one key.
// Every Save is a full snapshot; there are no diffs and no schema version.
type Adapter struct {
	kv    KV
	key   string
	log   zerolog.Logger
	newID func() string
}

type AdapterOption func(*Adapter)

// WithKey overrides the storage key.
func WithKey(key string) AdapterOption {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

func WithLogger(l zerolog.Logger) AdapterOption {
	return func(a *Adapter) { a.log = l }
}

// WithIDGenerator sets the generator used for legacy entries stored without an id.
func WithIDGenerator(fn func() string) AdapterOption {
	return func(a *Adapter) { a.newID = fn }
}

func NewAdapter(kv KV, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		kv:    kv,
		key:   config.DefaultKey,
		log:   zerolog.Nop(),
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Adapter) Key() string { return a.key }

// Load returns the stored list. An absent key yields an empty list. So does
// malformed data, which is logged and otherwise ignored; the next Save
// replaces it.
func (a *Adapter) Load(ctx context.Context) ([]model.Task, error) {
	b, found, err := a.kv.Get(ctx, a.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.key, err)
	}
	if !found {
		a.log.Debug().Str("key", a.key).Msg("no stored list")
		return []model.Task{}, nil
	}

	var tasks []model.Task
	if err := validateList(b); err != nil {
		a.log.Warn().Err(err).Str("key", a.key).Int("bytes", len(b)).
			Msg("stored list is malformed, starting empty")
		return []model.Task{}, nil
	}
	if err := json.Unmarshal(b, &tasks); err != nil {
		a.log.Warn().Err(err).Str("key", a.key).Int("bytes", len(b)).
			Msg("stored list is malformed, starting empty")
		return []model.Task{}, nil
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	// Entries written without an id, or sharing one, get a fresh id.
	seen := make(map[string]struct{}, len(tasks))
	fixed := 0
	for i := range tasks {
		if _, dup := seen[tasks[i].ID]; tasks[i].ID == "" || dup {
			tasks[i].ID = a.newID()
			fixed++
		}
		seen[tasks[i].ID] = struct{}{}
	}
	if fixed > 0 {
		a.log.Info().Int("count", fixed).Msg("assigned ids to stored tasks")
	}

	a.log.Debug().Int("tasks", len(tasks)).Msg("loaded list")
	return tasks, nil
}

// Save overwrites the stored list with tasks.
func (a *Adapter) Save(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := a.kv.Set(ctx, a.key, b); err != nil {
		return fmt.Errorf("write %s: %w", a.key, err)
	}
	a.log.Debug().Int("tasks", len(tasks)).Msg("saved list")
	return nil
}
