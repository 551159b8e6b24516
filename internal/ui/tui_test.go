package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/todolist/internal/config"
	"github.com/Makepad-fr/todolist/internal/model"
	"github.com/Makepad-fr/todolist/internal/store"
	"github.com/Makepad-fr/todolist/internal/store/memstore"
	"github.com/Makepad-fr/todolist/internal/todo"
)

type flakyKV struct {
	*memstore.Store
	fail bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

// loaded runs Init's load command and feeds the result back.
func loaded(t *testing.T, kv store.KV) (Model, *todo.List) {
	t.Helper()
	l := todo.New(store.NewAdapter(kv))
	m := NewModel(context.Background(), l)
	return send(t, m, m.Init()()), l
}

func addTask(t *testing.T, m Model, content string) Model {
	t.Helper()
	m = send(t, m, keyRunes("a"))
	m.input.SetValue(content)
	return send(t, m, keyEnter)
}

func TestKeysIgnoredUntilLoaded(t *testing.T) {
	kv := memstore.New()
	m := NewModel(context.Background(), todo.New(store.NewAdapter(kv)))

	m = send(t, m, keyRunes("a"))
	if m.adding {
		t.Fatal("add form opened before load")
	}
	if !strings.Contains(m.View(), "Loading") {
		t.Errorf("view before load: %q", m.View())
	}
	if kv.Sets() != 0 {
		t.Errorf("wrote before load")
	}
}

func TestEmptyState(t *testing.T) {
	m, _ := loaded(t, memstore.New())
	v := m.View()
	if !strings.Contains(v, EmptyTitle) {
		t.Errorf("missing empty state:\n%s", v)
	}
	if !strings.Contains(v, "Tasks created 0") || !strings.Contains(v, "Completed 0 of 0") {
		t.Errorf("missing summary:\n%s", v)
	}
}

func TestAddToggleDelete(t *testing.T) {
	kv := memstore.New()
	m, l := loaded(t, kv)

	m = addTask(t, m, "Buy milk")
	if l.Len() != 1 || l.Tasks()[0].Content != "Buy milk" {
		t.Fatalf("after add: %+v", l.Tasks())
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
	m = send(t, m, keyEsc)
	if m.adding {
		t.Fatal("esc did not leave the form")
	}

	m = send(t, m, keySpace)
	if l.CountDone() != 1 {
		t.Fatalf("after toggle: done=%d", l.CountDone())
	}
	if r := m.rows.Items()[0].(row); !r.Done {
		t.Error("row display flag not set")
	}
	if v := m.View(); !strings.Contains(v, "Completed 1 of 1") {
		t.Errorf("summary not updated:\n%s", v)
	}

	m = send(t, m, keyRunes("d"))
	if l.Len() != 0 || len(m.rows.Items()) != 0 {
		t.Fatalf("after delete: list=%d rows=%d", l.Len(), len(m.rows.Items()))
	}

	stored, _ := store.NewAdapter(kv).Load(context.Background())
	if len(stored) != 0 {
		t.Errorf("stored after delete: %+v", stored)
	}
}

func TestEmptySubmitShowsError(t *testing.T) {
	m, l := loaded(t, memstore.New())
	m = addTask(t, m, "   ")
	if l.Len() != 0 {
		t.Fatal("blank task was added")
	}
	if m.formErr == "" || !strings.Contains(m.View(), m.formErr) {
		t.Errorf("no inline error shown")
	}
}

func TestInputLimit(t *testing.T) {
	m, _ := loaded(t, memstore.New())
	if m.input.CharLimit != model.MaxContentLen {
		t.Errorf("CharLimit: got %d", m.input.CharLimit)
	}
}

func TestSaveFailureIsAWarning(t *testing.T) {
	kv := &flakyKV{Store: memstore.New()}
	m, l := loaded(t, kv)

	kv.fail = true
	m = addTask(t, m, "A")
	if l.Len() != 1 {
		t.Fatal("in-memory task lost on save failure")
	}
	if !strings.Contains(m.warn, "disk full") || !strings.Contains(m.View(), "disk full") {
		t.Errorf("warning not shown: %q", m.warn)
	}

	kv.fail = false
	m = addTask(t, m, "B")
	if m.warn != "" {
		t.Errorf("warning not cleared: %q", m.warn)
	}
	stored, _ := store.NewAdapter(kv).Load(context.Background())
	if len(stored) != 2 {
		t.Errorf("stored: got %d tasks, want 2", len(stored))
	}
}

func TestLoadsExistingTasks(t *testing.T) {
	ctx := context.Background()
	kv := memstore.New()
	kv.Set(ctx, config.DefaultKey, []byte(`[{"id":"1","content":"A","isDone":true,"timestamp":1},{"id":"2","content":"B","isDone":false,"timestamp":2}]`))

	m, _ := loaded(t, kv)
	if len(m.rows.Items()) != 2 {
		t.Fatalf("rows: got %d", len(m.rows.Items()))
	}
	if v := m.View(); !strings.Contains(v, "Completed 1 of 2") {
		t.Errorf("summary:\n%s", v)
	}
	if kv.Sets() != 1 {
		t.Errorf("loading wrote to storage: %d sets", kv.Sets())
	}
}

func TestLoadErrorQuits(t *testing.T) {
	l := todo.New(store.NewAdapter(brokenKV{}))
	m := NewModel(context.Background(), l)
	next, cmd := m.Update(m.Init()())
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("load error did not quit")
	}
	if next.(Model).loadErr == nil {
		t.Error("load error not kept")
	}
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("unreachable")
}
func (brokenKV) Set(context.Context, string, []byte) error { return errors.New("unreachable") }
func (brokenKV) Close() error                              { return nil }
