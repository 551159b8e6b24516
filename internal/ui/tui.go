package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/todolist/internal/model"
	"github.com/Makepad-fr/todolist/internal/todo"
)

// row adapts a task to bubbles/list.Item. Done is the display flag: it is
// flipped as soon as the user toggles and then replaced by the list's value.
type row struct {
	ID      string
	Content string
	Done    bool
}

func (r row) Title() string       { return r.Content }
func (r row) Description() string { return "" }
func (r row) FilterValue() string { return r.Content }

// Single-line row delegate.
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, _ := item.(row)

	box := mutedStyle.Render(boxUnchecked)
	text := r.Content
	if r.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

type loadedMsg struct{ err error }

var (
	addBind    = key.NewBinding(key.WithKeys("a", "tab"), key.WithHelp("a", "add"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
)

// Model is the Bubble Tea model for the interactive list.
type Model struct {
	ctx   context.Context
	tasks *todo.List

	ready   bool
	loadErr error

	rows  list.Model
	input textinput.Model
	// adding is true while the add form has focus.
	adding  bool
	formErr string
	warn    string

	width, height int
}

// NewModel builds the TUI over l. l must not be loaded yet; Init loads it.
func NewModel(ctx context.Context, l *todo.List) Model {
	rows := list.New(nil, rowDelegate{}, 0, 0)
	rows.SetShowTitle(false)
	rows.SetShowHelp(true)
	rows.SetShowPagination(true)
	rows.SetShowStatusBar(false)
	rows.SetFilteringEnabled(false)
	rows.Styles.HelpStyle = helpStyle
	rows.Styles.PaginationStyle = helpStyle
	rows.SetStatusBarItemName("task", "tasks")
	rows.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{addBind, toggleBind, deleteBind} }
	rows.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{addBind, toggleBind, deleteBind} }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Add a new task"
	ti.CharLimit = model.MaxContentLen

	m := Model{
		ctx:    ctx,
		tasks:  l,
		rows:   rows,
		input:  ti,
		width:  80,
		height: 24,
	}
	m.resize()
	return m
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, l *todo.List) error {
	p := tea.NewProgram(NewModel(ctx, l), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.loadErr != nil {
		return fm.loadErr
	}
	return nil
}

// Init performs the one load. Nothing touches the list until loadedMsg.
func (m Model) Init() tea.Cmd {
	ctx, l := m.ctx, m.tasks
	return func() tea.Msg {
		return loadedMsg{err: l.Load(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			return m, tea.Quit
		}
		m.ready = true
		m.syncRows()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.ready {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.adding {
			return m.updateForm(msg)
		}
		switch {
		case msg.String() == "q" || msg.String() == "esc":
			return m, tea.Quit
		case key.Matches(msg, addBind):
			m.adding = true
			m.formErr = ""
			m.resize()
			return m, m.input.Focus()
		case key.Matches(msg, toggleBind):
			m.toggleSelected()
			return m, nil
		case key.Matches(msg, deleteBind):
			m.deleteSelected()
			return m, nil
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		_, err := m.tasks.Add(m.ctx, m.input.Value())
		switch {
		case errors.Is(err, todo.ErrEmptyContent):
			m.formErr = "Task cannot be empty"
			return m, nil
		case errors.Is(err, todo.ErrContentTooLong):
			m.formErr = fmt.Sprintf("Task is longer than %d characters", model.MaxContentLen)
			return m, nil
		}
		m.noteSave(err)
		m.input.SetValue("")
		m.formErr = ""
		m.syncRows()
		m.rows.Select(len(m.rows.Items()) - 1)
		return m, nil
	case "esc":
		m.adding = false
		m.formErr = ""
		m.input.Blur()
		m.resize()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleSelected() {
	i := m.rows.Index()
	r, ok := m.rows.SelectedItem().(row)
	if !ok {
		return
	}
	r.Done = !r.Done
	m.rows.SetItem(i, r)

	_, err := m.tasks.Toggle(m.ctx, r.ID)
	m.noteSave(err)
	m.syncRows()
}

func (m *Model) deleteSelected() {
	r, ok := m.rows.SelectedItem().(row)
	if !ok {
		return
	}
	_, err := m.tasks.Delete(m.ctx, r.ID)
	m.noteSave(err)
	m.syncRows()
}

// noteSave records a failed write as a warning; the session carries on.
func (m *Model) noteSave(err error) {
	var se *todo.SaveError
	switch {
	case err == nil:
		m.warn = ""
	case errors.As(err, &se):
		m.warn = "Could not save your tasks: " + se.Err.Error()
	default:
		m.warn = err.Error()
	}
}

// syncRows rebuilds the rows from the authoritative list.
func (m *Model) syncRows() {
	tasks := m.tasks.Tasks()
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, row{ID: t.ID, Content: t.Content, Done: t.IsDone})
	}
	idx := m.rows.Index()
	m.rows.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.rows.Select(idx)
	}
}

func (m *Model) resize() {
	// header, form frame and warning line
	chrome := 8
	if m.adding {
		chrome++
	}
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	m.rows.SetSize(m.width-4, h)
	m.input.Width = m.width - 10
}

func (m Model) View() string {
	if m.loadErr != nil {
		return errorStyle.Render("✖ load: "+m.loadErr.Error()) + "\n"
	}
	if !m.ready {
		return frameStyle.Render(mutedStyle.Render("Loading…"))
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.form())
	b.WriteString("\n")

	if m.tasks.Len() == 0 {
		b.WriteString("\n" + titleStyle.Render(EmptyTitle) + "\n" + mutedStyle.Render(EmptyHint) + "\n")
	} else {
		b.WriteString(m.rows.View())
	}
	if m.warn != "" {
		b.WriteString("\n" + warnStyle.Render("! "+m.warn))
	}
	return frameStyle.Render(b.String())
}

func (m Model) header() string {
	created, completed := SummaryText(m.tasks.Len(), m.tasks.CountDone())
	return fmt.Sprintf("%s   %s   %s",
		titleStyle.Render("To-do"),
		accentStyle.Render(created),
		successStyle.Render(completed),
	)
}

func (m Model) form() string {
	title := "New task"
	if !m.adding {
		title += mutedStyle.Render("  (press a)")
	}
	if m.formErr != "" {
		title += "  " + errorStyle.Render(m.formErr)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Render(title + "\n" + m.input.View())
}
