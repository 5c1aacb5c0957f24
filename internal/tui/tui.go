// Package tui is the interactive terminal front end: a search bar with
// inline autocompletion over a live-filtered note list. Every notebook
// mutation happens inside Update, which is the single writer the rest of
// the system relies on.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/starford/ansuz/internal/finder"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/search"
	"github.com/starford/ansuz/internal/watcher"
)

var (
	listStyle        = lipgloss.NewStyle().MarginTop(1)
	placeholderStyle = lipgloss.NewStyle().Faint(true).MarginTop(1).PaddingLeft(2)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).PaddingLeft(2)
	promptStyle      = lipgloss.NewStyle().
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("230")).
				MarginRight(1).
				Padding(0, 1)
)

// noteItem adapts a catalog note to the bubbles list.
type noteItem struct {
	note *models.Note
}

func (i noteItem) Title() string       { return i.note.Title }
func (i noteItem) Description() string { return i.note.Snippet }
func (i noteItem) FilterValue() string { return "" } // filtering is ours, not the list's

// externalChange carries one watcher event into the update loop.
type externalChange struct {
	ev watcher.Event
}

// Model is the bubbletea model for the finder.
type Model struct {
	svc       *finder.Service
	textInput textinput.Model
	list      list.Model
	result    search.Result
	events    <-chan watcher.Event
	logger    *slog.Logger
	width     int
	height    int
	// listFocused is true once the user navigated into the list; before
	// that, enter acts on the autocompleted note or creates from the
	// query.
	listFocused bool
	// status holds a one-line user-facing message (conflict, launch
	// failure, delete confirmation), cleared on the next keystroke.
	status string
	// confirmDelete is the title awaiting a second ctrl+d press.
	confirmDelete string
}

// New builds the model. events may be nil when the watcher is disabled.
func New(svc *finder.Service, events <-chan watcher.Event, logger *slog.Logger) *Model {
	ti := textinput.New()
	ti.Placeholder = "Find or Create"
	ti.Prompt = "Notes:"
	ti.PromptStyle = promptStyle
	ti.ShowSuggestions = true
	ti.Focus()

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)

	return &Model{
		svc:       svc,
		textInput: ti,
		list:      l,
		events:    events,
		logger:    logger,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	m.refilter("")
	if m.events != nil {
		cmds = append(cmds, m.waitForChange())
	}
	return tea.Batch(cmds...)
}

// waitForChange blocks on the watcher channel and resolves to one event.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return externalChange{ev: ev}
	}
}

// refilter recomputes the result view for query and pushes it into the
// list and the autocomplete suggestions.
func (m *Model) refilter(query string) {
	m.result = m.svc.Query(query)
	m.list.SetItems(lo.Map(m.result.Notes, func(n *models.Note, _ int) list.Item {
		return noteItem{note: n}
	}))
	m.list.ResetSelected()
	m.listFocused = false

	prefixes := lo.FilterMap(m.result.Notes, func(n *models.Note, _ int) (string, bool) {
		return n.Title, query != "" && strings.HasPrefix(strings.ToLower(n.Title), strings.ToLower(query))
	})
	m.textInput.SetSuggestions(prefixes)
}

// target returns the note title an action applies to: the explicitly
// navigated list selection, else the autocompleted prefix match, else the
// typed query when it is creatable.
func (m *Model) target() (string, bool) {
	if m.listFocused {
		if it, ok := m.list.SelectedItem().(noteItem); ok {
			return it.note.Title, true
		}
	}
	if n, ok := search.Autocomplete(m.result); ok {
		return n.Title, true
	}
	if m.result.Creatable {
		return m.textInput.Value(), true
	}
	return "", false
}

func (m *Model) openTitle(title string) tea.Cmd {
	n, created, err := m.svc.Resolve(title)
	if err != nil {
		m.status = resolveMessage(err)
		return nil
	}
	return editNote(m.svc.EditorCmd(n.Path), n, created)
}

func resolveMessage(err error) string {
	return fmt.Sprintf("cannot open note: %v — pick another name", err)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case externalChange:
		m.svc.Apply(msg.ev)
		m.refilter(m.textInput.Value())
		return m, m.waitForChange()

	case editorFinished:
		if launchFailed(msg.err) {
			m.svc.FailLaunch(msg.note, msg.created)
			m.status = fmt.Sprintf("editor failed to start: %v", msg.err)
		} else if err := m.svc.Finish(msg.note.Title, msg.created); err != nil {
			m.logger.Warn("reconcile after edit failed",
				slog.String("title", msg.note.Title),
				slog.String("error", err.Error()))
		}
		m.refilter(m.textInput.Value())
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "ctrl+c", "ctrl+x":
			return m, tea.Quit

		case "enter":
			m.confirmDelete = ""
			if title, ok := m.target(); ok {
				if cmd := m.openTitle(title); cmd != nil {
					return m, cmd
				}
			}
			return m, nil

		case "esc":
			m.confirmDelete = ""
			if m.listFocused {
				m.listFocused = false
			} else if m.textInput.Value() != "" {
				m.textInput.SetValue("")
				m.refilter("")
			}
			return m, nil

		case "down":
			if !m.listFocused {
				m.listFocused = true
			} else {
				m.list.CursorDown()
			}
			return m, nil

		case "up":
			m.list.CursorUp()
			return m, nil

		case "pgdown":
			m.list.Paginator.NextPage()
			return m, nil

		case "pgup":
			m.list.Paginator.PrevPage()
			return m, nil

		case "ctrl+d":
			it, ok := m.list.SelectedItem().(noteItem)
			if !ok || len(m.result.Notes) == 0 {
				return m, nil
			}
			title := it.note.Title
			if m.confirmDelete != title {
				m.confirmDelete = title
				m.status = fmt.Sprintf("delete %q? press ctrl+d again to confirm", title)
				return m, nil
			}
			m.confirmDelete = ""
			if err := m.svc.Delete(title); err != nil {
				m.status = fmt.Sprintf("delete failed: %v", err)
			}
			m.refilter(m.textInput.Value())
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-3)
	}

	old := m.textInput.Value()
	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	if v := m.textInput.Value(); v != old {
		m.confirmDelete = ""
		m.refilter(v)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	var body string
	switch {
	case m.svc.Len() == 0 && m.textInput.Value() == "":
		body = placeholderStyle.Render("You have no notes yet, to create a note type a note title then press Enter")
	case len(m.result.Notes) == 0:
		body = placeholderStyle.Render("No matching notes, press Enter to create a new note")
	default:
		body = listStyle.Render(m.list.View())
	}

	parts := []string{m.textInput.View(), body}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
