package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codefacts/internal/core/app"
	"codefacts/internal/engine/facts"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	modifiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	cleanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	revision   string
	lastUpdate time.Time

	added, removed, modified int
	filesScanned, factCount  int
	degraded                 []string
}

type updateMsg struct {
	added    []facts.Fact
	removed  []facts.Fact
	modified []string
	degraded []string

	filesScanned int
	factCount    int
}

func newUpdateMsg(result app.RunResult) updateMsg {
	msg := updateMsg{}
	if result.Changeset != nil {
		msg.added = result.Changeset.Added
		msg.removed = result.Changeset.Removed
		for _, m := range result.Changeset.Modified {
			msg.modified = append(msg.modified, fmt.Sprintf("%s (%s)", m.After.QualifiedName, m.After.FilePath))
		}
		msg.degraded = result.Changeset.DegradedFiles
	}
	if result.Current != nil {
		msg.filesScanned = len(result.Current.FilesScanned)
		msg.factCount = len(result.Current.Facts)
	}
	return msg
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.added = len(msg.added)
		m.removed = len(msg.removed)
		m.modified = len(msg.modified)
		m.filesScanned = msg.filesScanned
		m.factCount = msg.factCount
		m.degraded = msg.degraded
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, f := range msg.added {
			items = append(items, item{
				title: "Added " + string(f.Kind),
				desc:  fmt.Sprintf("%s in %s:%d", f.QualifiedName, f.FilePath, f.Span.StartLine),
			})
		}
		for _, f := range msg.removed {
			items = append(items, item{
				title: "Removed " + string(f.Kind),
				desc:  fmt.Sprintf("%s in %s", f.QualifiedName, f.FilePath),
			})
		}
		for _, desc := range msg.modified {
			items = append(items, item{title: "Modified definition", desc: desc})
		}
		for _, path := range msg.degraded {
			items = append(items, item{title: "Degraded file", desc: path})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d facts",
		m.lastUpdate.Format("15:04:05"), m.filesScanned, m.factCount))

	var summary string
	if m.added == 0 && m.removed == 0 && m.modified == 0 && len(m.degraded) == 0 {
		summary = cleanStyle.Render("No changes against baseline")
	} else {
		summary = fmt.Sprintf("%s | %s | %s",
			addedStyle.Render(fmt.Sprintf("+%d", m.added)),
			removedStyle.Render(fmt.Sprintf("-%d", m.removed)),
			modifiedStyle.Render(fmt.Sprintf("~%d", m.modified)))
		if len(m.degraded) > 0 {
			summary += " | " + removedStyle.Render(fmt.Sprintf("%d degraded", len(m.degraded)))
		}
	}

	header := fmt.Sprintf("%s\n%s | %s\n",
		titleStyle(fmt.Sprintf("Fact Delta Monitor (%s)", m.revision)), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel(revision string) model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Changes"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		revision:   revision,
		lastUpdate: time.Now(),
	}
}
