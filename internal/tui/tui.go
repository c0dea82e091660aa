// Package tui provides a Bubble Tea TUI for browsing and stepping through a
// tracked value's history.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/refhistory/internal/history"
	"github.com/fakeyudi/refhistory/internal/report"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabCurrent tabID = iota
	tabHistory
	tabRedo
	tabCount
)

var tabNames = [tabCount]string{"Current", "History", "Redo"}

// Source is the tracked value as the TUI sees it.
type Source interface {
	Get() string
	Sync() error
	Path() string
}

// changedMsg reports that the source may have changed on disk.
type changedMsg struct{}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	// Live mode: h and src are set. Report mode: rep is set and keys that
	// mutate history are ignored.
	h       *history.Controller[string]
	src     Source
	changes <-chan struct{}
	rep     *report.Report

	name      string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	status    string
	err       error
}

// NewLive returns a model that drives h. Signals on changes make it re-read
// src, which records external edits.
func NewLive(h *history.Controller[string], src Source, changes <-chan struct{}) Model {
	return Model{
		h:       h,
		src:     src,
		changes: changes,
		name:    filepath.Base(src.Path()),
	}
}

// NewReport returns a read-only model over a saved report.
func NewReport(rep *report.Report, filename string) Model {
	return Model{
		rep:  rep,
		name: filepath.Base(filename),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		if m.src != nil {
			if err := m.src.Sync(); err != nil {
				m.err = err
			} else {
				m.err = nil
			}
			m.refresh()
		}
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1", "2", "3":
			m.activeTab = tabID(msg.String()[0] - '1')
			return m, nil
		case "u":
			m.step("undo", m.live(func() error { return m.h.Undo() }))
			return m, nil
		case "r":
			m.step("redo", m.live(func() error { return m.h.Redo() }))
			return m, nil
		case "c":
			m.step("cleared", m.live(func() error { m.h.Clear(); return nil }))
			return m, nil
		case "p":
			m.step("", m.live(func() error {
				if m.h.Paused() {
					m.h.Resume()
					m.status = "recording"
				} else {
					m.h.Pause()
					m.status = "paused"
				}
				return nil
			}))
			return m, nil
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

// live wraps fn so it only runs in live mode.
func (m *Model) live(fn func() error) func() error {
	if m.h == nil {
		return nil
	}
	return fn
}

func (m *Model) step(label string, fn func() error) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		m.err = err
	} else {
		m.err = nil
		if label != "" {
			m.status = label
		}
	}
	m.refresh()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  refhistory  " + m.name)

	var tabParts []string
	st := m.state()
	counts := [tabCount]int{1, len(st.History), len(st.Future)}
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i != tabCurrent {
			label = fmt.Sprintf(" %d %s (%d) ", i+1, tabNames[i], counts[i])
		}
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  q quit"
	if m.h != nil {
		hint = "  u undo  r redo  c clear  p pause" + hint
	}
	right := m.status
	if m.err != nil {
		right = errorStyle.Render(m.err.Error())
	}
	pad := m.width - lipgloss.Width(hint) - lipgloss.Width(right) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + right)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	for i := tabID(0); i < tabCount; i++ {
		m.viewports[i].SetContent(m.renderTab(i))
	}
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

// state returns what is displayed, from the controller or the report.
func (m *Model) state() *report.Report {
	if m.rep != nil {
		return m.rep
	}
	return &report.Report{
		Source:   m.src.Path(),
		Current:  m.src.Get(),
		Capacity: m.h.Capacity(),
		History:  toEntries(m.h.History()),
		Future:   toEntries(m.h.Future()),
	}
}

func toEntries(snaps []history.Snapshot[string]) []report.Entry {
	out := make([]report.Entry, len(snaps))
	for i, s := range snaps {
		out[i] = report.Entry{ID: s.ID, Value: s.Value, Timestamp: s.Timestamp}
	}
	return out
}

func (m *Model) renderTab(t tabID) string {
	st := m.state()
	switch t {
	case tabCurrent:
		return m.renderCurrent(st)
	case tabHistory:
		return renderEntries("History (newest first)", "  (nothing to undo)", st.History)
	case tabRedo:
		return renderEntries("Redo (next first)", "  (nothing to redo)", st.Future)
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *Model) renderCurrent(st *report.Report) string {
	var sb strings.Builder
	sb.WriteString(heading("Tracking"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Source:", st.Source)
	if st.Capacity < 0 || st.Capacity == history.Unbounded.Resolve() {
		row("Capacity:", "unbounded")
	} else {
		row("Capacity:", fmt.Sprintf("%d", st.Capacity))
	}
	row("Undo steps:", fmt.Sprintf("%d", len(st.History)))
	row("Redo steps:", fmt.Sprintf("%d", len(st.Future)))
	if m.h != nil && m.h.Paused() {
		row("Recording:", pausedStyle.Render("paused"))
	}
	if m.rep != nil {
		row("Generated:", st.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}

	sb.WriteString(heading("Current value"))
	sb.WriteString(indent(st.Current, "    ") + "\n")
	return sb.String()
}

func renderEntries(title, empty string, list []report.Entry) string {
	var sb strings.Builder
	sb.WriteString(heading(title))
	if len(list) == 0 {
		sb.WriteString(dimStyle.Render(empty) + "\n")
		return sb.String()
	}
	for i, e := range list {
		num := dimStyle.Render(fmt.Sprintf("  %3d.", i+1))
		ts := timeStyle.Render(" [" + e.Timestamp.Format("15:04:05") + "]")
		sb.WriteString(num + ts + "\n")
		sb.WriteString(indent(e.Value, "       ") + "\n\n")
	}
	return sb.String()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// RunLive starts the TUI driving h.
func RunLive(h *history.Controller[string], src Source, changes <-chan struct{}) error {
	p := tea.NewProgram(NewLive(h, src, changes), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunReport starts the read-only TUI for a saved report.
func RunReport(rep *report.Report, filename string) error {
	p := tea.NewProgram(NewReport(rep, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
