package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/studylog/internal/app"
	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/form"
	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/output"
)

// AppTitle is shown in the header.
const AppTitle = "Study Log"

// loadedMsg carries the result of a start or reload.
type loadedMsg struct{ err error }

// submittedMsg carries the result of a dialog submit.
type submittedMsg struct{ err error }

// deletedMsg carries the result of a delete.
type deletedMsg struct {
	id  string
	err error
}

// clearStatusMsg hides the status line if it is still the one set at seq.
type clearStatusMsg struct{ seq int }

// Dialog fields, in focus order.
const (
	fieldTitle = iota
	fieldTime
	fieldCount
)

// Model is the bubbletea model for the record list and its dialog.
type Model struct {
	ctx     context.Context
	session *app.Session
	keys    KeyMap

	// List state
	cursor   int
	deleting bool

	// Dialog inputs, mirrored into the form controller on every change.
	inputs []textinput.Model
	focus  int
	// submitErr is the last repository failure while the dialog is open.
	submitErr error

	spinner spinner.Model

	// UI state
	width     int
	height    int
	err       error
	status    string
	statusSeq int
}

// NewModel creates the TUI model for session. ctx is passed to every
// repository call.
func NewModel(ctx context.Context, session *app.Session) *Model {
	title := textinput.New()
	title.Placeholder = "What did you study?"
	title.Prompt = ""
	title.CharLimit = 200

	hours := textinput.New()
	hours.Placeholder = "0"
	hours.Prompt = ""
	hours.CharLimit = 3

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return &Model{
		ctx:     ctx,
		session: session,
		keys:    DefaultKeyMap(),
		inputs:  []textinput.Model{title, hours},
		spinner: sp,
	}
}

// Init starts the initial load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startCmd())
}

func (m *Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.session.Start(m.ctx)}
	}
}

func (m *Model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.session.Reload(m.ctx)}
	}
}

func (m *Model) submitCmd() tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{err: m.session.Submit(m.ctx)}
	}
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: m.session.Delete(m.ctx, id)}
	}
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Interrupt) {
			return m, tea.Quit
		}
		if m.session.Form().IsOpen() {
			return m.updateDialog(msg)
		}
		return m.updateList(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.err = msg.err
		m.clampCursor()
		return m, nil

	case submittedMsg:
		return m.handleSubmitted(msg.err)

	case deletedMsg:
		m.deleting = false
		m.err = msg.err
		m.clampCursor()
		if msg.err == nil {
			return m, m.setStatus("Deleted")
		}
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}

	if m.session.Form().IsOpen() {
		return m, m.updateInput(msg)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A delete or reload may have shrunk the list before its message arrived.
	m.clampCursor()
	recs := m.session.Records()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(recs)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reloadCmd()

	case key.Matches(msg, m.keys.New):
		if err := m.session.OpenCreate(m.ctx); err != nil {
			m.err = err
			return m, nil
		}
		// The time input starts at zero, like a number spinner.
		return m, m.openDialog("", "0")

	case key.Matches(msg, m.keys.Edit):
		if m.deleting {
			return m, nil
		}
		rec, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if err := m.session.OpenEdit(m.ctx, rec.ID); err != nil {
			m.err = err
			return m, nil
		}
		return m, m.openDialog(rec.Title, strconv.Itoa(rec.Time))

	case key.Matches(msg, m.keys.Delete):
		rec, ok := m.Selected()
		if !ok || m.deleting {
			return m, nil
		}
		m.deleting = true
		return m, m.deleteCmd(rec.ID)
	}

	return m, nil
}

// openDialog fills the inputs and pushes them into the draft.
func (m *Model) openDialog(title, hours string) tea.Cmd {
	m.submitErr = nil
	m.err = nil
	m.inputs[fieldTitle].SetValue(title)
	m.inputs[fieldTime].SetValue(hours)
	m.syncDraft()
	return m.focusField(fieldTitle)
}

func (m *Model) focusField(i int) tea.Cmd {
	m.focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
			m.inputs[j].CursorEnd()
			continue
		}
		m.inputs[j].Blur()
	}
	return cmd
}

func (m *Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session.Form().State().Submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.submitErr = nil
		if err := m.session.Close(m.ctx); err != nil {
			m.submitErr = err
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		m.syncDraft()
		m.submitErr = nil
		return m, m.submitCmd()

	case key.Matches(msg, m.keys.Next):
		return m, m.focusField(m.focus + 1)

	case key.Matches(msg, m.keys.Prev):
		return m, m.focusField(m.focus - 1)

	case m.focus == fieldTime && key.Matches(msg, m.keys.Increment):
		m.stepTime(1)
		return m, nil

	case m.focus == fieldTime && key.Matches(msg, m.keys.Decrement):
		m.stepTime(-1)
		return m, nil
	}

	return m, m.updateInput(msg)
}

func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.focus == fieldTime {
		m.filterTimeInput(before)
	}
	if m.inputs[m.focus].Value() != before {
		m.syncDraft()
	}
	return cmd
}

// filterTimeInput keeps the time input a whole number inside the accepted
// range, reverting to before on anything else. Empty is allowed.
func (m *Model) filterTimeInput(before string) {
	v := strings.TrimSpace(m.inputs[fieldTime].Value())
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		m.inputs[fieldTime].SetValue(before)
		return
	}
	if c := form.ClampTime(n); c != n || v != m.inputs[fieldTime].Value() {
		m.inputs[fieldTime].SetValue(strconv.Itoa(c))
	}
}

func (m *Model) stepTime(delta int) {
	n, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldTime].Value()))
	if err != nil {
		n = 0
	}
	m.inputs[fieldTime].SetValue(strconv.Itoa(form.ClampTime(n + delta)))
	m.syncDraft()
}

// syncDraft copies the inputs into the form controller.
func (m *Model) syncDraft() {
	if err := m.session.SetTitle(m.inputs[fieldTitle].Value()); err != nil {
		m.submitErr = err
		return
	}
	if err := m.session.SetTimeInput(m.inputs[fieldTime].Value()); err != nil {
		m.submitErr = err
	}
}

func (m *Model) handleSubmitted(err error) (tea.Model, tea.Cmd) {
	if err == nil {
		m.clampCursor()
		return m, m.setStatus("Saved")
	}
	if errors.IsValidationError(err) {
		// Violations are read from the controller state when rendering.
		return m, nil
	}
	if m.session.Form().IsOpen() {
		m.submitErr = err
		return m, nil
	}
	// Committed, but the refresh failed.
	m.err = err
	return m, nil
}

func (m *Model) setStatus(s string) tea.Cmd {
	m.statusSeq++
	m.status = s
	seq := m.statusSeq
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *Model) clampCursor() {
	n := len(m.session.Records())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the screen.
func (m *Model) View() string {
	sections := []string{StyleTitle.Render(AppTitle)}

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.status != "" {
		sections = append(sections, StyleSuccess.Render(m.status))
	}

	if m.session.Form().IsOpen() {
		sections = append(sections, m.viewDialog(), HelpBar(m.keys.DialogHelp()))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.viewList(), HelpBar(m.keys.ListHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewList() string {
	store := m.session.Store()
	if store.Loading() {
		if m.err != nil {
			return StyleSubtitle.Render("Press r to retry.")
		}
		return m.spinner.View() + " Loading..."
	}

	recs := store.Records()
	if len(recs) == 0 {
		return StyleSubtitle.Render("No records yet. Press n to add one.")
	}

	width := m.width
	if width <= 0 {
		width = output.DefaultWidth
	}
	titleWidth := max(width-30, 10)

	var b strings.Builder
	b.WriteString(StyleHeader.Render(fmt.Sprintf("  %-*s  %8s  %s", titleWidth, "TITLE", "TIME", "DATE")))
	total := 0
	for i, r := range recs {
		total += r.Time
		title := output.Truncate(r.Title, titleWidth)
		pad := strings.Repeat(" ", titleWidth-lipgloss.Width(title))
		line := fmt.Sprintf("%s%s  %8s  %s", title, pad, output.FormatHours(r.Time), output.FormatDate(r.CreatedAt))
		b.WriteString("\n")
		if i == m.cursor {
			b.WriteString(StyleSelected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
	}
	b.WriteString("\n\n")
	b.WriteString(StyleSubtitle.Render(fmt.Sprintf("%d records, ", len(recs))))
	b.WriteString(StyleHours.Render(output.FormatHours(total)))
	if at := store.RefreshedAt(); !at.IsZero() {
		b.WriteString(StyleSubtitle.Render(", updated " + at.Local().Format("15:04")))
	}
	if m.deleting {
		b.WriteString("  " + m.spinner.View() + " Deleting...")
	}

	return StyleListBox.Render(b.String())
}

func (m *Model) viewDialog() string {
	st := m.session.Form().State()

	heading := "New record"
	if st.Mode == form.ModeEdit {
		heading = "Edit record"
	}

	var b strings.Builder
	b.WriteString(StyleLabel.Render(heading))
	b.WriteString("\n\n")

	labels := []string{"Title", "Time (hours)"}
	fields := []string{form.FieldTitle, form.FieldTime}
	for i, in := range m.inputs {
		b.WriteString(StyleLabel.Render(labels[i]) + "\n")
		b.WriteString(in.View() + "\n")
		for _, v := range violationsFor(st.Errors, fields[i]) {
			b.WriteString(StyleError.Render(v.Message) + "\n")
		}
		b.WriteString("\n")
	}

	switch {
	case st.Submitting:
		b.WriteString(m.spinner.View() + " Saving...")
	case m.submitErr != nil:
		b.WriteString(StyleError.Render(m.submitErr.Error()))
	}

	return StyleDialogBox.Render(strings.TrimRight(b.String(), "\n"))
}

func violationsFor(all []errors.Violation, field string) []errors.Violation {
	var out []errors.Violation
	for _, v := range all {
		if v.Field == field {
			out = append(out, v)
		}
	}
	return out
}

// Selected returns the record under the cursor.
func (m *Model) Selected() (model.Record, bool) {
	recs := m.session.Records()
	if m.cursor < 0 || m.cursor >= len(recs) {
		return model.Record{}, false
	}
	return recs[m.cursor], true
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, session *app.Session) error {
	p := tea.NewProgram(NewModel(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
