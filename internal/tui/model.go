// Package tui implements the Bubble Tea terminal UI: the account, zone and
// record panes, the record and account forms, and the request bookkeeping
// that keeps asynchronous results consistent with the selection.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"

	"github.com/Azahorscak/nyxflare/internal/api"
	"github.com/Azahorscak/nyxflare/internal/logging"
)

// mode is the input mode. Exactly one is active; it decides which keys are
// valid.
type mode interface {
	modeKind() ModeKind
}

type normalMode struct{}

func (normalMode) modeKind() ModeKind { return ModeNormal }

// searchMode captures filter text. previous is restored on Esc.
type searchMode struct {
	input    textinput.Model
	previous FilterState
}

func (searchMode) modeKind() ModeKind { return ModeSearch }

type confirmMode struct {
	record api.Record
}

func (confirmMode) modeKind() ModeKind { return ModeConfirmDelete }

func (RecordForm) modeKind() ModeKind { return ModeRecordForm }

func (AccountForm) modeKind() ModeKind { return ModeAddAccount }

// Model is the root Bubble Tea model.
type Model struct {
	requests Requests
	nav      Navigation
	mode     mode
	status   StatusMessage

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	ticking bool
	zones   *zone.Manager

	onAddAccount func(api.Account) error
	initCmd      tea.Cmd

	width  int
	height int
}

// New creates the root model. onAddAccount persists accounts created in the
// UI; it may be nil.
func New(provider api.Provider, onAddAccount func(api.Account) error) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		requests:     NewRequests(provider),
		nav:          NewNavigation(),
		mode:         normalMode{},
		keys:         defaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		ticking:      true,
		zones:        zone.New(),
		onAddAccount: onAddAccount,
		status:       StatusMessage{Text: "Loading accounts…"},
	}
	cmd, _ := m.requests.ListAccounts()
	m.initCmd = cmd
	return m
}

// Init fires the initial accounts fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.spinner.Tick)
}

// Mode returns the active input mode.
func (m Model) Mode() ModeKind { return m.mode.modeKind() }

// Status returns the status message.
func (m Model) Status() StatusMessage { return m.status }

func (m *Model) info(format string, args ...any) {
	m.status = StatusMessage{Text: fmt.Sprintf(format, args...), Severity: SeverityInfo}
}

// progress reports background progress without hiding an error.
func (m *Model) progress(format string, args ...any) {
	if m.status.Severity == SeverityError {
		return
	}
	m.info(format, args...)
}

func (m *Model) fail(err error) {
	m.status = StatusMessage{Text: err.Error(), Severity: SeverityError}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.nav.SetPageSize(newLayout(m.width, m.height).pageSize())
		return m, nil

	case spinner.TickMsg:
		if !m.requests.Busy() {
			m.ticking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case requestDoneMsg:
		return m.handleDone(msg)

	case submitRecordMsg:
		return m.submitRecord(msg)

	case cancelFormMsg:
		if _, ok := m.mode.(RecordForm); ok {
			m.mode = normalMode{}
			m.info("Edit cancelled")
		}
		return m, nil

	case submitAccountMsg:
		return m.addAccount(msg.account)

	case cancelAccountMsg:
		m.mode = normalMode{}
		if len(m.nav.Accounts()) == 0 {
			m.info("No accounts configured. Press a to add one.")
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m.updateMode(msg)
}

// updateMode forwards non-key messages, such as cursor blinks, to the
// active mode.
func (m Model) updateMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch md := m.mode.(type) {
	case RecordForm:
		m.mode, cmd = md.Update(msg)
	case AccountForm:
		m.mode, cmd = md.Update(msg)
	case searchMode:
		md.input, cmd = md.input.Update(msg)
		m.mode = md
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch md := m.mode.(type) {
	case searchMode:
		return m.handleSearchKey(md, msg)
	case confirmMode:
		return m.handleConfirmKey(md, msg)
	case RecordForm, AccountForm:
		return m.updateMode(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextPane):
		m.nav.SetFocus(m.nav.Focus().Next())
	case key.Matches(msg, m.keys.PrevPane):
		m.nav.SetFocus(m.nav.Focus().Prev())

	case key.Matches(msg, m.keys.Up):
		return m.navigate(m.nav.Move(-1))
	case key.Matches(msg, m.keys.Down):
		return m.navigate(m.nav.Move(1))
	case key.Matches(msg, m.keys.PageUp):
		return m.navigate(m.nav.PageMove(-1))
	case key.Matches(msg, m.keys.PageDown):
		return m.navigate(m.nav.PageMove(1))

	case key.Matches(msg, m.keys.Filter):
		in := textinput.New()
		in.Prompt = "/"
		in.Placeholder = "filter records"
		in.SetValue(m.nav.Filter().Text)
		in.CursorEnd()
		in.Focus()
		m.mode = searchMode{input: in, previous: m.nav.Filter()}
		return m, textinput.Blink

	case key.Matches(msg, m.keys.AddAccount):
		m.mode = NewAccountForm(m.nav.Accounts())
		return m, textinput.Blink

	case key.Matches(msg, m.keys.New):
		z, ok := m.nav.Zone()
		if !ok {
			m.info("Select a zone first")
			return m, nil
		}
		m.mode = NewCreateForm(sanitize(z.Name))
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		r, ok := m.nav.Record()
		if !ok {
			m.info("No record selected")
			return m, nil
		}
		z, _ := m.nav.Zone()
		m.mode = NewEditForm(sanitize(z.Name), r)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		r, ok := m.nav.Record()
		if !ok {
			m.info("No record selected")
			return m, nil
		}
		m.mode = confirmMode{record: r}

	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	}
	return m, nil
}

func (m Model) handleSearchKey(md searchMode, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Apply):
		f := NewFilter(md.input.Value())
		m.nav.SetFilter(f)
		m.mode = normalMode{}
		if f.Active {
			m.info("Filter %q: %d of %d records", f.Text, len(m.nav.visible), len(m.nav.Records()))
		} else {
			m.info("Filter cleared")
		}
		return m, nil
	case key.Matches(msg, m.keys.Back):
		m.nav.SetFilter(md.previous)
		m.mode = normalMode{}
		return m, nil
	}
	var cmd tea.Cmd
	md.input, cmd = md.input.Update(msg)
	m.mode = md
	return m, cmd
}

func (m Model) handleConfirmKey(md confirmMode, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.mode = normalMode{}
		a, okA := m.nav.Account()
		z, okZ := m.nav.Zone()
		if !okA || !okZ {
			return m, nil
		}
		cmd, err := m.requests.DeleteRecord(a, z, md.record.ID)
		if errors.Is(err, ErrSlotBusy) {
			m.info("A change to %s is already in progress", sanitize(md.record.Name))
			return m, nil
		}
		m.info("Deleting %s…", sanitize(md.record.Name))
		cmd = m.withSpinner(cmd)
		return m, cmd
	case key.Matches(msg, m.keys.Cancel):
		m.mode = normalMode{}
		m.info("Delete cancelled")
	}
	return m, nil
}

// refresh re-fetches the list of the focused pane.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		err  error
		what string
	)
	switch m.nav.Focus() {
	case FocusAccounts:
		what = "accounts"
		cmd, err = m.requests.ListAccounts()
	case FocusZones:
		a, ok := m.nav.Account()
		if !ok {
			return m, nil
		}
		what = "zones"
		cmd, err = m.requests.ListZones(a)
	case FocusRecords:
		a, okA := m.nav.Account()
		z, okZ := m.nav.Zone()
		if !okA || !okZ {
			return m, nil
		}
		what = "records"
		cmd, err = m.requests.ListRecords(a, z)
	}
	if errors.Is(err, ErrSlotBusy) {
		m.info("Still loading %s…", what)
		return m, nil
	}
	m.info("Refreshing %s…", what)
	cmd = m.withSpinner(cmd)
	return m, cmd
}

// navigate follows a selection change made by the user. A new selection
// replaces whatever status was shown.
func (m Model) navigate(f fetch) (Model, tea.Cmd) {
	if f != fetchNothing {
		m.status = StatusMessage{}
	}
	return m.follow(f)
}

// follow issues the fetch a navigation change asks for.
func (m Model) follow(f fetch) (Model, tea.Cmd) {
	var (
		cmd tea.Cmd
		err error
	)
	switch f {
	case fetchZones:
		a, _ := m.nav.Account()
		m.progress("Loading zones for %s…", sanitize(a.Name))
		cmd, err = m.requests.ListZones(a)
	case fetchRecords:
		a, _ := m.nav.Account()
		z, _ := m.nav.Zone()
		m.progress("Loading records for %s…", sanitize(z.Name))
		cmd, err = m.requests.ListRecords(a, z)
	default:
		return m, nil
	}
	if err != nil {
		return m, nil
	}
	cmd = m.withSpinner(cmd)
	return m, cmd
}

// withSpinner starts the spinner alongside cmd if it is not running.
func (m *Model) withSpinner(cmd tea.Cmd) tea.Cmd {
	if cmd == nil || m.ticking {
		return cmd
	}
	m.ticking = true
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) handleDone(msg requestDoneMsg) (tea.Model, tea.Cmd) {
	if err := m.requests.complete(msg, m.nav.Origin()); err != nil {
		return m, nil
	}

	if msg.err != nil {
		if form, ok := m.mode.(RecordForm); ok && form.Saving() && form.TargetID() == msg.origin.Target {
			form.saveFailed(msg.err)
			m.mode = form
		}
		m.fail(msg.err)
		return m, nil
	}

	switch msg.op {
	case opListAccounts:
		accounts, _ := msg.result.([]api.Account)
		next := m.nav.SetAccounts(accounts)
		if len(accounts) == 0 {
			if _, ok := m.mode.(normalMode); ok {
				m.mode = NewAccountForm(nil)
			}
			m.info("No accounts configured. Add one to get started.")
			return m, textinput.Blink
		}
		m.progress("Loaded %d account(s)", len(accounts))
		return m.follow(next)

	case opListZones:
		zones, _ := msg.result.([]api.Zone)
		next := m.nav.SetZones(zones)
		m.progress("Loaded %d zone(s) for %s", len(zones), sanitize(msg.origin.Account))
		return m.follow(next)

	case opListRecords:
		records, _ := msg.result.([]api.Record)
		m.nav.SetRecords(records)
		z, _ := m.nav.Zone()
		m.progress("Loaded %d record(s) in %s", len(records), sanitize(z.Name))

	case opCreateRecord, opUpdateRecord:
		r, _ := msg.result.(api.Record)
		cleared := m.nav.UpsertRecord(r)
		if form, ok := m.mode.(RecordForm); ok && form.Saving() && form.TargetID() == msg.origin.Target {
			m.mode = normalMode{}
		}
		verb := "Created"
		if msg.op == opUpdateRecord {
			verb = "Updated"
		}
		m.info("%s %s record %s", verb, r.Type, sanitize(r.Name))
		if cleared {
			m.status.Text += " (filter cleared)"
		}

	case opDeleteRecord:
		id, _ := msg.result.(string)
		m.nav.RemoveRecord(id)
		m.info("Deleted record")
	}
	return m, nil
}

func (m Model) submitRecord(msg submitRecordMsg) (tea.Model, tea.Cmd) {
	form, ok := m.mode.(RecordForm)
	if !ok {
		return m, nil
	}
	a, okA := m.nav.Account()
	z, okZ := m.nav.Zone()
	if !okA || !okZ {
		m.mode = normalMode{}
		m.info("Select a zone first")
		return m, nil
	}

	var (
		cmd tea.Cmd
		err error
	)
	if msg.kind == FormEditing {
		cmd, err = m.requests.UpdateRecord(a, z, msg.targetID, msg.draft)
	} else {
		cmd, err = m.requests.CreateRecord(a, z, msg.draft)
	}
	if errors.Is(err, ErrSlotBusy) {
		m.info("A change to this record is already in progress")
		return m, nil
	}
	form.setSaving()
	m.mode = form
	m.info("Saving %s…", sanitize(msg.draft.Name))
	cmd = m.withSpinner(cmd)
	return m, cmd
}

func (m Model) addAccount(a api.Account) (tea.Model, tea.Cmd) {
	if _, ok := m.mode.(AccountForm); !ok {
		return m, nil
	}
	m.mode = normalMode{}
	m.nav.SetFocus(FocusAccounts)
	next, cmd := m.follow(m.nav.AddAccount(a))

	next.info("Added account %s", sanitize(a.Name))
	if next.onAddAccount != nil {
		if err := next.onAddAccount(a); err != nil {
			logging.Error("saving account", zap.String("account", a.Name), zap.Error(err))
			next.fail(fmt.Errorf("account %s added for this session only: %w", a.Name, err))
		}
	}
	return next, cmd
}

// handleMouse focuses the pane under a left click.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if _, ok := m.mode.(normalMode); !ok {
		return m, nil
	}
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for _, f := range []Focus{FocusAccounts, FocusZones, FocusRecords} {
		if m.zones.Get(paneZoneID(f)).InBounds(msg) {
			m.nav.SetFocus(f)
			break
		}
	}
	return m, nil
}

func paneZoneID(f Focus) string {
	return "pane:" + f.String()
}
