package tui

import "github.com/Azahorscak/nyxflare/internal/api"

// ModeKind names the input mode of the controller.
type ModeKind int

const (
	ModeNormal ModeKind = iota
	ModeSearch
	ModeRecordForm
	ModeConfirmDelete
	ModeAddAccount
)

func (k ModeKind) String() string {
	switch k {
	case ModeNormal:
		return "normal"
	case ModeSearch:
		return "search"
	case ModeRecordForm:
		return "record form"
	case ModeConfirmDelete:
		return "confirm delete"
	case ModeAddAccount:
		return "add account"
	}
	return "unknown"
}

// Severity of a status message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

// StatusMessage is the single status line. The last write wins.
type StatusMessage struct {
	Text     string
	Severity Severity
}

// FieldView is one rendered form row.
type FieldView struct {
	Label   string
	Value   string
	Error   string
	Focused bool
}

// FormView is the render data of an open form.
type FormView struct {
	Title  string
	Fields []FieldView
	Saving bool
	Error  string
}

// Snapshot is a read-only copy of everything the view paints.
type Snapshot struct {
	Focus     Focus
	Selection Selection
	Accounts  []api.Account
	Zones     []api.Zone

	// Records is the current page of visible records; RecordOffset is the
	// visible index of Records[0].
	Records      []api.Record
	RecordOffset int
	VisibleCount int
	TotalCount   int
	Page         int
	PageCount    int
	Filter       FilterState

	Mode    ModeKind
	Search  string
	Confirm *api.Record
	Form    *FormView

	Status  StatusMessage
	Pending []Pending
}

// Snapshot returns the current state for rendering.
func (m Model) Snapshot() Snapshot {
	records, offset := m.nav.PageRecords()
	page, count := m.nav.Page()
	s := Snapshot{
		Focus:        m.nav.Focus(),
		Selection:    m.nav.Selection(),
		Accounts:     append([]api.Account(nil), m.nav.Accounts()...),
		Zones:        append([]api.Zone(nil), m.nav.Zones()...),
		Records:      records,
		RecordOffset: offset,
		VisibleCount: len(m.nav.visible),
		TotalCount:   len(m.nav.Records()),
		Page:         page,
		PageCount:    count,
		Filter:       m.nav.Filter(),
		Mode:         m.mode.modeKind(),
		Status:       m.status,
		Pending:      m.requests.All(),
	}
	switch md := m.mode.(type) {
	case searchMode:
		s.Search = md.input.View()
	case confirmMode:
		r := md.record
		s.Confirm = &r
	case RecordForm:
		v := md.view()
		s.Form = &v
	case AccountForm:
		v := md.view()
		s.Form = &v
	}
	return s
}
