package tui

import (
	"strings"

	"github.com/Azahorscak/nyxflare/internal/api"
)

// Focus is the pane that receives navigation keys.
type Focus int

const (
	FocusAccounts Focus = iota
	FocusZones
	FocusRecords
)

const focusCount = 3

// Next returns the focus after f, wrapping around.
func (f Focus) Next() Focus { return (f + 1) % focusCount }

// Prev returns the focus before f, wrapping around.
func (f Focus) Prev() Focus { return (f + focusCount - 1) % focusCount }

func (f Focus) String() string {
	switch f {
	case FocusAccounts:
		return "accounts"
	case FocusZones:
		return "zones"
	case FocusRecords:
		return "records"
	}
	return "unknown"
}

// none marks an empty selection.
const none = -1

// Selection holds the selected index per level, or -1. Record indexes the
// visible (filtered) record list.
type Selection struct {
	Account int
	Zone    int
	Record  int
}

// FilterState is the record filter.
type FilterState struct {
	Text   string
	Active bool
}

// NewFilter returns a filter for text. Blank text gives an inactive filter.
func NewFilter(text string) FilterState {
	return FilterState{Text: text, Active: strings.TrimSpace(text) != ""}
}

// Matches reports whether r is visible under the filter. The match is
// case-insensitive over name, type and content; surrounding spaces in the
// filter text are part of the needle.
func (f FilterState) Matches(r api.Record) bool {
	if !f.Active {
		return true
	}
	needle := strings.ToLower(f.Text)
	for _, field := range []string{r.Name, r.Type, r.Content} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// fetch is the follow-up request a navigation change needs.
type fetch int

const (
	fetchNothing fetch = iota
	fetchZones
	fetchRecords
)

// Navigation owns the loaded lists, the selection, the focus and the filter.
// Mutating methods keep the selection invariant: an index is -1 exactly when
// its list is empty or its parent is unselected.
type Navigation struct {
	focus    Focus
	accounts []api.Account
	zones    []api.Zone
	records  []api.Record
	visible  []int
	sel      Selection
	filter   FilterState
	pageSize int
}

// NewNavigation returns an empty navigation model focused on accounts.
func NewNavigation() Navigation {
	return Navigation{
		sel:      Selection{Account: none, Zone: none, Record: none},
		pageSize: 10,
	}
}

func clamp(i, n int) int {
	if n == 0 {
		return none
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Focus returns the focused pane.
func (n *Navigation) Focus() Focus { return n.focus }

// SetFocus moves the focus to f.
func (n *Navigation) SetFocus(f Focus) { n.focus = f }

// Selection returns the current selection.
func (n *Navigation) Selection() Selection { return n.sel }

// Filter returns the active filter.
func (n *Navigation) Filter() FilterState { return n.filter }

// PageSize returns the number of record rows per page.
func (n *Navigation) PageSize() int { return n.pageSize }

// SetPageSize sets the page size, minimum 1.
func (n *Navigation) SetPageSize(size int) {
	if size < 1 {
		size = 1
	}
	n.pageSize = size
}

// Accounts returns the loaded accounts.
func (n *Navigation) Accounts() []api.Account { return n.accounts }

// Zones returns the loaded zones of the selected account.
func (n *Navigation) Zones() []api.Zone { return n.zones }

// Records returns all loaded records of the selected zone, unfiltered.
func (n *Navigation) Records() []api.Record { return n.records }

// Visible returns the records that pass the filter, in load order.
func (n *Navigation) Visible() []api.Record {
	out := make([]api.Record, len(n.visible))
	for i, idx := range n.visible {
		out[i] = n.records[idx]
	}
	return out
}

// Account returns the selected account.
func (n *Navigation) Account() (api.Account, bool) {
	if n.sel.Account == none {
		return api.Account{}, false
	}
	return n.accounts[n.sel.Account], true
}

// Zone returns the selected zone.
func (n *Navigation) Zone() (api.Zone, bool) {
	if n.sel.Zone == none {
		return api.Zone{}, false
	}
	return n.zones[n.sel.Zone], true
}

// Record returns the selected visible record.
func (n *Navigation) Record() (api.Record, bool) {
	if n.sel.Record == none {
		return api.Record{}, false
	}
	return n.records[n.visible[n.sel.Record]], true
}

// Origin returns the identity of the current selection.
func (n *Navigation) Origin() Origin {
	var o Origin
	if a, ok := n.Account(); ok {
		o.Account = a.Name
	}
	if z, ok := n.Zone(); ok {
		o.Zone = z.ID
	}
	return o
}

// Page returns the zero-based page holding the selected record and the
// page count.
func (n *Navigation) Page() (page, count int) {
	total := len(n.visible)
	if total == 0 {
		return 0, 0
	}
	count = (total + n.pageSize - 1) / n.pageSize
	if n.sel.Record != none {
		page = n.sel.Record / n.pageSize
	}
	return page, count
}

// PageRecords returns the visible records on the current page and the
// visible index of the first one.
func (n *Navigation) PageRecords() ([]api.Record, int) {
	page, count := n.Page()
	if count == 0 {
		return nil, 0
	}
	start := page * n.pageSize
	end := start + n.pageSize
	if end > len(n.visible) {
		end = len(n.visible)
	}
	return n.Visible()[start:end], start
}

// SetAccounts replaces the account list, keeping the selected account by
// name when it is still present.
func (n *Navigation) SetAccounts(accounts []api.Account) fetch {
	prev, hadPrev := n.Account()
	n.accounts = accounts

	idx := none
	if hadPrev {
		for i, a := range accounts {
			if a.Name == prev.Name {
				idx = i
				break
			}
		}
	}
	if idx == none {
		idx = clamp(0, len(accounts))
	}
	if hadPrev && idx != none && accounts[idx].Name == prev.Name {
		n.sel.Account = idx
		return fetchNothing
	}
	return n.SelectAccount(idx)
}

// SelectAccount selects account i (or -1), resetting zones and records.
func (n *Navigation) SelectAccount(i int) fetch {
	n.sel.Account = i
	n.zones = nil
	n.sel.Zone = none
	n.clearRecords()
	if i == none {
		return fetchNothing
	}
	return fetchZones
}

// AddAccount appends a and selects it.
func (n *Navigation) AddAccount(a api.Account) fetch {
	accounts := make([]api.Account, 0, len(n.accounts)+1)
	accounts = append(accounts, n.accounts...)
	n.accounts = append(accounts, a)
	return n.SelectAccount(len(n.accounts) - 1)
}

// SetZones replaces the zone list of the selected account, keeping the
// selected zone by ID when it is still present.
func (n *Navigation) SetZones(zones []api.Zone) fetch {
	prev, hadPrev := n.Zone()
	n.zones = zones

	if hadPrev {
		for i, z := range zones {
			if z.ID == prev.ID {
				n.sel.Zone = i
				return fetchNothing
			}
		}
	}
	return n.SelectZone(clamp(0, len(zones)))
}

// SelectZone selects zone i (or -1), resetting records.
func (n *Navigation) SelectZone(i int) fetch {
	n.sel.Zone = i
	n.clearRecords()
	if i == none {
		return fetchNothing
	}
	return fetchRecords
}

func (n *Navigation) clearRecords() {
	n.records = nil
	n.visible = nil
	n.sel.Record = none
}

// SetRecords replaces the record list of the selected zone, keeping the
// selected record by ID when it is still present.
func (n *Navigation) SetRecords(records []api.Record) {
	n.replaceRecords(records, n.selectedRecordID())
}

// SetFilter applies f and remaps the selection to the same record when it
// stays visible.
func (n *Navigation) SetFilter(f FilterState) {
	id := n.selectedRecordID()
	n.filter = f
	n.replaceRecords(n.records, id)
}

// UpsertRecord replaces the record with r's ID or appends r, then selects it.
// A filter that would hide r is cleared; the result reports whether that
// happened.
func (n *Navigation) UpsertRecord(r api.Record) (filterCleared bool) {
	if !n.filter.Matches(r) {
		n.filter = FilterState{}
		filterCleared = true
	}
	records := make([]api.Record, 0, len(n.records)+1)
	replaced := false
	for _, existing := range n.records {
		if existing.ID == r.ID {
			existing = r
			replaced = true
		}
		records = append(records, existing)
	}
	if !replaced {
		records = append(records, r)
	}
	n.replaceRecords(records, r.ID)
	return filterCleared
}

// RemoveRecord drops the record with id. The selection stays on the same
// record if another one was selected, otherwise on the same index clamped.
func (n *Navigation) RemoveRecord(id string) {
	selected := n.selectedRecordID()
	records := make([]api.Record, 0, len(n.records))
	for _, r := range n.records {
		if r.ID != id {
			records = append(records, r)
		}
	}
	if selected == id {
		selected = ""
	}
	n.replaceRecords(records, selected)
}

func (n *Navigation) selectedRecordID() string {
	if r, ok := n.Record(); ok {
		return r.ID
	}
	return ""
}

// replaceRecords installs records, recomputes the visible list and selects
// the visible record with keepID, falling back to the old index clamped.
func (n *Navigation) replaceRecords(records []api.Record, keepID string) {
	oldIndex := n.sel.Record
	n.records = records
	n.visible = n.visible[:0:0]
	for i, r := range records {
		if n.filter.Matches(r) {
			n.visible = append(n.visible, i)
		}
	}

	if keepID != "" {
		for vi, idx := range n.visible {
			if records[idx].ID == keepID {
				n.sel.Record = vi
				return
			}
		}
	}
	if oldIndex == none {
		oldIndex = 0
	}
	n.sel.Record = clamp(oldIndex, len(n.visible))
}

// Move shifts the focused pane's selection by delta, clamped to the list.
func (n *Navigation) Move(delta int) fetch {
	switch n.focus {
	case FocusAccounts:
		if i := clamp(n.sel.Account+delta, len(n.accounts)); i != n.sel.Account {
			return n.SelectAccount(i)
		}
	case FocusZones:
		if i := clamp(n.sel.Zone+delta, len(n.zones)); i != n.sel.Zone {
			return n.SelectZone(i)
		}
	case FocusRecords:
		n.sel.Record = clamp(n.sel.Record+delta, len(n.visible))
	}
	return fetchNothing
}

// PageMove shifts the focused pane's selection by pages page sizes.
func (n *Navigation) PageMove(pages int) fetch {
	return n.Move(pages * n.pageSize)
}
