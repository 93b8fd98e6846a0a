package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/Azahorscak/nyxflare/internal/api"
)

const (
	statusHeight     = 4
	helpHeight       = 1
	defaultWidth     = 100
	defaultHeight    = 30
	accountsWidthPct = 28
	zonesHeightPct   = 30
)

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("205"))

	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	labelStyle    = lipgloss.NewStyle().Bold(true).Width(12).Padding(0, 1, 0, 2)
	focusedLabel  = labelStyle.Foreground(lipgloss.Color("205"))
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("57")).
			Padding(1, 2)
)

// layout is the pane geometry for a terminal size. Heights and widths
// include borders.
type layout struct {
	width         int
	accountsWidth int
	rightWidth    int
	bodyHeight    int
	zonesHeight   int
	recordsHeight int
}

func newLayout(width, height int) layout {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	body := height - statusHeight - helpHeight
	if body < 8 {
		body = 8
	}
	zonesH := body * zonesHeightPct / 100
	if zonesH < 4 {
		zonesH = 4
	}
	accountsW := width * accountsWidthPct / 100
	if accountsW < 16 {
		accountsW = 16
	}
	right := width - accountsW
	if right < 30 {
		right = 30
	}
	return layout{
		width:         width,
		accountsWidth: accountsW,
		rightWidth:    right,
		bodyHeight:    body,
		zonesHeight:   zonesH,
		recordsHeight: body - zonesH,
	}
}

// pageSize is the number of record rows that fit below the column header.
func (l layout) pageSize() int {
	if n := l.recordsHeight - 3; n > 1 {
		return n
	}
	return 1
}

// View renders the current snapshot.
func (m Model) View() string {
	s := m.Snapshot()
	l := newLayout(m.width, m.height)

	var body string
	switch {
	case s.Form != nil:
		body = placeModal(l, renderForm(*s.Form))
	case s.Confirm != nil:
		body = placeModal(l, renderConfirm(*s.Confirm))
	default:
		right := lipgloss.JoinVertical(lipgloss.Left,
			m.zones.Mark(paneZoneID(FocusZones), renderZones(s, l)),
			m.zones.Mark(paneZoneID(FocusRecords), renderRecords(s, l)),
		)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.zones.Mark(paneZoneID(FocusAccounts), renderAccounts(s, l)),
			right,
		)
	}

	var keys help.KeyMap = m.keys
	switch s.Mode {
	case ModeConfirmDelete:
		keys = confirmKeys{m.keys}
	case ModeSearch:
		keys = searchKeys{m.keys}
	}
	helpLine := m.help.ShortHelpView(keys.ShortHelp())
	if s.Mode == ModeRecordForm || s.Mode == ModeAddAccount {
		helpLine = faintStyle.Render("tab/↑/↓: move • enter: next/save • space: toggle proxied • esc: cancel")
	}

	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.renderStatus(s, l),
		helpLine,
	))
}

func placeModal(l layout, content string) string {
	return lipgloss.Place(l.width, l.bodyHeight, lipgloss.Center, lipgloss.Center, modalStyle.Render(content))
}

func pane(focused bool, width, height int, lines []string) string {
	style := paneStyle
	if focused {
		style = focusedPaneStyle
	}
	return style.Width(width - 2).Height(height - 2).MaxHeight(height).Render(strings.Join(lines, "\n"))
}

// listWindow returns the [start,end) range of rows to show so that sel is
// visible.
func listWindow(sel, n, rows int) (int, int) {
	if rows < 1 {
		rows = 1
	}
	start := 0
	if sel >= rows {
		start = sel - rows + 1
	}
	end := start + rows
	if end > n {
		end = n
	}
	return start, end
}

func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = xansi.Truncate(s, width, "…")
	if pad := width - xansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func row(text string, width int, selected bool) string {
	text = fit(text, width)
	if selected {
		return selectedStyle.Render(text)
	}
	return text
}

func renderAccounts(s Snapshot, l layout) string {
	inner := l.accountsWidth - 2
	lines := []string{titleStyle.Render(fit("Accounts", inner))}
	if len(s.Accounts) == 0 {
		lines = append(lines, faintStyle.Render(fit("none (press a)", inner)))
	}
	start, end := listWindow(s.Selection.Account, len(s.Accounts), l.bodyHeight-3)
	for i := start; i < end; i++ {
		lines = append(lines, row(sanitize(s.Accounts[i].Name), inner, i == s.Selection.Account))
	}
	return pane(s.Focus == FocusAccounts, l.accountsWidth, l.bodyHeight, lines)
}

func renderZones(s Snapshot, l layout) string {
	inner := l.rightWidth - 2
	lines := []string{titleStyle.Render(fit("Zones", inner))}
	if len(s.Zones) == 0 {
		lines = append(lines, faintStyle.Render(fit("no zones", inner)))
	}
	start, end := listWindow(s.Selection.Zone, len(s.Zones), l.zonesHeight-3)
	for i := start; i < end; i++ {
		lines = append(lines, row(sanitize(s.Zones[i].Name), inner, i == s.Selection.Zone))
	}
	return pane(s.Focus == FocusZones, l.rightWidth, l.zonesHeight, lines)
}

// recordColumns splits the inner width into type, name, content, ttl and
// proxied columns.
func recordColumns(inner int) [5]int {
	const typeW, ttlW, proxyW, gaps = 6, 9, 7, 4
	rest := inner - typeW - ttlW - proxyW - gaps
	if rest < 10 {
		rest = 10
	}
	nameW := rest * 45 / 100
	return [5]int{typeW, nameW, rest - nameW, ttlW, proxyW}
}

func recordRow(r api.Record, cols [5]int) string {
	proxied := "no"
	if r.Proxied {
		proxied = "yes"
	}
	cells := []string{
		fit(sanitize(r.Type), cols[0]),
		fit(sanitize(r.Name), cols[1]),
		fit(sanitize(r.Content), cols[2]),
		fit(api.FormatTTL(r.TTL), cols[3]),
		fit(proxied, cols[4]),
	}
	return strings.Join(cells, " ")
}

func renderRecords(s Snapshot, l layout) string {
	inner := l.rightWidth - 2
	cols := recordColumns(inner)
	header := strings.Join([]string{
		fit("TYPE", cols[0]), fit("NAME", cols[1]), fit("CONTENT", cols[2]),
		fit("TTL", cols[3]), fit("PROXIED", cols[4]),
	}, " ")
	lines := []string{headerStyle.Render(fit(header, inner))}

	switch {
	case s.Selection.Zone == none:
		lines = append(lines, faintStyle.Render(fit("select a zone", inner)))
	case s.VisibleCount == 0 && s.Filter.Active:
		lines = append(lines, faintStyle.Render(fit("no records match the filter", inner)))
	case s.VisibleCount == 0:
		lines = append(lines, faintStyle.Render(fit("no records", inner)))
	}
	for i, r := range s.Records {
		lines = append(lines, row(recordRow(r, cols), inner, s.RecordOffset+i == s.Selection.Record))
	}
	return pane(s.Focus == FocusRecords, l.rightWidth, l.recordsHeight, lines)
}

func (m Model) renderStatus(s Snapshot, l layout) string {
	first := s.Status.Text
	if s.Status.Severity == SeverityError {
		first = errorStyle.Render("✗ " + sanitize(first))
	}
	if len(s.Pending) > 0 {
		names := make([]string, len(s.Pending))
		for i, p := range s.Pending {
			names[i] = p.Slot.String()
		}
		first = m.spinner.View() + " loading " + strings.Join(names, ", ") + "  " + first
	}

	var parts []string
	if len(s.Zones) > 0 && s.Selection.Zone != none {
		parts = append(parts, sanitize(s.Zones[s.Selection.Zone].Name))
	}
	if s.PageCount > 0 {
		parts = append(parts, fmt.Sprintf("page %d/%d", s.Page+1, s.PageCount))
	}
	if s.Filter.Active {
		parts = append(parts, fmt.Sprintf("%d of %d records", s.VisibleCount, s.TotalCount), fmt.Sprintf("filter: %q", s.Filter.Text))
	} else if s.Selection.Zone != none {
		parts = append(parts, fmt.Sprintf("%d records", s.TotalCount))
	}
	second := faintStyle.Render(strings.Join(parts, " · "))
	if s.Mode == ModeSearch {
		second = s.Search
	}

	return paneStyle.Width(l.width - 2).Render(first + "\n" + second)
}

func renderForm(f FormView) string {
	lines := []string{titleStyle.Render(f.Title), ""}
	for _, field := range f.Fields {
		label := labelStyle
		if field.Focused {
			label = focusedLabel
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top, label.Render(field.Label), field.Value)
		if field.Error != "" {
			line += "  " + errorStyle.Render(field.Error)
		}
		lines = append(lines, line)
	}
	switch {
	case f.Saving:
		lines = append(lines, "", faintStyle.Render("Saving…"))
	case f.Error != "":
		lines = append(lines, "", errorStyle.Render(sanitize(f.Error)))
	}
	return strings.Join(lines, "\n")
}

func renderConfirm(r api.Record) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Delete record?"),
		"",
		fmt.Sprintf("%s %s → %s", sanitize(r.Type), sanitize(r.Name), sanitize(r.Content)),
		"",
		faintStyle.Render("y/enter: delete • n/esc: cancel"),
	)
}
