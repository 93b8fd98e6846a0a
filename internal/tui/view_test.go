package tui

import (
	"strings"
	"testing"

	"github.com/Azahorscak/nyxflare/internal/api"
)

func TestView_RendersPanes(t *testing.T) {
	m := started(t, newFakeProvider())
	out := m.View()

	for _, want := range []string{"Accounts", "personal", "work", "Zones", "example.com", "example.org", "TYPE", "api.example.com", "192.0.2.1", "automatic"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_ConfirmPrompt(t *testing.T) {
	m := started(t, newFakeProvider())
	m = send(t, m, keyPress("d"))
	out := m.View()
	if !strings.Contains(out, "Delete record?") || !strings.Contains(out, "api.example.com") {
		t.Errorf("confirm prompt missing:\n%s", out)
	}
}

func TestView_SearchHelp(t *testing.T) {
	m := started(t, newFakeProvider())
	m = send(t, m, keyPress("/"))
	out := m.View()
	if !strings.Contains(out, "apply") || !strings.Contains(out, "esc") {
		t.Errorf("search help missing:\n%s", out)
	}
	if strings.Contains(out, "add account") {
		t.Errorf("normal-mode help shown while searching:\n%s", out)
	}
}

func TestView_FormShowsFieldErrors(t *testing.T) {
	m := started(t, newFakeProvider())
	m = send(t, m, keyPress("n"))
	m = send(t, m, keyPress("tab"))
	m = send(t, m, keyPress("backspace"))
	out := m.View()
	if !strings.Contains(out, "New record in example.com") {
		t.Errorf("form title missing:\n%s", out)
	}
	if !strings.Contains(out, "required") {
		t.Errorf("type error missing:\n%s", out)
	}
}

func TestView_StatusShowsError(t *testing.T) {
	p := newFakeProvider()
	m := started(t, p)
	p.fail["records"] = errForbidden
	m = send(t, m, keyPress("shift+tab"))
	m = send(t, m, keyPress("r"))

	if out := m.View(); !strings.Contains(out, "Invalid access token (HTTP 403)") {
		t.Errorf("status missing error:\n%s", out)
	}
}

func TestView_SanitizesProviderData(t *testing.T) {
	p := newFakeProvider()
	p.records["z1"] = []api.Record{{ID: "x", Type: "TXT", Name: "evil\x1b[2Jname", Content: "line1\nline2", TTL: 1}}
	m := started(t, p)

	out := m.View()
	if strings.Contains(out, "\x1b[2J") {
		t.Error("escape sequence from provider data reached the view")
	}
	if !strings.Contains(out, "evilname") {
		t.Errorf("sanitized name missing:\n%s", out)
	}
}

func TestSnapshot_PageInfo(t *testing.T) {
	p := newFakeProvider()
	var many []api.Record
	for i := 0; i < 25; i++ {
		many = append(many, api.Record{ID: string(rune('a' + i)), Type: "A", Name: "h.example.com", Content: "192.0.2.1"})
	}
	p.records["z1"] = many
	m := started(t, p)
	m.nav.SetPageSize(10)
	m.nav.SetFocus(FocusRecords)
	m.nav.PageMove(2)

	s := m.Snapshot()
	if s.Page != 2 || s.PageCount != 3 {
		t.Errorf("page = %d/%d, want 2/3", s.Page, s.PageCount)
	}
	if s.RecordOffset != 20 || len(s.Records) != 5 {
		t.Errorf("page records = %d at %d", len(s.Records), s.RecordOffset)
	}
	if s.TotalCount != 25 || s.VisibleCount != 25 {
		t.Errorf("counts = %d/%d", s.VisibleCount, s.TotalCount)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain.example.com", "plain.example.com"},
		{"\x1b[31mred\x1b[0m", "red"},
		{"a\x1bMb", "ab"},
		{"multi\nline\ttext", "multi line text"},
		{"bell\x07", "bell"},
	}
	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLayout(t *testing.T) {
	l := newLayout(0, 0)
	if l.width != defaultWidth {
		t.Errorf("default width = %d", l.width)
	}
	if newLayout(80, 5).pageSize() < 1 {
		t.Error("page size below 1 on a tiny terminal")
	}
	if start, end := listWindow(12, 20, 5); start != 8 || end != 13 {
		t.Errorf("listWindow = [%d,%d), want [8,13)", start, end)
	}
}
