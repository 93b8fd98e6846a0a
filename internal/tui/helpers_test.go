package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Azahorscak/nyxflare/internal/api"
)

// fakeProvider is an in-memory provider with call counters and injectable
// errors.
type fakeProvider struct {
	mu       sync.Mutex
	accounts []api.Account
	zones    map[string][]api.Zone
	records  map[string][]api.Record
	calls    map[string]int
	fail     map[string]error
	nextID   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts: []api.Account{{Name: "personal", APIToken: "t1"}, {Name: "work", APIToken: "t2"}},
		zones: map[string][]api.Zone{
			"personal": {{ID: "z1", Name: "example.com"}, {ID: "z2", Name: "example.org"}},
			"work":     {{ID: "z3", Name: "corp.io"}},
		},
		records: map[string][]api.Record{
			"z1": {
				{ID: "r1", Type: "A", Name: "api.example.com", Content: "192.0.2.1", TTL: 300},
				{ID: "r2", Type: "A", Name: "www.example.com", Content: "192.0.2.2", TTL: 1, Proxied: true},
				{ID: "r3", Type: "MX", Name: "example.com", Content: "mail.example.com", TTL: 3600},
			},
			"z2": {{ID: "r4", Type: "TXT", Name: "example.org", Content: "v=spf1 -all", TTL: 1}},
			"z3": {{ID: "r5", Type: "CNAME", Name: "app.corp.io", Content: "lb.corp.io", TTL: 1}},
		},
		calls: map[string]int{},
		fail:  map[string]error{},
	}
}

func (p *fakeProvider) record(call string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[call]++
	return p.fail[call]
}

func (p *fakeProvider) count(call string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[call]
}

func (p *fakeProvider) ListAccounts(context.Context) ([]api.Account, error) {
	if err := p.record("accounts"); err != nil {
		return nil, err
	}
	return append([]api.Account(nil), p.accounts...), nil
}

func (p *fakeProvider) ListZones(_ context.Context, a api.Account) ([]api.Zone, error) {
	if err := p.record("zones"); err != nil {
		return nil, err
	}
	return append([]api.Zone(nil), p.zones[a.Name]...), nil
}

func (p *fakeProvider) ListRecords(_ context.Context, z api.Zone, _ api.Account) ([]api.Record, error) {
	if err := p.record("records"); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.Record(nil), p.records[z.ID]...), nil
}

func (p *fakeProvider) CreateRecord(_ context.Context, z api.Zone, _ api.Account, d api.Draft) (api.Record, error) {
	if err := p.record("create"); err != nil {
		return api.Record{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	r := api.Record{ID: fmt.Sprintf("new-%d", p.nextID), Type: d.Type, Name: d.Name, Content: d.Content, TTL: d.TTL, Proxied: d.Proxied}
	p.records[z.ID] = append(p.records[z.ID], r)
	return r, nil
}

func (p *fakeProvider) UpdateRecord(_ context.Context, z api.Zone, _ api.Account, id string, d api.Draft) (api.Record, error) {
	if err := p.record("update"); err != nil {
		return api.Record{}, err
	}
	return api.Record{ID: id, Type: d.Type, Name: d.Name, Content: d.Content, TTL: d.TTL, Proxied: d.Proxied}, nil
}

func (p *fakeProvider) DeleteRecord(context.Context, api.Zone, api.Account, string) error {
	return p.record("delete")
}

var errForbidden = &api.RemoteError{Status: 403, Message: "Invalid access token"}

// keyPress builds a KeyMsg for a key name as tea reports it.
func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText feeds s one rune at a time.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// send delivers msg and settles every command it produces.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return settle(t, next.(Model), cmd)
}

// settle runs cmd and feeds back the messages the controller reacts to,
// until no more work is produced. Ticks and blinks are dropped.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatal("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := run(c).(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case requestDoneMsg, submitRecordMsg, cancelFormMsg, submitAccountMsg, cancelAccountMsg:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

// run executes c, giving up on commands that wait on a timer such as
// cursor blinks.
func run(c tea.Cmd) tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- c() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// collect runs cmd and returns the request completions it produces without
// applying them.
func collect(t *testing.T, cmd tea.Cmd) []requestDoneMsg {
	t.Helper()
	var out []requestDoneMsg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := run(c).(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case requestDoneMsg:
			out = append(out, msg)
		}
	}
	return out
}

// started returns a model with accounts, zones and records of the first
// zone loaded.
func started(t *testing.T, p *fakeProvider) Model {
	t.Helper()
	m := New(p, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return settle(t, next.(Model), m.Init())
}
