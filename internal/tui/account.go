package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Azahorscak/nyxflare/internal/api"
)

const accountFieldCount = 4

var accountFieldNames = [accountFieldCount]string{"Name", "APIToken", "Email", "AccountID"}

var accountFieldLabels = [accountFieldCount]string{"Name", "API token", "Email", "Account ID"}

// submitAccountMsg is emitted by a valid add-account submit.
type submitAccountMsg struct {
	account api.Account
}

// cancelAccountMsg is emitted when the add-account form is dismissed.
type cancelAccountMsg struct{}

// AccountForm collects the credentials of a new account.
type AccountForm struct {
	inputs  [accountFieldCount]textinput.Model
	focused int
	taken   map[string]bool
	touched [accountFieldCount]bool
	errors  map[int]string
}

// NewAccountForm returns an empty form. existing holds the names already
// in use.
func NewAccountForm(existing []api.Account) AccountForm {
	placeholders := [accountFieldCount]string{"personal", "Cloudflare API token", "optional", "optional"}
	var f AccountForm
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 256
		in.Width = 50
		f.inputs[i] = in
	}
	f.inputs[1].EchoMode = textinput.EchoPassword
	f.inputs[1].EchoCharacter = '•'
	f.inputs[0].Focus()

	f.taken = make(map[string]bool, len(existing))
	for _, a := range existing {
		f.taken[a.Name] = true
	}
	f.errors = map[int]string{}
	return f
}

// Account returns the account described by the fields.
func (f AccountForm) Account() api.Account {
	return api.Account{
		Name:      strings.TrimSpace(f.inputs[0].Value()),
		APIToken:  strings.TrimSpace(f.inputs[1].Value()),
		Email:     strings.TrimSpace(f.inputs[2].Value()),
		AccountID: strings.TrimSpace(f.inputs[3].Value()),
		AuthMode:  api.AuthToken,
	}
}

// Errors returns the visible field errors in field order.
func (f AccountForm) Errors() []ValidationError {
	var out []ValidationError
	for i := 0; i < accountFieldCount; i++ {
		if msg, ok := f.errors[i]; ok {
			out = append(out, ValidationError{Field: accountFieldNames[i], Message: msg})
		}
	}
	return out
}

func (f *AccountForm) revalidate() {
	a := f.Account()
	all := fieldErrors(accountFields{Name: a.Name, APIToken: a.APIToken, Email: a.Email, AccountID: a.AccountID})
	if _, ok := all["Name"]; !ok && f.taken[a.Name] {
		all["Name"] = "an account with this name already exists"
	}
	errs := make(map[int]string, len(all))
	for i, name := range accountFieldNames {
		if msg, ok := all[name]; ok && f.touched[i] {
			errs[i] = msg
		}
	}
	f.errors = errs
}

// Update handles input for the form.
func (f AccountForm) Update(msg tea.Msg) (AccountForm, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return f, func() tea.Msg { return cancelAccountMsg{} }
		case "tab", "down":
			f.focus((f.focused + 1) % accountFieldCount)
			return f, nil
		case "shift+tab", "up":
			f.focus((f.focused + accountFieldCount - 1) % accountFieldCount)
			return f, nil
		case "enter":
			if f.focused < accountFieldCount-1 {
				f.focus(f.focused + 1)
				return f, nil
			}
			for i := range f.touched {
				f.touched[i] = true
			}
			f.revalidate()
			if len(f.errors) > 0 {
				return f, nil
			}
			account := f.Account()
			return f, func() tea.Msg { return submitAccountMsg{account: account} }
		}
	}

	before := f.inputs[f.focused].Value()
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	if f.inputs[f.focused].Value() != before {
		f.touched[f.focused] = true
		f.revalidate()
	}
	return f, cmd
}

func (f *AccountForm) focus(i int) {
	f.focused = i
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.inputs[i].Focus()
}

func (f AccountForm) view() FormView {
	v := FormView{Title: "Add account"}
	for i := 0; i < accountFieldCount; i++ {
		v.Fields = append(v.Fields, FieldView{
			Label:   accountFieldLabels[i],
			Value:   f.inputs[i].View(),
			Focused: f.focused == i,
			Error:   f.errors[i],
		})
	}
	return v
}
