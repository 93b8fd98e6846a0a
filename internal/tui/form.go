package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Azahorscak/nyxflare/internal/api"
)

// formField identifies a record form field.
type formField int

const (
	fieldName formField = iota
	fieldType
	fieldContent
	fieldTTL
	fieldProxied
)

const formFieldCount = 5

var formFieldNames = [formFieldCount]string{"Name", "Type", "Content", "TTL", "Proxied"}

func (f formField) String() string { return formFieldNames[f] }

// FormKind distinguishes creating a record from editing one.
type FormKind int

const (
	FormCreating FormKind = iota + 1
	FormEditing
)

// submitRecordMsg is emitted by a valid form submit.
type submitRecordMsg struct {
	kind     FormKind
	targetID string
	draft    api.Draft
}

// cancelFormMsg is emitted when the form is dismissed.
type cancelFormMsg struct{}

// RecordForm is the edit buffer for creating or editing a record.
type RecordForm struct {
	kind     FormKind
	targetID string
	zoneName string

	inputs  [fieldProxied]textinput.Model
	proxied bool
	focused formField

	// touched marks fields whose errors are shown. Pre-filled fields start
	// touched; the rest become touched on first change or at submit.
	touched [formFieldCount]bool
	errors  map[formField]string

	saving  bool
	saveErr string
}

// NewCreateForm returns an empty form with the create defaults.
func NewCreateForm(zoneName string) RecordForm {
	f := newRecordForm(FormCreating, zoneName)
	f.inputs[fieldType].SetValue("A")
	f.inputs[fieldTTL].SetValue(api.FormatTTL(api.TTLAuto))
	f.touched[fieldType] = true
	f.touched[fieldTTL] = true
	f.touched[fieldProxied] = true
	f.revalidate()
	return f
}

// NewEditForm returns a form pre-filled from r.
func NewEditForm(zoneName string, r api.Record) RecordForm {
	f := newRecordForm(FormEditing, zoneName)
	f.targetID = r.ID
	d := r.Draft()
	f.inputs[fieldName].SetValue(d.Name)
	f.inputs[fieldType].SetValue(d.Type)
	f.inputs[fieldContent].SetValue(d.Content)
	f.inputs[fieldTTL].SetValue(api.FormatTTL(d.TTL))
	f.proxied = d.Proxied
	for i := range f.touched {
		f.touched[i] = true
	}
	f.revalidate()
	return f
}

func newRecordForm(kind FormKind, zoneName string) RecordForm {
	name := textinput.New()
	name.Placeholder = "www.example.com"
	name.CharLimit = 253
	name.Width = 60
	name.Focus()

	typ := textinput.New()
	typ.Placeholder = strings.Join(api.RecordTypes, " ")
	typ.CharLimit = 10
	typ.Width = 20

	content := textinput.New()
	content.Placeholder = "Record content"
	content.CharLimit = 2048
	content.Width = 60

	ttl := textinput.New()
	ttl.Placeholder = "seconds or automatic"
	ttl.CharLimit = 10
	ttl.Width = 20

	return RecordForm{
		kind:     kind,
		zoneName: zoneName,
		inputs:   [fieldProxied]textinput.Model{name, typ, content, ttl},
		focused:  fieldName,
	}
}

// Kind reports whether the form creates or edits.
func (f RecordForm) Kind() FormKind { return f.kind }

// TargetID is the ID of the record being edited.
func (f RecordForm) TargetID() string { return f.targetID }

// Saving reports whether a submit is in flight.
func (f RecordForm) Saving() bool { return f.saving }

// Focused returns the focused field.
func (f RecordForm) Focused() formField { return f.focused }

// Value returns the raw text of a text field.
func (f RecordForm) Value(field formField) string {
	if field == fieldProxied {
		return ""
	}
	return f.inputs[field].Value()
}

// Proxied returns the proxied toggle.
func (f RecordForm) Proxied() bool { return f.proxied }

// Errors returns the visible field errors in field order.
func (f RecordForm) Errors() []ValidationError {
	var out []ValidationError
	for i := formField(0); i < formFieldCount; i++ {
		if msg, ok := f.errors[i]; ok {
			out = append(out, ValidationError{Field: i.String(), Message: msg})
		}
	}
	return out
}

// Draft converts the fields to a draft. Only meaningful when valid.
func (f RecordForm) Draft() api.Draft {
	ttl, _ := parseTTL(f.inputs[fieldTTL].Value())
	return api.Draft{
		Type:    strings.ToUpper(strings.TrimSpace(f.inputs[fieldType].Value())),
		Name:    strings.TrimSpace(f.inputs[fieldName].Value()),
		Content: strings.TrimSpace(f.inputs[fieldContent].Value()),
		TTL:     ttl,
		Proxied: f.proxied,
	}
}

func (f RecordForm) fields() recordFields {
	return recordFields{
		Name:    strings.TrimSpace(f.inputs[fieldName].Value()),
		Type:    strings.TrimSpace(f.inputs[fieldType].Value()),
		Content: strings.TrimSpace(f.inputs[fieldContent].Value()),
		TTL:     strings.TrimSpace(f.inputs[fieldTTL].Value()),
		Proxied: f.proxied,
	}
}

// revalidate recomputes the errors of touched fields.
func (f *RecordForm) revalidate() {
	all := fieldErrors(f.fields())
	errs := make(map[formField]string, len(all))
	for i := formField(0); i < formFieldCount; i++ {
		if msg, ok := all[i.String()]; ok && f.touched[i] {
			errs[i] = msg
		}
	}
	f.errors = errs
}

// setSaving marks a submit as in flight.
func (f *RecordForm) setSaving() {
	f.saving = true
	f.saveErr = ""
}

// saveFailed reopens the form for correction after a failed submit.
func (f *RecordForm) saveFailed(err error) {
	f.saving = false
	f.saveErr = err.Error()
}

// Update handles input for the form. A valid submit emits submitRecordMsg;
// Esc emits cancelFormMsg.
func (f RecordForm) Update(msg tea.Msg) (RecordForm, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey && keyMsg.String() == "esc" {
		return f, func() tea.Msg { return cancelFormMsg{} }
	}
	if f.saving {
		if isKey {
			return f, nil
		}
		return f.updateInput(msg)
	}

	if isKey {
		switch keyMsg.String() {
		case "tab", "down":
			f.focus((f.focused + 1) % formFieldCount)
			return f, nil
		case "shift+tab", "up":
			f.focus((f.focused + formFieldCount - 1) % formFieldCount)
			return f, nil
		case "enter":
			if f.focused < fieldProxied {
				f.focus(f.focused + 1)
				return f, nil
			}
			return f.submit()
		case " ":
			if f.focused == fieldProxied {
				f.proxied = !f.proxied
				f.touched[fieldProxied] = true
				f.revalidate()
				return f, nil
			}
		}
	}
	return f.updateInput(msg)
}

// updateInput delegates msg to the focused text input and revalidates
// when its value changed.
func (f RecordForm) updateInput(msg tea.Msg) (RecordForm, tea.Cmd) {
	if f.focused == fieldProxied {
		return f, nil
	}
	before := f.inputs[f.focused].Value()
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	if f.inputs[f.focused].Value() != before {
		f.touched[f.focused] = true
		f.saveErr = ""
		f.revalidate()
	}
	return f, cmd
}

func (f RecordForm) submit() (RecordForm, tea.Cmd) {
	for i := range f.touched {
		f.touched[i] = true
	}
	f.revalidate()
	if len(f.errors) > 0 {
		return f, nil
	}
	msg := submitRecordMsg{kind: f.kind, targetID: f.targetID, draft: f.Draft()}
	return f, func() tea.Msg { return msg }
}

func (f *RecordForm) focus(field formField) {
	f.focused = field
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if field < fieldProxied {
		f.inputs[field].Focus()
	}
}

// view returns the render data of the form.
func (f RecordForm) view() FormView {
	title := "New record in " + f.zoneName
	if f.kind == FormEditing {
		title = "Edit record in " + f.zoneName
	}
	v := FormView{Title: title, Saving: f.saving, Error: f.saveErr}
	for i := formField(0); i < formFieldCount; i++ {
		fv := FieldView{Label: i.String(), Focused: f.focused == i, Error: f.errors[i]}
		if i == fieldProxied {
			fv.Value = "[ ] No"
			if f.proxied {
				fv.Value = "[x] Yes"
			}
		} else {
			fv.Value = f.inputs[i].View()
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}
