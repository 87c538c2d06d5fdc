package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field campo de texto de un formulario.
type field struct {
	label string
	input textinput.Model
}

// form formulario de campos de texto navegable con ↑/↓ y enter.
type form struct {
	fields  []field
	focus   int
	focused bool
}

func newForm(labels ...string) *form {
	f := &form{}
	for _, l := range labels {
		ti := textinput.New()
		ti.CharLimit = 120
		ti.Width = 36
		ti.Prompt = "› "
		f.fields = append(f.fields, field{label: l, input: ti})
	}
	return f
}

// password oculta el campo i.
func (f *form) password(i int) *form {
	f.fields[i].input.EchoMode = textinput.EchoPassword
	f.fields[i].input.EchoCharacter = '•'
	return f
}

func (f *form) placeholder(i int, s string) *form {
	f.fields[i].input.Placeholder = s
	return f
}

// Focus activa el formulario en el primer campo.
func (f *form) Focus() tea.Cmd {
	f.focused = true
	f.focus = 0
	return f.focusCurrent()
}

// Blur desactiva el formulario sin perder los valores.
func (f *form) Blur() {
	f.focused = false
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
}

func (f *form) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.fields {
		if i == f.focus {
			cmd = f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
	return cmd
}

// Last indica si el foco está en el último campo.
func (f *form) Last() bool { return f.focus == len(f.fields)-1 }

// Next mueve el foco al siguiente campo.
func (f *form) Next() tea.Cmd {
	if f.focus < len(f.fields)-1 {
		f.focus++
	}
	return f.focusCurrent()
}

// Prev mueve el foco al campo anterior.
func (f *form) Prev() tea.Cmd {
	if f.focus > 0 {
		f.focus--
	}
	return f.focusCurrent()
}

// Update envía msg al campo con foco.
func (f *form) Update(msg tea.Msg) tea.Cmd {
	if !f.focused {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) Value(i int) string { return strings.TrimSpace(f.fields[i].input.Value()) }

// Raw valor sin recortar (contraseñas).
func (f *form) Raw(i int) string { return f.fields[i].input.Value() }

func (f *form) Set(i int, v string) { f.fields[i].input.SetValue(v) }

// Reset vacía todos los campos.
func (f *form) Reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
	}
}

func (f *form) View(s Styles) string {
	var b strings.Builder
	for i, fl := range f.fields {
		b.WriteString(s.Label.Render(fl.label))
		b.WriteString(fl.input.View())
		if i < len(f.fields)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// yes interpreta respuestas s/n de un campo de texto.
func yes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "si", "sí", "y", "yes", "true", "1", "x":
		return true
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "sí"
	}
	return "no"
}
