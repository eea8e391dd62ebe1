package fields

import (
	"github.com/mushinbuys/leadform/internal/validation"
)

// TextInput is a plain text box bound to one lead field.
type TextInput struct {
	Name      string
	MaxLength int

	value    string
	onChange func(string)
	onBlur   func()
}

// NewTextInput binds a text box to a field value.
func NewTextInput(name, value string, maxLength int, onChange func(string), onBlur func()) *TextInput {
	return &TextInput{
		Name:      name,
		MaxLength: maxLength,
		value:     value,
		onChange:  onChange,
		onBlur:    onBlur,
	}
}

// Change emits the typed value, truncated to MaxLength.
func (t *TextInput) Change(input string) {
	if t.MaxLength > 0 {
		if r := []rune(input); len(r) > t.MaxLength {
			input = string(r[:t.MaxLength])
		}
	}
	t.value = input
	if t.onChange != nil {
		t.onChange(input)
	}
}

// Blur sanitizes the value, re-emitting it if that changed anything.
func (t *TextInput) Blur() {
	if clean := validation.Sanitize(t.value); clean != t.value {
		t.value = clean
		if t.onChange != nil {
			t.onChange(clean)
		}
	}
	if t.onBlur != nil {
		t.onBlur()
	}
}

// Value is the current text.
func (t *TextInput) Value() string {
	return t.value
}
