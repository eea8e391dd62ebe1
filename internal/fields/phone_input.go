package fields

import (
	"github.com/mushinbuys/leadform/internal/phone"
)

const phoneFocusHint = "Enter a 10-digit phone number"

// PhoneInput formats as the user types and emits digits-only values.
type PhoneInput struct {
	display  string
	focused  bool
	onChange func(string)
	onBlur   func()
}

// NewPhoneInput starts the input from the stored (normalized) value.
func NewPhoneInput(value string, onChange func(string), onBlur func()) *PhoneInput {
	return &PhoneInput{
		display:  phone.Format(value),
		onChange: onChange,
		onBlur:   onBlur,
	}
}

// SetValue syncs the display with a new canonical value.
func (p *PhoneInput) SetValue(value string) {
	p.display = phone.Format(value)
}

// Display is the punctuated text shown in the box.
func (p *PhoneInput) Display() string {
	return p.display
}

// Change handles the raw box contents after a keystroke. It reports false when
// the input was rejected for exceeding a domestic number without a + prefix.
func (p *PhoneInput) Change(input string) bool {
	normalized := phone.Normalize(input)

	// Shorter text is a deletion; always let it through.
	if len(input) < len(p.display) {
		p.commit(normalized)
		return true
	}

	if len(normalized) > phone.USDigits && !phone.IsInternational(normalized) {
		return false
	}
	p.commit(normalized)
	return true
}

// Paste normalizes and reformats in one step.
func (p *PhoneInput) Paste(text string) {
	p.commit(phone.Normalize(text))
}

func (p *PhoneInput) commit(normalized string) {
	p.display = phone.Format(normalized)
	if p.onChange != nil {
		p.onChange(normalized)
	}
}

// Focus marks the input focused.
func (p *PhoneInput) Focus() {
	p.focused = true
}

// Blur clears focus and forwards to the blur callback.
func (p *PhoneInput) Blur() {
	p.focused = false
	if p.onBlur != nil {
		p.onBlur()
	}
}

// Hint returns helper text shown while focused and error free.
func (p *PhoneInput) Hint(fieldErr string) string {
	if fieldErr == "" && p.focused {
		return phoneFocusHint
	}
	return ""
}
