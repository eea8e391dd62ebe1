package fields

import (
	"fmt"

	"github.com/mushinbuys/leadform/internal/leads"
)

const defaultSelectPlaceholder = "Select an option"

// SelectField restricts a field to a fixed option list.
type SelectField struct {
	Name        string
	Options     []leads.Option
	Placeholder string

	value    string
	onChange func(string)
}

// NewSelectField binds a select to a field value.
func NewSelectField(name, value string, options []leads.Option, onChange func(string)) *SelectField {
	return &SelectField{
		Name:        name,
		Options:     options,
		Placeholder: defaultSelectPlaceholder,
		value:       value,
		onChange:    onChange,
	}
}

// Choose emits value if it is empty (the placeholder) or one of the options.
func (s *SelectField) Choose(value string) error {
	if value != "" {
		if _, ok := leads.FindOption(s.Options, value); !ok {
			return fmt.Errorf("%w: %q for %s", leads.ErrInvalidOption, value, s.Name)
		}
	}
	s.value = value
	if s.onChange != nil {
		s.onChange(value)
	}
	return nil
}

// Value is the selected option value.
func (s *SelectField) Value() string {
	return s.value
}

// Description returns the helper text of the selected option.
func (s *SelectField) Description() string {
	if opt, ok := leads.FindOption(s.Options, s.value); ok {
		return opt.Description
	}
	return ""
}
