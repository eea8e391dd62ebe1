package fields

// Checkbox is a boolean toggle, used for the consent box.
type Checkbox struct {
	Name string

	checked  bool
	onChange func(bool)
}

func NewCheckbox(name string, checked bool, onChange func(bool)) *Checkbox {
	return &Checkbox{Name: name, checked: checked, onChange: onChange}
}

// Set emits the new checked state.
func (c *Checkbox) Set(checked bool) {
	c.checked = checked
	if c.onChange != nil {
		c.onChange(checked)
	}
}

func (c *Checkbox) Checked() bool {
	return c.checked
}
