package form

import (
	"github.com/mushinbuys/leadform/internal/leads"
	"github.com/mushinbuys/leadform/internal/phone"
)

// View is everything a client needs to render the form.
type View struct {
	State          leads.FormState         `json:"formState"`
	Errors         leads.FormErrors        `json:"errors"`
	CurrentStep    leads.FormStep          `json:"currentStep"`
	CompletedSteps map[leads.FormStep]bool `json:"completedSteps"`
	PhoneDisplay   string                  `json:"phoneDisplay"`
}

// State returns a copy of the record.
func (c *Controller) State() leads.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyState(c.state)
}

// Errors returns a copy of the field errors.
func (c *Controller) Errors() leads.FormErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors.Clone()
}

// View snapshots the form under a single lock.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	completed := make(map[leads.FormStep]bool, len(leads.Steps))
	for _, step := range leads.Steps {
		completed[step] = StepComplete(c.state, step)
	}
	return View{
		State:          copyState(c.state),
		Errors:         c.errors.Clone(),
		CurrentStep:    c.step,
		CompletedSteps: completed,
		PhoneDisplay:   phone.Format(c.state.Phone),
	}
}

func copyState(s leads.FormState) leads.FormState {
	if s.IsPropertyListed != nil {
		s.IsPropertyListed = leads.Ptr(*s.IsPropertyListed)
	}
	return s
}
