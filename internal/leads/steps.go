package leads

import (
	"fmt"
	"strings"
)

// FormStep is one stage of the multi-step wizard.
type FormStep string

const (
	StepInitial         FormStep = "initial"
	StepPropertyDetails FormStep = "property-details"
	StepTimeline        FormStep = "timeline"
	StepContact         FormStep = "contact"
	StepThankYou        FormStep = "thank-you"
)

// Steps lists the wizard in order.
var Steps = []FormStep{
	StepInitial,
	StepPropertyDetails,
	StepTimeline,
	StepContact,
	StepThankYou,
}

// Valid reports whether s is one of the wizard steps.
func (s FormStep) Valid() bool {
	return s.index() >= 0
}

// Next returns the following step. The last step returns itself.
func (s FormStep) Next() FormStep {
	i := s.index()
	if i < 0 || i == len(Steps)-1 {
		return s
	}
	return Steps[i+1]
}

// After reports whether s comes later in the wizard than other.
func (s FormStep) After(other FormStep) bool {
	return s.index() > other.index()
}

func (s FormStep) index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// ParseStep converts a raw step name.
func ParseStep(raw string) (FormStep, error) {
	step := FormStep(strings.ToLower(strings.TrimSpace(raw)))
	if !step.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStep, raw)
	}
	return step, nil
}
