package leads

import "errors"

var (
	// ErrValidation is returned when required fields fail their checks.
	ErrValidation = errors.New("please correct the errors before submitting")

	// ErrSubmissionInFlight is returned when a final submission is already running.
	ErrSubmissionInFlight = errors.New("submission already in progress")

	// ErrStepIncomplete is returned when advancing past a step that is not complete.
	ErrStepIncomplete = errors.New("current step is not complete")

	// ErrConsentRequired is returned when a partial lead is attempted without contact details and consent.
	ErrConsentRequired = errors.New("address, phone, and consent are required")

	// ErrUnknownField is returned for field names the form does not define.
	ErrUnknownField = errors.New("unknown form field")

	// ErrInvalidStep is returned for step names outside the wizard.
	ErrInvalidStep = errors.New("invalid form step")

	// ErrIncompleteAddress is returned when an address selection lacks a component.
	ErrIncompleteAddress = errors.New("please select a complete address from the dropdown")

	// ErrInvalidOption is returned when a select value is not among its options.
	ErrInvalidOption = errors.New("invalid option")

	// ErrSessionNotFound is returned when a session handle does not resolve.
	ErrSessionNotFound = errors.New("form session not found")
)
