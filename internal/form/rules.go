package form

import (
	"strings"

	"github.com/mushinbuys/leadform/internal/leads"
	"github.com/mushinbuys/leadform/internal/validation"
)

// Messages shown next to fields.
const (
	msgPhoneInvalid      = "Please enter a valid phone number"
	msgPhoneRequired     = "Phone number is required"
	msgEmailInvalid      = "Please enter a valid email address"
	msgEmailRequired     = "Email is required"
	msgAddressRequired   = "Property address is required"
	msgConsentRequired   = "You must consent to be contacted"
	msgConditionRequired = "Please select property condition"
	msgTimeframeRequired = "Please select your preferred timeframe"
	msgFirstNameRequired = "First name is required"
	msgLastNameRequired  = "Last name is required"

	msgCorrectErrors   = "Please correct the errors before submitting"
	msgSubmitting      = "Your submission is already being processed"
	msgGenericFailure  = "Something went wrong. Please try again."
	msgSubmitRejected  = "Failed to submit form"
	msgPartialRequired = "Address, phone, and consent are required"
)

// ValidateField runs the change-time rule for field against s and returns the
// message, or "" when the field passes or has no change-time rule.
func ValidateField(field string, s leads.FormState) string {
	switch field {
	case leads.FieldPhone:
		if s.Phone != "" && !validation.Phone(s.Phone) {
			return msgPhoneInvalid
		}
	case leads.FieldEmail:
		if s.Email != "" && !validation.Email(s.Email) {
			return msgEmailInvalid
		}
	case leads.FieldAddress:
		if strings.TrimSpace(s.Address) == "" {
			return msgAddressRequired
		}
	case leads.FieldConsent:
		if !s.Consent {
			return msgConsentRequired
		}
	}
	return ""
}

// ValidateBlur is ValidateField for a field losing focus, where an empty
// phone is reported as missing.
func ValidateBlur(field string, s leads.FormState) string {
	if field == leads.FieldPhone && s.Phone == "" {
		return msgPhoneRequired
	}
	return ValidateField(field, s)
}

func hasChangeRule(field string) bool {
	switch field {
	case leads.FieldPhone, leads.FieldEmail, leads.FieldAddress, leads.FieldConsent:
		return true
	}
	return false
}

// StepComplete is the readiness predicate for moving past step.
func StepComplete(s leads.FormState, step leads.FormStep) bool {
	switch step {
	case leads.StepInitial:
		return s.Address != "" && s.Phone != ""
	case leads.StepPropertyDetails:
		return s.PropertyCondition != ""
	case leads.StepTimeline:
		return s.Timeframe != ""
	case leads.StepContact:
		return s.FirstName != "" && s.LastName != "" && s.Email != ""
	case leads.StepThankYou:
		return true
	default:
		return false
	}
}

// requiredErrors checks the always-required fields plus whatever step needs.
func requiredErrors(s leads.FormState, step leads.FormStep) leads.FormErrors {
	errs := leads.FormErrors{}
	for _, field := range []string{leads.FieldAddress, leads.FieldPhone, leads.FieldConsent} {
		if msg := ValidateField(field, s); msg != "" {
			errs[field] = msg
		}
	}
	if s.Phone == "" {
		errs[leads.FieldPhone] = msgPhoneRequired
	}

	switch step {
	case leads.StepPropertyDetails:
		if s.PropertyCondition == "" {
			errs[leads.FieldPropertyCondition] = msgConditionRequired
		}
	case leads.StepTimeline:
		if s.Timeframe == "" {
			errs[leads.FieldTimeframe] = msgTimeframeRequired
		}
	case leads.StepContact:
		if s.FirstName == "" {
			errs[leads.FieldFirstName] = msgFirstNameRequired
		}
		if s.LastName == "" {
			errs[leads.FieldLastName] = msgLastNameRequired
		}
		if s.Email == "" {
			errs[leads.FieldEmail] = msgEmailRequired
		} else if msg := ValidateField(leads.FieldEmail, s); msg != "" {
			errs[leads.FieldEmail] = msg
		}
	}
	return errs
}
