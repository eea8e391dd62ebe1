package leads

// SubmissionType tags how far a lead got when it was sent upstream.
type SubmissionType string

const (
	SubmissionPartial  SubmissionType = "partial"
	SubmissionComplete SubmissionType = "complete"
)

// LeadFormData is the canonical record of a prospective seller.
type LeadFormData struct {
	// Address fields (required)
	Address       string `json:"address" validate:"required"`
	StreetAddress string `json:"streetAddress,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	PlaceID       string `json:"placeId,omitempty"`

	// Contact information. Phone is always the normalized value.
	Phone     string `json:"phone" validate:"required,phone"`
	Consent   bool   `json:"consent" validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"omitempty,leademail"`

	// Property details
	IsPropertyListed  *bool  `json:"isPropertyListed,omitempty"`
	PropertyCondition string `json:"propertyCondition"`
	Timeframe         string `json:"timeframe"`
	Price             string `json:"price"`
	Comments          string `json:"comments,omitempty"`
	ReferralSource    string `json:"referralSource,omitempty"`

	// System tracking
	Timestamp      string         `json:"timestamp,omitempty"`
	LastUpdated    string         `json:"lastUpdated,omitempty"`
	LeadID         string         `json:"leadId"`
	SubmissionType SubmissionType `json:"submissionType,omitempty"`
}

// FormState is the lead plus the transient flags the UI renders from.
type FormState struct {
	LeadFormData
	IsSubmitting bool   `json:"isSubmitting"`
	Error        string `json:"error"`
}

// DefaultFormState is the state of a fresh form.
func DefaultFormState() FormState {
	return FormState{}
}

// HasContactBasics reports whether address and phone are both present.
func (s FormState) HasContactBasics() bool {
	return s.Address != "" && s.Phone != ""
}

// FormErrors maps a field name to its current message. A missing key means
// the field is not failing its last check.
type FormErrors map[string]string

// FormErrorKey holds the form-level message, separate from any field.
const FormErrorKey = "form"

// Clone returns an independent copy.
func (e FormErrors) Clone() FormErrors {
	out := make(FormErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Has reports whether field currently carries an error.
func (e FormErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// SubmissionResponse is the result reported back for partial and final submissions.
type SubmissionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	LeadID  string `json:"leadId,omitempty"`
}
