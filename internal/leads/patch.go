package leads

import "fmt"

// Field names as they appear in JSON and in the error map.
const (
	FieldAddress           = "address"
	FieldStreetAddress     = "streetAddress"
	FieldCity              = "city"
	FieldState             = "state"
	FieldPostalCode        = "postalCode"
	FieldPlaceID           = "placeId"
	FieldPhone             = "phone"
	FieldConsent           = "consent"
	FieldFirstName         = "firstName"
	FieldLastName          = "lastName"
	FieldEmail             = "email"
	FieldIsPropertyListed  = "isPropertyListed"
	FieldPropertyCondition = "propertyCondition"
	FieldTimeframe         = "timeframe"
	FieldPrice             = "price"
	FieldComments          = "comments"
	FieldReferralSource    = "referralSource"
)

// Patch is a partial update over the user-editable fields. A nil pointer
// means the field is not part of the update.
type Patch struct {
	Address           *string `json:"address,omitempty"`
	StreetAddress     *string `json:"streetAddress,omitempty"`
	City              *string `json:"city,omitempty"`
	State             *string `json:"state,omitempty"`
	PostalCode        *string `json:"postalCode,omitempty"`
	PlaceID           *string `json:"placeId,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Consent           *bool   `json:"consent,omitempty"`
	FirstName         *string `json:"firstName,omitempty"`
	LastName          *string `json:"lastName,omitempty"`
	Email             *string `json:"email,omitempty"`
	IsPropertyListed  *bool   `json:"isPropertyListed,omitempty"`
	PropertyCondition *string `json:"propertyCondition,omitempty"`
	Timeframe         *string `json:"timeframe,omitempty"`
	Price             *string `json:"price,omitempty"`
	Comments          *string `json:"comments,omitempty"`
	ReferralSource    *string `json:"referralSource,omitempty"`
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}

type patchField struct {
	name    string
	str     func(p *Patch) **string
	boolean func(p *Patch) **bool
	apply   func(s *FormState, p *Patch)
}

var patchFields = []patchField{
	{name: FieldAddress, str: func(p *Patch) **string { return &p.Address }, apply: func(s *FormState, p *Patch) { s.Address = *p.Address }},
	{name: FieldStreetAddress, str: func(p *Patch) **string { return &p.StreetAddress }, apply: func(s *FormState, p *Patch) { s.StreetAddress = *p.StreetAddress }},
	{name: FieldCity, str: func(p *Patch) **string { return &p.City }, apply: func(s *FormState, p *Patch) { s.City = *p.City }},
	{name: FieldState, str: func(p *Patch) **string { return &p.State }, apply: func(s *FormState, p *Patch) { s.State = *p.State }},
	{name: FieldPostalCode, str: func(p *Patch) **string { return &p.PostalCode }, apply: func(s *FormState, p *Patch) { s.PostalCode = *p.PostalCode }},
	{name: FieldPlaceID, str: func(p *Patch) **string { return &p.PlaceID }, apply: func(s *FormState, p *Patch) { s.PlaceID = *p.PlaceID }},
	{name: FieldPhone, str: func(p *Patch) **string { return &p.Phone }, apply: func(s *FormState, p *Patch) { s.Phone = *p.Phone }},
	{name: FieldConsent, boolean: func(p *Patch) **bool { return &p.Consent }, apply: func(s *FormState, p *Patch) { s.Consent = *p.Consent }},
	{name: FieldFirstName, str: func(p *Patch) **string { return &p.FirstName }, apply: func(s *FormState, p *Patch) { s.FirstName = *p.FirstName }},
	{name: FieldLastName, str: func(p *Patch) **string { return &p.LastName }, apply: func(s *FormState, p *Patch) { s.LastName = *p.LastName }},
	{name: FieldEmail, str: func(p *Patch) **string { return &p.Email }, apply: func(s *FormState, p *Patch) { s.Email = *p.Email }},
	{name: FieldIsPropertyListed, boolean: func(p *Patch) **bool { return &p.IsPropertyListed }, apply: func(s *FormState, p *Patch) { s.IsPropertyListed = Ptr(*p.IsPropertyListed) }},
	{name: FieldPropertyCondition, str: func(p *Patch) **string { return &p.PropertyCondition }, apply: func(s *FormState, p *Patch) { s.PropertyCondition = *p.PropertyCondition }},
	{name: FieldTimeframe, str: func(p *Patch) **string { return &p.Timeframe }, apply: func(s *FormState, p *Patch) { s.Timeframe = *p.Timeframe }},
	{name: FieldPrice, str: func(p *Patch) **string { return &p.Price }, apply: func(s *FormState, p *Patch) { s.Price = *p.Price }},
	{name: FieldComments, str: func(p *Patch) **string { return &p.Comments }, apply: func(s *FormState, p *Patch) { s.Comments = *p.Comments }},
	{name: FieldReferralSource, str: func(p *Patch) **string { return &p.ReferralSource }, apply: func(s *FormState, p *Patch) { s.ReferralSource = *p.ReferralSource }},
}

func (f patchField) present(p *Patch) bool {
	if f.str != nil {
		return *f.str(p) != nil
	}
	return *f.boolean(p) != nil
}

// Fields returns the names of the fields present in the patch, in form order.
func (p Patch) Fields() []string {
	var out []string
	for _, f := range patchFields {
		if f.present(&p) {
			out = append(out, f.name)
		}
	}
	return out
}

// Empty reports whether the patch carries no fields.
func (p Patch) Empty() bool {
	return len(p.Fields()) == 0
}

// ApplyTo merges the present fields into s. Absent fields are left untouched.
func (p Patch) ApplyTo(s *FormState) {
	for _, f := range patchFields {
		if f.present(&p) {
			f.apply(s, &p)
		}
	}
}

// KnownField reports whether name is a user-editable field.
func KnownField(name string) bool {
	for _, f := range patchFields {
		if f.name == name {
			return true
		}
	}
	return false
}

// IsBoolField reports whether name holds a boolean value.
func IsBoolField(name string) bool {
	for _, f := range patchFields {
		if f.name == name {
			return f.boolean != nil
		}
	}
	return false
}

// SetString builds a single-field patch for a string field.
func SetString(name, value string) (Patch, error) {
	var p Patch
	for _, f := range patchFields {
		if f.name != name {
			continue
		}
		if f.str == nil {
			return p, fmt.Errorf("%w: %s is not a text field", ErrUnknownField, name)
		}
		*f.str(&p) = Ptr(value)
		return p, nil
	}
	return p, fmt.Errorf("%w: %s", ErrUnknownField, name)
}

// SetBool builds a single-field patch for a boolean field.
func SetBool(name string, value bool) (Patch, error) {
	var p Patch
	for _, f := range patchFields {
		if f.name != name {
			continue
		}
		if f.boolean == nil {
			return p, fmt.Errorf("%w: %s is not a boolean field", ErrUnknownField, name)
		}
		*f.boolean(&p) = Ptr(value)
		return p, nil
	}
	return p, fmt.Errorf("%w: %s", ErrUnknownField, name)
}

// Text returns the current value of a string field, or "" for anything else.
func (s FormState) Text(name string) string {
	switch name {
	case FieldAddress:
		return s.Address
	case FieldStreetAddress:
		return s.StreetAddress
	case FieldCity:
		return s.City
	case FieldState:
		return s.State
	case FieldPostalCode:
		return s.PostalCode
	case FieldPlaceID:
		return s.PlaceID
	case FieldPhone:
		return s.Phone
	case FieldFirstName:
		return s.FirstName
	case FieldLastName:
		return s.LastName
	case FieldEmail:
		return s.Email
	case FieldPropertyCondition:
		return s.PropertyCondition
	case FieldTimeframe:
		return s.Timeframe
	case FieldPrice:
		return s.Price
	case FieldComments:
		return s.Comments
	case FieldReferralSource:
		return s.ReferralSource
	}
	return ""
}
