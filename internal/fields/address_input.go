package fields

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mushinbuys/leadform/internal/leads"
	"github.com/mushinbuys/leadform/internal/validation"
)

const (
	addressPendingHint  = "Please select an address from the dropdown"
	addressVerifiedNote = "Address verified"
)

// AddressData is a structured selection returned by the geocoding provider.
type AddressData struct {
	FormattedAddress string `json:"formattedAddress"`
	StreetNumber     string `json:"streetNumber" validate:"required"`
	Street           string `json:"street" validate:"required"`
	City             string `json:"city" validate:"required"`
	State            string `json:"state" validate:"required"`
	PostalCode       string `json:"postalCode" validate:"required"`
	PlaceID          string `json:"placeId"`
}

// StreetAddress joins the street number and name.
func (a AddressData) StreetAddress() string {
	return strings.TrimSpace(a.StreetNumber + " " + a.Street)
}

// Formatted returns the provider's formatted address, or composes one.
func (a AddressData) Formatted() string {
	if s := strings.TrimSpace(a.FormattedAddress); s != "" {
		return s
	}
	return fmt.Sprintf("%s, %s, %s %s", a.StreetAddress(), a.City, a.State, a.PostalCode)
}

// Patch maps the selection onto the lead's address fields.
func (a AddressData) Patch() leads.Patch {
	return leads.Patch{
		Address:       leads.Ptr(a.Formatted()),
		StreetAddress: leads.Ptr(a.StreetAddress()),
		City:          leads.Ptr(a.City),
		State:         leads.Ptr(a.State),
		PostalCode:    leads.Ptr(a.PostalCode),
		PlaceID:       leads.Ptr(a.PlaceID),
	}
}

// AddressInput holds free-typed text locally and only commits complete selections.
type AddressInput struct {
	val      *validation.Validator
	onChange func(AddressData)
	readOnly bool

	local    string
	selected bool
}

// AddressOption customizes an AddressInput.
type AddressOption func(*AddressInput)

// ReadOnly renders the stored address and ignores input.
func ReadOnly() AddressOption {
	return func(a *AddressInput) { a.readOnly = true }
}

// NewAddressInput starts from the stored address. A non-empty stored value
// came from an earlier selection, so it counts as committed.
func NewAddressInput(value string, val *validation.Validator, onChange func(AddressData), opts ...AddressOption) *AddressInput {
	if val == nil {
		val = validation.New()
	}
	a := &AddressInput{
		val:      val,
		onChange: onChange,
		local:    value,
		selected: value != "",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Type records free text. Nothing is propagated.
func (a *AddressInput) Type(text string) {
	if a.readOnly {
		return
	}
	a.local = text
	a.selected = false
}

// Select commits a provider selection once every component is present.
func (a *AddressInput) Select(d AddressData) error {
	if a.readOnly {
		return nil
	}
	if err := a.val.Struct(d); err != nil {
		a.selected = false
		var missing []string
		for field := range a.val.Details(err) {
			missing = append(missing, field)
		}
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", leads.ErrIncompleteAddress, strings.Join(missing, ", "))
	}
	a.local = d.Formatted()
	a.selected = true
	if a.onChange != nil {
		a.onChange(d)
	}
	return nil
}

// Blur returns the hint shown when text was typed but never confirmed.
func (a *AddressInput) Blur() string {
	if a.local != "" && !a.selected && !a.readOnly {
		return addressPendingHint
	}
	return ""
}

// Display is the text currently in the box.
func (a *AddressInput) Display() string {
	return a.local
}

// Committed reports whether the displayed text came from a confirmed selection.
func (a *AddressInput) Committed() bool {
	return a.selected
}

// Status returns the note rendered under the box given the field's error.
func (a *AddressInput) Status(fieldErr string) string {
	switch {
	case fieldErr != "":
		return fieldErr
	case a.selected:
		return addressVerifiedNote
	case a.local != "":
		return addressPendingHint
	default:
		return ""
	}
}
