package leads

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepOrder(t *testing.T) {
	assert.Equal(t, StepPropertyDetails, StepInitial.Next())
	assert.Equal(t, StepTimeline, StepPropertyDetails.Next())
	assert.Equal(t, StepContact, StepTimeline.Next())
	assert.Equal(t, StepThankYou, StepContact.Next())
	assert.Equal(t, StepThankYou, StepThankYou.Next())
	assert.True(t, StepContact.After(StepInitial))
	assert.False(t, StepInitial.After(StepInitial))
}

func TestParseStep(t *testing.T) {
	step, err := ParseStep(" Property-Details ")
	require.NoError(t, err)
	assert.Equal(t, StepPropertyDetails, step)

	_, err = ParseStep("checkout")
	assert.True(t, errors.Is(err, ErrInvalidStep))
}

func TestPatchFieldsAndApply(t *testing.T) {
	state := DefaultFormState()
	state.FirstName = "Ada"

	p := Patch{
		Address: Ptr("123 Main St, Dover, DE 19901"),
		Phone:   Ptr("5551234567"),
		Consent: Ptr(false),
	}
	assert.Equal(t, []string{FieldAddress, FieldPhone, FieldConsent}, p.Fields())

	p.ApplyTo(&state)
	assert.Equal(t, "123 Main St, Dover, DE 19901", state.Address)
	assert.Equal(t, "5551234567", state.Phone)
	assert.False(t, state.Consent)
	assert.Equal(t, "Ada", state.FirstName, "absent fields must not change")
}

func TestPatchJSONPresence(t *testing.T) {
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(`{"email":"","consent":true}`), &p))
	assert.Equal(t, []string{FieldConsent, FieldEmail}, p.Fields())
	assert.False(t, p.Empty())
	assert.True(t, Patch{}.Empty())
}

func TestSetStringAndBool(t *testing.T) {
	p, err := SetString(FieldTimeframe, "asap")
	require.NoError(t, err)
	assert.Equal(t, []string{FieldTimeframe}, p.Fields())

	_, err = SetString(FieldConsent, "yes")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = SetString("leadId", "L1")
	assert.ErrorIs(t, err, ErrUnknownField)

	p, err = SetBool(FieldIsPropertyListed, true)
	require.NoError(t, err)
	var s FormState
	p.ApplyTo(&s)
	require.NotNil(t, s.IsPropertyListed)
	assert.True(t, *s.IsPropertyListed)
}

func TestFormErrorsClone(t *testing.T) {
	errs := FormErrors{FieldPhone: "bad"}
	cp := errs.Clone()
	cp[FieldEmail] = "bad"
	assert.False(t, errs.Has(FieldEmail))
	assert.True(t, cp.Has(FieldPhone))
}

func TestOptionsFor(t *testing.T) {
	opt, ok := FindOption(OptionsFor(FieldTimeframe), "asap")
	require.True(t, ok)
	assert.NotEmpty(t, opt.Description)
	assert.Nil(t, OptionsFor(FieldEmail))
}

func TestStateJSONRoundsOverDefaults(t *testing.T) {
	state := DefaultFormState()
	state.Price = "unset"
	require.NoError(t, json.Unmarshal([]byte(`{"address":"1 Elm St","leadId":"L9"}`), &state))
	assert.Equal(t, "1 Elm St", state.Address)
	assert.Equal(t, "L9", state.LeadID)
	assert.Equal(t, "unset", state.Price, "keys missing from the snapshot keep their defaults")
}

func TestFormStateText(t *testing.T) {
	s := DefaultFormState()
	s.FirstName = "Ada"
	s.Consent = true
	assert.Equal(t, "Ada", s.Text(FieldFirstName))
	assert.Empty(t, s.Text(FieldConsent))
	assert.Empty(t, s.Text("nope"))
}
