package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the lead form's custom tags.
type Validator struct {
	v *validator.Validate
}

// New registers phone, zip, name, price and leademail tags.
func New() *Validator {
	v := validator.New()

	// Report fields by their JSON name so details line up with the error map.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	stringRule := func(check func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool {
			value, ok := fl.Field().Interface().(string)
			if !ok {
				return false
			}
			return check(value)
		}
	}

	_ = v.RegisterValidation("phone", stringRule(Phone))
	_ = v.RegisterValidation("zip", stringRule(ZipCode))
	_ = v.RegisterValidation("name", stringRule(Name))
	_ = v.RegisterValidation("price", stringRule(Price))
	_ = v.RegisterValidation("leademail", stringRule(Email))

	return &Validator{v: v}
}

// Struct validates s against its `validate` tags.
func (v *Validator) Struct(s any) error {
	return v.v.Struct(s)
}

// ValidationErrors extracts field errors, or nil when err is something else.
func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// Details maps each failing field to the tag it failed.
func (v *Validator) Details(err error) map[string]string {
	errs := v.ValidationErrors(err)
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
