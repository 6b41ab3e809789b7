// Package validation applies the field rules declared in `validate` struct
// tags and turns violations into a single ValidationFailure reason.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ehr/patientsvc/internal/platform/apperr"
)

const (
	MsgEmail   = "The email must have an @ symbol and at least 1 or more characters before and after the @ symbol"
	MsgState   = "The patient's state must be one of the 50 US states that exist"
	MsgPostal  = "The zip code must have the format XXXXX or XXXXX-XXXX"
	MsgSSN     = "The ssn must have the format XXX-XX-XXXX"
	MsgMinimum = "must have a value greater than or equal to 0"
)

var (
	ssnPattern    = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)
	postalPattern = regexp.MustCompile(`^(\d{5}|\d{5}-\d{4})$`)
	emailPattern  = regexp.MustCompile(`^.+@.+\..+$`)
)

// USStates holds the 50 two-letter postal codes.
var USStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true,
	"CO": true, "CT": true, "DE": true, "FL": true, "GA": true,
	"HI": true, "ID": true, "IL": true, "IN": true, "IA": true,
	"KS": true, "KY": true, "LA": true, "ME": true, "MD": true,
	"MA": true, "MI": true, "MN": true, "MS": true, "MO": true,
	"MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true,
	"SD": true, "TN": true, "TX": true, "UT": true, "VT": true,
	"VA": true, "WA": true, "WV": true, "WI": true, "WY": true,
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		mustRegister(v, "usstate", func(fl validator.FieldLevel) bool {
			return USStates[fl.Field().String()]
		})
		mustRegister(v, "ssn", matches(ssnPattern))
		mustRegister(v, "postal", matches(postalPattern))
		mustRegister(v, "looseemail", matches(emailPattern))
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// Validate checks v against its `validate` tags. It returns nil or an
// *apperr.Error of kind ValidationFailure listing every violated field in
// declaration order.
func Validate(v interface{}) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, reason(fe))
	}
	return apperr.Validation(strings.Join(reasons, "; "))
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "looseemail":
		return MsgEmail
	case "usstate":
		return MsgState
	case "postal":
		return MsgPostal
	case "ssn":
		return MsgSSN
	case "gte":
		return fmt.Sprintf("The %s %s", fe.Field(), MsgMinimum)
	default:
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
}
