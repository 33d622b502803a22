package validation

import (
	"errors"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation"
)

var ErrMissingField = errors.New("missing required field")

// MissingFieldError lists the fields that were absent or empty.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return "missing required field(s): " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Required checks that every listed field of structPtr is non-empty.
// Field names in the error come from the struct's json tags.
//
// Example:
//
//	err := validation.Required(&in, &in.Username, &in.Password)
func Required(structPtr any, fieldPtrs ...any) error {
	rules := make([]*ozzo.FieldRules, 0, len(fieldPtrs))
	for _, ptr := range fieldPtrs {
		rules = append(rules, ozzo.Field(ptr, ozzo.Required))
	}

	err := ozzo.ValidateStruct(structPtr, rules...)
	if err == nil {
		return nil
	}

	var errs ozzo.Errors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make([]string, 0, len(errs))
	for name := range errs {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	return &MissingFieldError{Fields: fields}
}
