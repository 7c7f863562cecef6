package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator for struct validation outside
// the gin binding path (config, worker inputs).
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(obj interface{}) error {
	if err := v.validate.Struct(obj); err != nil {
		var errs validator.ValidationErrors
		if ok := AsValidationErrors(err, &errs); ok && len(errs) > 0 {
			field := errs[0]
			return fmt.Errorf("%s failed on the %q rule", field.Namespace(), field.Tag())
		}
		return err
	}
	return nil
}

// AsValidationErrors unwraps the library's error slice.
func AsValidationErrors(err error, target *validator.ValidationErrors) bool {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = errs
	return true
}
