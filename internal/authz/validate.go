package authz

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals

// validateInput runs the struct tags of in and reports failures as ErrInvalidInput.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(ErrInvalidInput, err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}

	return errors.Wrap(ErrInvalidInput, strings.Join(msgs, ", "))
}

// validateVar applies validator tags to a single value.
// Unknown tags make the validator panic, they are reported as an error instead.
func validateVar(value any, rules string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrInvalidInput, "invalid validation rules %q: %v", rules, r)
		}
	}()

	return validate.Var(value, rules)
}

// checkRules reports whether rules is a usable validator tag.
func checkRules(rules string) error {
	if rules == "" {
		return nil
	}

	err := validateVar(nil, rules)
	if errors.Is(err, ErrInvalidInput) {
		return err
	}

	return nil
}
