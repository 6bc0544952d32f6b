package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/saksham310/CommunityNest-sub000/internal/errs"
)

var validate = validator.New()

// Struct runs validator tags on a request input and converts the first
// failure into a ValidationError.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return errs.Validation("invalid field " + strings.ToLower(f.Field()) + " (" + f.Tag() + ")")
	}
	return errs.Validation(err.Error())
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
