package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iglide21/BabyBuddy-sub001/internal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// optional_date accepts "" or a YYYY-MM-DD calendar date.
	_ = v.RegisterValidation("optional_date", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse(time.DateOnly, s)
		return err == nil
	})
	return v
}

// validateStruct runs the struct tags and reports the first failure as a
// ValidationError keyed by its JSON field name.
func validateStruct(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return internal.NewValidationError(fe.Field(), "failed %s=%s", fe.Tag(), fe.Param())
		}
		return internal.NewValidationError(fe.Field(), "failed %s", fe.Tag())
	}
	return internal.NewValidationError("", "%v", err)
}
