package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

type createEmployeeInput struct {
	Name       string   `json:"name" validate:"required,max=200"`
	Age        *int     `json:"age" validate:"omitnil,gte=0,lte=150"`
	Class      *string  `json:"class" validate:"omitnil,max=100"`
	Subjects   []string `json:"subjects" validate:"omitempty,dive,required,max=100"`
	Attendance *float64 `json:"attendance" validate:"omitnil,gte=0,lte=100"`
}

type updateEmployeeInput struct {
	Name       *string  `json:"name" validate:"omitnil,min=1,max=200"`
	Age        *int     `json:"age" validate:"omitnil,gte=0,lte=150"`
	Class      *string  `json:"class" validate:"omitnil,max=100"`
	Subjects   []string `json:"subjects" validate:"omitempty,dive,required,max=100"`
	Attendance *float64 `json:"attendance" validate:"omitnil,gte=0,lte=100"`
}

type registerInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError converts validator output into a VALIDATION_FAILED error
// whose details map each offending field to the rule it broke.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make(map[string]any, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
		fields = append(fields, fe.Field())
	}
	return apperrors.NewValidationError("invalid input: "+strings.Join(fields, ", "), details)
}
