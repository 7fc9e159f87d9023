package utils

import (
	"context"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	validate  *validator.Validate
	jobIDExpr = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
)

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("jobid", validateJobID); err != nil {
		panic(err)
	}
}

// IsValidJobID reports whether id is safe to use as a path and object key segment.
func IsValidJobID(id string) bool {
	return jobIDExpr.MatchString(id)
}

func validateJobID(fl validator.FieldLevel) bool {
	return IsValidJobID(fl.Field().String())
}

// ValidateStruct checks s against its validate tags.
func ValidateStruct(ctx context.Context, s interface{}) error {
	return validate.StructCtx(ctx, s)
}
