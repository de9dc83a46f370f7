package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/csr-compliance-api/internal/models"
	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
)

// NewValidator returns a validator with the compliance rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerComplianceRules(v)
	return v
}

func registerComplianceRules(v *validator.Validate) {
	_ = v.RegisterValidation("compliance_status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			if fe.Tag() == "compliance_status" {
				msgs = append(msgs, fe.Field()+" must be compliant or non-compliant")
				continue
			}
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(msgs, "; "))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
