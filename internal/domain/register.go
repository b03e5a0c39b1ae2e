package domain

import (
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
	"github.com/utafrali/StorefrontGo/pkg/validator"
)

// RegisterInput is the registration form data validated locally before any
// network call, so invalid submissions never reach the backend.
type RegisterInput struct {
	Username        string `validate:"required,min=6"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// ValidateRegistration checks the registration form. On failure it returns an
// InvalidInput error carrying the first user-facing message in form order
// (username before password before confirmation).
func ValidateRegistration(in RegisterInput) error {
	err := validator.Validate(in)
	if err == nil {
		return nil
	}

	valErr, ok := err.(*validator.ValidationError)
	if !ok {
		return apperrors.Wrap(err, "validate registration")
	}

	fe := valErr.First()
	if fe == nil {
		return nil
	}
	if fe.Field() == "ConfirmPassword" {
		return apperrors.InvalidInput("Passwords do not match")
	}
	return apperrors.InvalidInput(fe.Field() + " " + validator.MessageForTag(fe))
}
