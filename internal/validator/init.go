package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// Struct validates the shape of an incoming message. Game rules are not
// checked here; an off-board position is left for the engine to reject.
func Struct(s any) error {
	return validate.Struct(s)
}
