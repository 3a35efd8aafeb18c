package floor

import (
	"floorly/internal/reservations"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the floor-specific binding validators on gin's
// validator engine. Safe to call more than once.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("lifecycle_command", func(fl validator.FieldLevel) bool {
		return reservations.Command(fl.Field().String()).IsValid()
	})
}
