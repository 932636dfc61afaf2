package portal

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"clientportal/internal/models"
)

// validate is safe for concurrent use once its validations are registered.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report field names as they appear in JSON.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("blocktype", func(fl validator.FieldLevel) bool {
		return models.BlockType(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// validateStruct runs the struct tags of s and converts the first failure
// into a *ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Field(), Msg: describe(fe)}
	}
	return err
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "blocktype":
		return "unknown block type"
	}
	return "failed " + fe.Tag()
}

// newClientInput carries the createClient arguments through the validator.
type newClientInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=320"`
}
