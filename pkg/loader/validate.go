package loader

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New()

func validateModelFile(file *modelFile) error {
	if err := validate.Struct(file); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, formatValidationError(err))
	}
	return nil
}

func validateScenarioFile(file *scenarioFile) error {
	if err := validate.Struct(file); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, formatValidationError(err))
	}
	return nil
}

func validateDatasetFile(file *datasetFile) error {
	if err := validate.Struct(file); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, formatValidationError(err))
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "oneof":
			return fmt.Errorf("%s: must be one of %s", field, param)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gtefield":
			return fmt.Errorf("%s: must not be below %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
