package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the planner's custom rules
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("resource_ref", validateResourceRef)

	return &Validator{
		validate: v,
	}
}

// validateResourceRef accepts "item:id", "element:id" or a bare id
func validateResourceRef(fl validator.FieldLevel) bool {
	ref := fl.Field().String()
	kind, id, found := strings.Cut(ref, ":")
	if !found {
		return strings.TrimSpace(ref) != ""
	}
	return (kind == "item" || kind == "element") && strings.TrimSpace(id) != ""
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Namespace(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	if err := v.Validate(cfg); err != nil {
		return err
	}

	if cfg.Database.Type == "postgres" && cfg.Database.URL == "" && cfg.Database.Host == "" {
		return fmt.Errorf("validation failed:\n  postgres needs database.url or database.host")
	}
	return nil
}
