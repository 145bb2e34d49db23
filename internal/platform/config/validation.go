package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their koanf key so messages match the YAML and the
	// APP_ environment variables.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	v.RegisterStructValidation(validateRelations, Config{})

	return v
}

// validateRelations checks the rules that span several fields.
func validateRelations(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}

	if r := c.Client.Retry; r.MaxInterval < r.InitialInterval {
		sl.ReportError(r.MaxInterval, "client.retry.max_interval", "MaxInterval", "gtefield", "client.retry.initial_interval")
	}

	if s := c.Sync; s.MaxBackoff < s.InitialBackoff {
		sl.ReportError(s.MaxBackoff, "sync.max_backoff", "MaxBackoff", "gtefield", "sync.initial_backoff")
	}

	if s := c.Session; s.IdleTimeout > 0 && s.SweepInterval > s.IdleTimeout {
		sl.ReportError(s.SweepInterval, "session.sweep_interval", "SweepInterval", "ltefield", "session.idle_timeout")
	}

	if s := c.Server; s.WriteTimeout > 0 && s.RequestTimeout > s.WriteTimeout {
		sl.ReportError(s.RequestTimeout, "server.request_timeout", "RequestTimeout", "ltefield", "server.write_timeout")
	}

	if c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*") {
		sl.ReportError(c.CORS.AllowedOrigins, "cors.allowed_origins", "AllowedOrigins", "nowildcard", "")
	}
}

// Validate checks the configuration. The service refuses to start on error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

func formatValidationErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		lines = append(lines, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, strings.ToLower(e.Param()))
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case "gtefield":
		return fmt.Sprintf("%s must not be shorter than %s", field, e.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not be longer than %s", field, e.Param())
	case "nowildcard":
		return field + " cannot contain * when cors.allow_credentials is set"
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath drops the root struct from "Config.server.port".
func formatFieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}
