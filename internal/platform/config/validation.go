package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf key, so errors read
// "server.port" exactly as the setting is spelled in YAML.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("koanf")
	})

	return v
}

// envHints names the variable that supplies a setting when it is missing.
var envHints = map[string]string{
	"database.url": EnvDatabaseURL,
	"server.port":  EnvPort,
}

// Validate checks c and reports every invalid setting at once. The
// service refuses to start on error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config validation: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
}

func describe(fe validator.FieldError) string {
	key := settingKey(fe.Namespace())

	var msg string

	switch fe.Tag() {
	case "required":
		msg = key + " is required"
		if env, ok := envHints[key]; ok {
			msg += " (set " + env + ")"
		}
	case "required_if":
		msg = fmt.Sprintf("%s is required when %s", key, fe.Param())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", key, fe.Param())
	default:
		msg = fmt.Sprintf("%s failed validation: %s", key, fe.Tag())
	}

	return msg
}

// settingKey drops the root type from a namespace such as "Config.server.port".
func settingKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return key
}
