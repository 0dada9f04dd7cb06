package call

import "fmt"

// ConfigurationError is fatal: the engine refuses work when its settings
// or tool registrations are malformed. All other failures in the pipeline
// are captured as report data instead of propagating.
type ConfigurationError struct {
	Field  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Detail)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Detail)
}

// NewConfigurationError builds a ConfigurationError for a named field.
func NewConfigurationError(field, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Detail: fmt.Sprintf(format, args...)}
}
