package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates the schema cannot be printed or re-parsed.
	ErrInvalidSchema = errors.New("gqlcodegen: invalid schema")
	// ErrInvalidConfig indicates a configuration error.
	ErrInvalidConfig = errors.New("gqlcodegen: invalid configuration")
	// ErrInvalidDocument indicates an operation document that does not
	// parse or validate against the schema.
	ErrInvalidDocument = errors.New("gqlcodegen: invalid operation document")
	// ErrGenerationFailed indicates a plugin or formatting failure.
	ErrGenerationFailed = errors.New("gqlcodegen: code generation failed")
	// ErrUnknownPlugin indicates a pipeline entry with no registered plugin.
	ErrUnknownPlugin = errors.New("gqlcodegen: unknown plugin")
)

// SchemaError represents a schema that could not be processed.
type SchemaError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("gqlcodegen: schema error")
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(message string, cause error) *SchemaError {
	return &SchemaError{Message: message, Cause: cause}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("gqlcodegen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("gqlcodegen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// DocumentError reports operation documents rejected by the parser or the
// validator.
type DocumentError struct {
	Path   string // empty when the error spans several documents
	Errors gqlerror.List
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	var b strings.Builder
	b.WriteString("gqlcodegen: invalid operation document")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	for i, err := range e.Errors {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(err.Message)
	}
	return b.String()
}

// Unwrap returns the validation errors.
func (e *DocumentError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Is reports whether the target matches the sentinel error for DocumentError.
func (e *DocumentError) Is(target error) bool {
	return target == ErrInvalidDocument
}

// NewDocumentError creates a new DocumentError.
func NewDocumentError(path string, errs gqlerror.List) *DocumentError {
	return &DocumentError{Path: path, Errors: errs}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "plugin", "format", etc.
	Plugin  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("gqlcodegen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.Plugin != "" {
		b.WriteString(" (plugin: ")
		b.WriteString(e.Plugin)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, plugin, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		Plugin:  plugin,
		Message: message,
		Cause:   cause,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsDocumentError reports whether the error is a DocumentError.
func IsDocumentError(err error) bool {
	var docErr *DocumentError
	return errors.As(err, &docErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
