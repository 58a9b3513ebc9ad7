package load

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrNoSchemaFiles is matched by the error returned when discovery finds no
// schema fragments.
var ErrNoSchemaFiles = errors.New("No GraphQL Schema files found!") //nolint:staticcheck // user-facing message

// NoSchemaFilesError reports an empty discovery. Its message is always the
// ErrNoSchemaFiles text; the patterns and the calling location are kept as
// fields.
type NoSchemaFilesError struct {
	Patterns []string
	// Caller is the file:line of the code that requested the load.
	Caller string
}

// Error implements the error interface.
func (e *NoSchemaFilesError) Error() string {
	return ErrNoSchemaFiles.Error()
}

// Is reports whether target is ErrNoSchemaFiles.
func (e *NoSchemaFilesError) Is(target error) bool {
	return target == ErrNoSchemaFiles
}

// Detail describes the failed discovery for logs.
func (e *NoSchemaFilesError) Detail() string {
	var b strings.Builder
	b.WriteString(e.Error())
	fmt.Fprintf(&b, " patterns=[%s]", strings.Join(e.Patterns, ", "))
	if e.Caller != "" {
		b.WriteString(" at ")
		b.WriteString(e.Caller)
	}
	return b.String()
}

// NewNoSchemaFilesError creates a NoSchemaFilesError.
func NewNoSchemaFilesError(patterns []string, caller string) *NoSchemaFilesError {
	return &NoSchemaFilesError{Patterns: patterns, Caller: caller}
}

// IsNoSchemaFiles returns true if the error is a NoSchemaFilesError.
func IsNoSchemaFiles(err error) bool {
	if err == nil {
		return false
	}
	var e *NoSchemaFilesError
	return errors.As(err, &e) || errors.Is(err, ErrNoSchemaFiles)
}

// callerLocation returns file:line of the frame skip levels above its
// caller.
func callerLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}
