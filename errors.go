package gqlcodegen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors.
var (
	// ErrGraphQLNotRegistered is returned by Codegen when the server has no
	// GraphQL schema once it is ready.
	ErrGraphQLNotRegistered = errors.New("GraphQL is not registered in the server instance!")

	// ErrNilServer is returned when no server is given.
	ErrNilServer = errors.New("gqlcodegen: server is nil")
)

// IsNotRegistered returns true if the error reports a server without
// GraphQL.
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrGraphQLNotRegistered)
}

// TaskError represents a failure of one of the tasks run by a codegen pass,
// such as writing the output schema or the generated code.
type TaskError struct {
	Task string // Task that failed
	Path string // Target file of the task
	Err  error  // Underlying error
}

// Error returns the error string.
func (e *TaskError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("gqlcodegen: %s %s: %v", e.Task, e.Path, e.Err)
	}
	return fmt.Sprintf("gqlcodegen: %s: %v", e.Task, e.Err)
}

// Unwrap returns the underlying error.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// NewTaskError returns a new TaskError.
func NewTaskError(task, path string, err error) *TaskError {
	return &TaskError{Task: task, Path: path, Err: err}
}

// IsTaskError returns true if the error is a TaskError.
func IsTaskError(err error) bool {
	if err == nil {
		return false
	}
	var e *TaskError
	return errors.As(err, &e)
}
