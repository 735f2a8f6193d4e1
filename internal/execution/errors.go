package execution

import "errors"

// ErrInvalidArguments marks failures caused by how lint was invoked or
// configured rather than by findings.
var ErrInvalidArguments = errors.New("invalid arguments")

// BuildError fails the build. Its message is meant for the user as is.
type BuildError struct {
	Message string
	Err     error
}

func (e *BuildError) Error() string {
	return e.Message
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func buildError(message string, err error) *BuildError {
	return &BuildError{Message: message, Err: err}
}
