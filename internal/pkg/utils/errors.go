package utils

import "errors"

// ErrJobNotFound indicates a lookup for an unknown job ID
var ErrJobNotFound = errors.New("job not found")

// ErrStageFailed indicates a pipeline stage returned a failure.
// The wrapping message is what ends up on the job as error_message.
type ErrStageFailed struct {
	Stage string
	Err   error
}

// NewErrStageFailed creates new error
func NewErrStageFailed(stage string, err error) error {
	return &ErrStageFailed{Stage: stage, Err: err}
}

func (e *ErrStageFailed) Error() string {
	return e.Stage + " failed"
}

func (e *ErrStageFailed) Unwrap() error {
	return e.Err
}
