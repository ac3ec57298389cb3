package events

import (
	"context"
	"errors"

	"github.com/spec-kit/okta-import/internal/domain"
)

// Point names a notification point of the import pipeline.
type Point string

const (
	PointValidate   Point = "okta_import.validate"
	PointPreSubmit  Point = "okta_import.presubmit"
	PointPostSubmit Point = "okta_import.postsubmit"
)

// ErrSkip is returned by a per-email handler to skip that email without
// counting it as a failure.
var ErrSkip = errors.New("skip email")

// ValidateHandler inspects or replaces the email batch before any account is attempted.
type ValidateHandler func(ctx context.Context, batch domain.EmailBatch) (domain.EmailBatch, error)

// PreSubmitHandler inspects or replaces a pending user before it is created.
type PreSubmitHandler func(ctx context.Context, user domain.PendingUser) (domain.PendingUser, error)

// PostSubmitHandler inspects or replaces the outcome of a creation attempt.
type PostSubmitHandler func(ctx context.Context, user domain.SubmittedUser) (domain.SubmittedUser, error)

// HandlerError reports which point and handler failed.
type HandlerError struct {
	Point Point
	Index int
	Err   error
}

func (e *HandlerError) Error() string {
	return string(e.Point) + " handler failed: " + e.Err.Error()
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
