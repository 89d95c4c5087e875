// Package service holds the managers that own every mutation of the
// relationship and event stores. Mutations never return a bare error:
// they report a Result that callers branch on, and read-only resolvers
// degrade to safe defaults.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Stefhermann/GOpherARun/internal/broker"
	"github.com/Stefhermann/GOpherARun/internal/repository"
	"github.com/sirupsen/logrus"
)

// Error kinds carried by Result.Err and by the errors of read operations.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrSelfOperation    = errors.New("operation targets the caller")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrPermissionDenied = errors.New("permission denied")
	ErrStoreFailure     = errors.New("store failure")
	ErrInvalidInput     = errors.New("invalid input")
)

const msgAuthRequired = "Authentication required."

// Result is the outcome of a mutation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func succeed(message string) Result {
	return Result{Success: true, Message: message}
}

func fail(kind error, message string) Result {
	return Result{Success: false, Message: message, Err: kind}
}

// Is reports whether the result failed with the given kind.
func (r Result) Is(kind error) bool {
	return r.Err != nil && errors.Is(r.Err, kind)
}

// kindOf maps a repository error onto the error taxonomy.
func kindOf(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	default:
		return ErrStoreFailure
	}
}

// readError wraps a repository error for read operations.
func readError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kindOf(err), err)
}

// publish sends an activity and only logs failures; the store already holds the change.
func publish(ctx context.Context, p broker.Publisher, activity broker.Activity) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, activity); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "publish",
			"kind":     activity.Kind,
			"actor":    activity.ActorID,
		}).WithError(err).Warn("Failed to publish activity")
	}
}
