// Package apperr holds the error taxonomy shared by the collection, asset and
// notification layers.
//
// Three kinds exist. ErrValidationFailed is raised locally before any remote
// call. ErrStoreUnavailable collapses every remote failure (network, auth,
// schema) into one kind. ErrAssetOperationFailed never crosses the collection
// boundary: it only appears inside a BestEffort outcome.
package apperr

import (
	"errors"
	"fmt"

	"github.com/ourstory/scrapbook/pkg/logger"
)

var (
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrValidationFailed     = errors.New("validation failed")
	ErrAssetOperationFailed = errors.New("asset operation failed")
)

// Store wraps a remote failure. Both ErrStoreUnavailable and cause match errors.Is.
func Store(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, cause)
}

// Validation builds an ErrValidationFailed with a human readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

// ValidationCause wraps a validator error.
func ValidationCause(cause error) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, cause)
}

// Asset wraps a blob storage failure.
func Asset(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrAssetOperationFailed, cause)
}

// BestEffort is the outcome of a fire-and-forget side effect (peer
// notification, blob cleanup). Callers log it and continue; a failed outcome
// never changes the result of the operation that triggered it.
type BestEffort struct {
	Op  string
	Err error
}

// Done is a successful outcome.
func Done(op string) BestEffort { return BestEffort{Op: op} }

// Failed is a failed outcome.
func Failed(op string, err error) BestEffort { return BestEffort{Op: op, Err: err} }

func (b BestEffort) Failed() bool { return b.Err != nil }

// Log writes a failed outcome at warn level and discards it.
func (b BestEffort) Log(log logger.Component) {
	if b.Err != nil {
		log.Warnf("%s failed (ignored): %v", b.Op, b.Err)
	}
}
