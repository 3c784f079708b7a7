package service

import (
	"errors"
	"fmt"

	"roomhub/internal/repository"
)

var (
	// ErrValidation marks malformed or missing input. Nothing is persisted.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown room, device, automation or camera.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable marks an unreachable room controller. It never leaves
	// the dispatch and push boundaries; callers only log it.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrPersistence marks a failed store write.
	ErrPersistence = errors.New("persistence failure")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// mapRepoErr translates repository.ErrNotFound into ErrNotFound and leaves other errors alone.
func mapRepoErr(err error, what, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %q", ErrNotFound, what, id)
	}
	return err
}
