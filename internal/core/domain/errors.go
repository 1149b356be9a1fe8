package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrTemporary    = errors.New("temporary failure")

	// ErrContract marks a broken model/prompt contract (e.g. the classifier
	// returned a label outside its enumeration). Never retried.
	ErrContract = errors.New("contract violation")

	// ErrConfig marks an unusable configuration value discovered at the point
	// of use (e.g. unknown answer provider). Never silently defaulted.
	ErrConfig = errors.New("configuration error")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
