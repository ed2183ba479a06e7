package config

import (
	"time"

	apperrors "voice-interview/internal/app/errors"
)

// maxTimeout bounds every server timeout
const maxTimeout = 30 * time.Minute

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return apperrors.InvalidField(name+" timeout", "must be positive")
	}
	if timeout > maxTimeout {
		return apperrors.OutOfRange(name+" timeout", time.Duration(0), maxTimeout)
	}
	return nil
}
