package servers

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a server record does not exist
	ErrNotFound = errors.New("server not found")

	// ErrValidation is wrapped by every input validation failure
	ErrValidation = errors.New("validation failed")

	// ErrIDRequired is returned when no server id was given
	ErrIDRequired = fmt.Errorf("%w: server ID is required", ErrValidation)

	// ErrInvalidID is returned when a server id is not a UUID
	ErrInvalidID = fmt.Errorf("%w: invalid server ID", ErrValidation)

	// ErrNameTooShort is returned when the display name has fewer than 2 characters
	ErrNameTooShort = fmt.Errorf("%w: name must be at least 2 characters", ErrValidation)

	// ErrInvalidURL is returned when the base URL is not an absolute http(s) URL
	ErrInvalidURL = fmt.Errorf("%w: must be a valid URL", ErrValidation)

	// ErrUsernameRequired is returned when username is empty
	ErrUsernameRequired = fmt.Errorf("%w: username is required", ErrValidation)

	// ErrPasswordRequired is returned when password is empty
	ErrPasswordRequired = fmt.Errorf("%w: password is required", ErrValidation)

	// ErrInvalidStatus is returned for a status outside online/offline/unknown
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrValidation)
)

// IsValidation reports whether err is an input validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
