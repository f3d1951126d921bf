package catalog

import "errors"

var (
	// ErrInvalidSortBy is returned for sort keys other than name, added and rating
	ErrInvalidSortBy = errors.New("sortBy must be one of name, added, rating")

	// ErrInvalidSortOrder is returned for sort orders other than asc and desc
	ErrInvalidSortOrder = errors.New("sortOrder must be asc or desc")

	// ErrInvalidDate is returned when a date filter cannot be parsed
	ErrInvalidDate = errors.New("invalid date")
)
