package models

import (
	"errors"
)

// Submission error taxonomy. Every abort is one of these four at the
// orchestrator boundary; handlers map them to HTTP statuses.
var (
	ErrInvalidInput      = errors.New("invalid listing input")
	ErrAddressNotFound   = errors.New("address not found")
	ErrUploadFailed      = errors.New("image upload failed")
	ErrPersistenceFailed = errors.New("listing write failed")
)

var (
	ErrListingNotFound    = errors.New("models: listing not found")
	ErrNotListingOwner    = errors.New("models: listing owned by another user")
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrUserNotFound       = errors.New("models: user not found")
)
