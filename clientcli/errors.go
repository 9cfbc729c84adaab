package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrNoProfiles       = errors.New("no profiles configured")
	ErrProfileExists    = errors.New("profile already exists")
	ErrEmptyProfileName = errors.New("profile name is required")
)

// Errors for input validation.
var (
	ErrConfigRequired = errors.New("config is required")
	ErrNoIDs          = errors.New("no resource ids provided")
	ErrEmptyID        = errors.New("resource id is required")
	ErrEmptyPath      = errors.New("path is required")
	ErrMissingField   = errors.New("topic, title and description are required")
)
