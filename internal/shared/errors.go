package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Provider and collaborator errors
	ErrListing            = fmt.Errorf("cannot enumerate collection")
	ErrUnsupportedURL     = fmt.Errorf("unsupported collection url")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrToolNotFound       = fmt.Errorf("external tool not found")

	// Local library errors
	ErrFolderNotFound = fmt.Errorf("folder not found")

	// Result log errors
	ErrLogLocked = fmt.Errorf("acquisition log is locked by another process")
	ErrLogFormat = fmt.Errorf("malformed acquisition log")

	// Reconciliation outcome surfaced as exit code 2
	ErrMissingTracks = fmt.Errorf("missing tracks")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
