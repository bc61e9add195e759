package services

import "errors"

// Sentinel errors shared by the HTTP functions. The mains translate these
// into status codes; everything else is an internal error.
var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrClassifierFailure = errors.New("classifier returned no usable verdict")
)
