package service

import "errors"

// Service errors map onto the HTTP taxonomy in pkg/http. Messages are safe
// to surface to the caller as-is.
var (
	ErrInvalidURL   = errors.New("the provided URL is not valid")
	ErrInvalidSlug  = errors.New("the slug must be 3-50 URL-safe characters and not a reserved word")
	ErrMissingSlug  = errors.New("invalid or missing slug parameter")
	ErrSlugTaken    = errors.New("the custom slug is already in use")
	ErrLinkNotFound = errors.New("the requested URL does not exist")
	ErrForbidden    = errors.New("you do not have permission to access this URL")

	ErrAlreadyClaimed = errors.New("this URL is already assigned to a user")
	ErrNoIdentity     = errors.New("authentication required")

	ErrUsernameTooShort   = errors.New("username must be at least 3 characters")
	ErrInvalidEmail       = errors.New("must be a valid email")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)
