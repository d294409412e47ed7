package model

import "errors"

// Not-found sentinels returned by the repositories. Everything else is
// reported as a coded pkg/apierror value by the service layer.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrPostNotFound    = errors.New("blog post not found")
)
