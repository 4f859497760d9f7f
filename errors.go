package keyrealm

import "errors"

var (
	// ErrUnknownApplication is returned by FindApplication and Authorize
	// for client ids that were never registered. Unlike a failed login this
	// is a genuine fault: a misconfigured host or a forged client.
	ErrUnknownApplication = errors.New("unknown application")
	// ErrApplicationExists is returned when registering a duplicate client id.
	ErrApplicationExists = errors.New("application already registered")
	// ErrUserExists is returned when registering a duplicate username.
	ErrUserExists = errors.New("user already registered")
	// ErrUserNotFound is returned by administrative mutators that reference
	// an unregistered username.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotAuthenticated is returned by Authorize when the principal's
	// token has been revoked or was never issued.
	ErrNotAuthenticated = errors.New("principal not authenticated")
	// ErrLoginRateLimited is returned by Verify when the attempt budget for
	// the username or client IP is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrNoSecurityContext is returned by permission checks invoked before
	// any WithSecurityContext binding. This is a programming contract
	// violation, not a deny.
	ErrNoSecurityContext = errors.New("no security context established")
)
