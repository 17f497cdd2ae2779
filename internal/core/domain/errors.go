package domain

import "errors"

// Authentication and account errors.
var (
	// ErrInvalidCredentials covers unknown email, wrong password and login
	// attempts against deactivated accounts. The three cases are deliberately
	// indistinguishable to an unauthenticated caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserInactive is returned when a structurally valid token references
	// an account that has since been deactivated. The caller already proved
	// the account exists, so a distinct 403 leaks nothing.
	ErrUserInactive = errors.New("account is inactive")

	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("access forbidden")
)

// Token errors. Expired and invalid are distinct so clients can tell
// "re-login" apart from "hard failure".
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenRevoked = errors.New("token revoked")
)

// Resource errors.
var (
	ErrResourceNotFound    = errors.New("resource not found")
	ErrResourceExists      = errors.New("resource already exists")
	ErrResourceInvalid     = errors.New("invalid resource payload")
	ErrUnknownResourceType = errors.New("unknown resource type")
)
