package domain

import "errors"

// Auth errors: token-level failures. Always end the request unauthorized.
var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrPrincipalGone = errors.New("principal no longer exists")
)

// Authorization errors: correct identity, insufficient rights.
var (
	ErrWrongRole   = errors.New("wrong role for this operation")
	ErrNotVerified = errors.New("user not verified by moderator")
	ErrNotExecutor = errors.New("caller is not the executor of this application")
	ErrNotCreator  = errors.New("caller is not the creator of this application")
	ErrInactive    = errors.New("user profile is not active")
)

// Not-found errors.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrLocationNotFound    = errors.New("location not found")
	ErrClientNotFound      = errors.New("unknown client")
)

// Validation errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists for this role")
	ErrPastDeadline       = errors.New("active_to date must be in the future")
	ErrUnparseableDate    = errors.New("active_to date cannot be parsed")
	ErrNoLocationInput    = errors.New("provide either an address or both latitude and longitude")
	ErrLocationForbidden  = errors.New("location data is not required for beneficiaries")
	ErrCategoryForbidden  = errors.New("category subscriptions are only for volunteers")
	ErrNoExecutor         = errors.New("no executor assigned to the application")
	ErrNotDoneYet         = errors.New("the task has not been marked as done by the executor")
	ErrNotOpen            = errors.New("application is not open")
	ErrNotInProgress      = errors.New("application is not in progress")
	ErrAlreadyAccepted    = errors.New("application already accepted by another volunteer")
	ErrAlreadyInactive    = errors.New("application is already deactivated")
	ErrAlreadyFinished    = errors.New("application is already finished")
	ErrInvalidListType    = errors.New("invalid application list type")
)

// Concurrency errors.
var (
	ErrVolunteerSaturated = errors.New("volunteer already has 3 applications in progress")
)

// External collaborator errors.
var (
	ErrGeocodingFailed = errors.New("geocoding service unavailable")
	ErrAddressNotFound = errors.New("address could not be resolved")
)

// ErrCorruptState marks a persisted application whose status flags violate
// the lifecycle invariants (e.g. finished without done). Such records are
// rejected, never repaired in place.
var ErrCorruptState = errors.New("application state flags are inconsistent")
