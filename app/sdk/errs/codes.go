package errs

import "net/http"

// ErrCode represents an error code in the system.
type ErrCode int

// The set of error codes in use for this service.
const (
	OK ErrCode = iota
	Canceled
	Unknown
	InvalidArgument
	DeadlineExceeded
	NotFound
	AlreadyExists
	PermissionDenied
	ResourceExhausted
	FailedPrecondition
	Aborted
	Internal
	Unavailable
	Unauthenticated

	// InternalOnlyLog behaves like Internal but tells the error middleware
	// to log the full detail and return a generic message to the caller.
	InternalOnlyLog
)

var codeNames = map[ErrCode]string{
	OK:                 "ok",
	Canceled:           "canceled",
	Unknown:            "unknown",
	InvalidArgument:    "invalid_argument",
	DeadlineExceeded:   "deadline_exceeded",
	NotFound:           "not_found",
	AlreadyExists:      "already_exists",
	PermissionDenied:   "permission_denied",
	ResourceExhausted:  "resource_exhausted",
	FailedPrecondition: "failed_precondition",
	Aborted:            "aborted",
	Internal:           "internal",
	Unavailable:        "unavailable",
	Unauthenticated:    "unauthenticated",
	InternalOnlyLog:    "internal",
}

var httpStatus = map[ErrCode]int{
	OK:                 http.StatusOK,
	Canceled:           http.StatusGatewayTimeout,
	Unknown:            http.StatusInternalServerError,
	InvalidArgument:    http.StatusBadRequest,
	DeadlineExceeded:   http.StatusGatewayTimeout,
	NotFound:           http.StatusNotFound,
	AlreadyExists:      http.StatusConflict,
	PermissionDenied:   http.StatusForbidden,
	ResourceExhausted:  http.StatusTooManyRequests,
	FailedPrecondition: http.StatusBadRequest,
	Aborted:            http.StatusConflict,
	Internal:           http.StatusInternalServerError,
	Unavailable:        http.StatusServiceUnavailable,
	Unauthenticated:    http.StatusUnauthorized,
	InternalOnlyLog:    http.StatusInternalServerError,
}
