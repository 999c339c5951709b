// Package repository defines error values that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers and the processor to distinguish between failure
// scenarios. For example, ErrForbidden indicates that the current
// user is not authorized to act on a resource owned by someone else,
// while ErrNotPending signals that a scheduled job has already left
// the PENDING state and cannot be claimed or cancelled again.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrJobNotFound is returned when a scheduled job does not exist.
var ErrJobNotFound = errors.New("scheduled job not found")

// ErrBookingNotFound is returned when no booking matches the given
// identifier or PNR.
var ErrBookingNotFound = errors.New("booking not found")

// ErrTrainNotFound is returned when a train is absent from the
// catalog.
var ErrTrainNotFound = errors.New("train not found")

// ErrClassNotFound is returned when a train exists but does not carry
// the requested class. During an autonomous sweep this is terminal
// for the job, not retryable.
var ErrClassNotFound = errors.New("train class not found")

// ErrNotPending is returned when an operation requires a scheduled
// job in the PENDING state but the job has already reached a terminal
// state. Handlers should translate this into an HTTP 409 response
// rather than silently accepting the request.
var ErrNotPending = errors.New("scheduled job is not pending")
