package booking

import "errors"

// ErrDateUnavailable means the requested date cannot be booked: it is in
// the past, blocked by an override, or already held by another booking.
// It is user-facing and never retried automatically; retrying would
// re-offer an already-taken date. Any other error from Create is
// transient and eligible for caller-level retry.
var ErrDateUnavailable = errors.New("date unavailable")

// ErrBookingNotFound means the referenced booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")
