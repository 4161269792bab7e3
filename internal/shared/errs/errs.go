// Package errs defines sentinel errors shared across feature packages.
// Each error carries a stable machine-readable code and the HTTP status
// controllers should translate it into, so repositories and services can
// signal failure modes without importing gin or net/http semantics.
package errs

import (
	"errors"
	"net/http"
)

// Error is a domain error with a stable code.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

var (
	ErrScheduleNotFound = New("SCHEDULE_NOT_FOUND", http.StatusNotFound, "schedule not found")
	ErrSeatNotFound     = New("SEAT_NOT_FOUND", http.StatusNotFound, "seat not found")
	ErrBookingNotFound  = New("BOOKING_NOT_FOUND", http.StatusNotFound, "booking not found")
	ErrPaymentNotFound  = New("PAYMENT_NOT_FOUND", http.StatusNotFound, "payment not found")
	ErrCouponNotFound   = New("COUPON_NOT_FOUND", http.StatusNotFound, "coupon not found")

	// ErrSeatUnavailable is returned when any seat of a requested set is
	// already claimed; the claim is all-or-nothing so none were mutated.
	ErrSeatUnavailable = New("SEAT_UNAVAILABLE", http.StatusConflict, "one or more seats are already claimed")

	ErrCouponInvalid    = New("COUPON_INVALID", http.StatusBadRequest, "coupon is not applicable to this purchase")
	ErrCouponExhausted  = New("COUPON_EXHAUSTED", http.StatusConflict, "coupon usage limit reached")
	ErrDuplicatePayment = New("DUPLICATE_PAYMENT", http.StatusConflict, "a completed payment already exists for this booking")
	ErrBookingNotPending = New("BOOKING_NOT_PENDING", http.StatusConflict, "booking is not in a pending state")

	// ErrVerificationFailed signals a callback whose signature did not
	// match. Controllers acknowledge these with a rejection rather than a
	// client error, since the caller is a provider with its own retries.
	ErrVerificationFailed = New("VERIFICATION_FAILED", http.StatusBadRequest, "callback signature verification failed")

	ErrProviderUnknown = New("PROVIDER_UNKNOWN", http.StatusBadRequest, "unknown payment provider")
	ErrProvider        = New("PROVIDER_ERROR", http.StatusBadGateway, "payment provider request failed")

	ErrForbidden = New("FORBIDDEN", http.StatusForbidden, "access denied")
)

// Code extracts the machine-readable code, or INTERNAL for unknown errors.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}

// HTTPStatus maps an error to the status a controller should respond with.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
