package service

import "errors"

// Sentinel errors classified by the handler layer into response codes.
// Services wrap these with %w and a human-readable message.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrOTPExpired = errors.New("otp expired or not requested")
	ErrOTPInvalid = errors.New("otp invalid")
)
