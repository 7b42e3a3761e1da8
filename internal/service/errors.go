package service

import "errors"

// Erreurs sentinelles du domaine ; les handlers les mappent vers les codes HTTP
var (
	ErrComplaintNotFound  = errors.New("complaint not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP not found or expired")
	ErrRevisionConflict   = errors.New("complaint was modified concurrently")
	ErrForbidden          = errors.New("insufficient permissions")
)
