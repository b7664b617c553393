package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authorization (AUTHZ) ----

func ErrUnauthorized() *AppError {
	return New("AUTHZ_001", "Caller lacks required privilege", http.StatusForbidden)
}

// ---- Registry (NGO) ----

func ErrAlreadyRegistered() *AppError {
	return New("NGO_001", "Identity already has a registered organization", http.StatusConflict)
}

func ErrEmailTaken() *AppError {
	return New("NGO_002", "Email is already bound to an organization", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("NGO_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidState() *AppError {
	return New("NGO_004", "Operation not legal for current lifecycle state", http.StatusConflict)
}

// ---- Ledger (DON) ----

func ErrNotVerified() *AppError {
	return New("DON_001", "Organization is not verified", http.StatusUnprocessableEntity)
}

func ErrInvalidAmount() *AppError {
	return New("DON_002", "Invalid amount", http.StatusBadRequest)
}

func ErrTransferFailed() *AppError {
	return New("DON_003", "Value transfer could not complete", http.StatusUnprocessableEntity)
}

func ErrOutOfRange() *AppError {
	return New("DON_004", "Donation id out of ledger range", http.StatusNotFound)
}

// ---- Verifier Set (VER) ----

func ErrAlreadyVerifier() *AppError {
	return New("VER_001", "Identity is already a verifier", http.StatusConflict)
}

func ErrNotVerifier() *AppError {
	return New("VER_002", "Identity is not a verifier", http.StatusNotFound)
}

func ErrCannotRemoveOwner() *AppError {
	return New("VER_003", "Owner cannot be removed from the privileged set", http.StatusForbidden)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("SYS_002", message, http.StatusBadRequest)
}
