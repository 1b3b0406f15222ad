package error

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind groups error codes by how callers should react to them.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindConflict   ErrorKind = "CONFLICT"
	KindValidation ErrorKind = "VALIDATION"
	KindDatabase   ErrorKind = "DATABASE"
	KindInternal   ErrorKind = "INTERNAL"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Lookup Errors (1xxx)
	ErrCodeUserNotFound        ErrorCode = "LOOKUP_1001"
	ErrCodePostNotFound        ErrorCode = "LOOKUP_1002"
	ErrCodePreferencesNotFound ErrorCode = "LOOKUP_1003"

	// Lifecycle Errors (2xxx)
	ErrCodeUserSoftDeleted        ErrorCode = "LIFECYCLE_2001"
	ErrCodeUserNotDeleted         ErrorCode = "LIFECYCLE_2002"
	ErrCodeGracePeriodExpired     ErrorCode = "LIFECYCLE_2003"
	ErrCodeGracePeriodActive      ErrorCode = "LIFECYCLE_2004"
	ErrCodePreferencesDeleted     ErrorCode = "LIFECYCLE_2005"
	ErrCodeDeletionTimestampEmpty ErrorCode = "LIFECYCLE_2006"

	// Uniqueness Errors (3xxx)
	ErrCodeUsernameExists ErrorCode = "UNIQUE_3001"
	ErrCodeEmailExists    ErrorCode = "UNIQUE_3002"

	// Validation Errors (4xxx)
	ErrCodeInvalidRequest ErrorCode = "VALID_4001"
	ErrCodeMissingField   ErrorCode = "VALID_4002"
	ErrCodeInvalidEmail   ErrorCode = "VALID_4003"

	// Database Errors (5xxx)
	ErrCodeDatabaseError ErrorCode = "DB_5001"

	// Server Errors (6xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_6001"
)

// AppError represents a structured application error
type AppError struct {
	Kind    ErrorKind `json:"-"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(kind ErrorKind, code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Lookup errors
func ErrUserNotFound(userID string) *AppError {
	return NewAppError(KindNotFound, ErrCodeUserNotFound, "User not found", fmt.Sprintf("User ID: %s", userID), nil)
}

func ErrPostNotFound(postID string) *AppError {
	return NewAppError(KindNotFound, ErrCodePostNotFound, "Post not found", fmt.Sprintf("Post ID: %s", postID), nil)
}

func ErrPreferencesNotFound(userID string) *AppError {
	return NewAppError(KindNotFound, ErrCodePreferencesNotFound, "Preferences not found for user", fmt.Sprintf("User ID: %s", userID), nil)
}

// Lifecycle errors
func ErrUserSoftDeleted(userID, operation string) *AppError {
	return NewAppError(KindForbidden, ErrCodeUserSoftDeleted, "Cannot "+operation+" for soft-deleted user", fmt.Sprintf("User ID: %s", userID), nil)
}

func ErrUserNotDeleted(userID, operation string) *AppError {
	return NewAppError(KindForbidden, ErrCodeUserNotDeleted, "User must be soft-deleted before "+operation, fmt.Sprintf("User ID: %s", userID), nil)
}

func ErrGracePeriodExpired(userID string, deadline time.Time) *AppError {
	return NewAppError(KindForbidden, ErrCodeGracePeriodExpired, "Cannot restore, grace period has expired",
		fmt.Sprintf("User ID: %s, Deadline: %s", userID, deadline.UTC().Format(time.RFC3339)), nil)
}

func ErrGracePeriodActive(userID string, grace time.Duration, deadline time.Time) *AppError {
	return NewAppError(KindForbidden, ErrCodeGracePeriodActive,
		fmt.Sprintf("Cannot purge user before %s grace period has passed", grace),
		fmt.Sprintf("User ID: %s, Deadline: %s", userID, deadline.UTC().Format(time.RFC3339)), nil)
}

func ErrDeletionTimestampMissing(userID string) *AppError {
	return NewAppError(KindForbidden, ErrCodeDeletionTimestampEmpty, "User has no deletion timestamp", fmt.Sprintf("User ID: %s", userID), nil)
}

func ErrPreferencesDeleted(userID, message string) *AppError {
	return NewAppError(KindForbidden, ErrCodePreferencesDeleted, message, fmt.Sprintf("User ID: %s", userID), nil)
}

// Uniqueness errors
func ErrUsernameExists(username string) *AppError {
	return NewAppError(KindConflict, ErrCodeUsernameExists, "Username already exists", fmt.Sprintf("Username: %s", username), nil)
}

func ErrEmailExists(email string) *AppError {
	return NewAppError(KindConflict, ErrCodeEmailExists, "Email already exists", fmt.Sprintf("Email: %s", email), nil)
}

// Validation errors
func ErrMissingField(field string) *AppError {
	return NewAppError(KindValidation, ErrCodeMissingField, "Missing required field", fmt.Sprintf("Field: %s", field), nil)
}

func ErrInvalidEmail(email string) *AppError {
	return NewAppError(KindValidation, ErrCodeInvalidEmail, "Invalid email format", fmt.Sprintf("Email: %s", email), nil)
}

func ErrInvalidRequest(details string) *AppError {
	return NewAppError(KindValidation, ErrCodeInvalidRequest, "Invalid request", details, nil)
}

// Database errors
func ErrDatabaseError(operation string, cause error) *AppError {
	return NewAppError(KindDatabase, ErrCodeDatabaseError, "Database operation failed", fmt.Sprintf("Operation: %s", operation), cause)
}

// Server errors
func ErrInternalServerError(details string, cause error) *AppError {
	return NewAppError(KindInternal, ErrCodeInternalServerError, "Internal server error", details, cause)
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool  { return KindOf(err) == KindNotFound }
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }
func IsConflict(err error) bool  { return KindOf(err) == KindConflict }

// Error mapping for HTTP status codes
func GetHTTPStatusCode(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindDatabase:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
