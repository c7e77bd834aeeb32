package keycore

import (
	"fmt"
)

// ErrorCategory classifies core errors by the subsystem that raised them.
type ErrorCategory string

const (
	ErrorCategoryValidation    ErrorCategory = "validation"
	ErrorCategoryKeys          ErrorCategory = "keys"
	ErrorCategorySigning       ErrorCategory = "signing"
	ErrorCategoryRecovery      ErrorCategory = "recovery"
	ErrorCategoryThreshold     ErrorCategory = "threshold"
	ErrorCategoryParticipant   ErrorCategory = "participant"
	ErrorCategoryKeyGeneration ErrorCategory = "key_generation"
	ErrorCategoryCryptographic ErrorCategory = "cryptographic"
	ErrorCategoryInternal      ErrorCategory = "internal"
)

// ErrorSeverity represents the severity level of an error.
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityHigh     ErrorSeverity = "high"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

// CoreError is the structured error used throughout the key core. Every
// operation either returns a well-formed result or one of these; there is no
// degraded-result path.
type CoreError struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface.
func (e *CoreError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Is matches on the error code so that copies produced by WithContext and
// WithCause still compare equal to their sentinel under errors.Is.
func (e *CoreError) Is(target error) bool {
	other, ok := target.(*CoreError)
	return ok && other.Code == e.Code
}

// IsRecoverable reports whether the failed operation may be retried. Only a
// failed share verification is retryable, and only by restarting the whole
// keygen run.
func (e *CoreError) IsRecoverable() bool {
	return e.Recoverable
}

func (e *CoreError) clone() *CoreError {
	clone := &CoreError{
		Category:    e.Category,
		Severity:    e.Severity,
		Code:        e.Code,
		Message:     e.Message,
		Details:     e.Details,
		Cause:       e.Cause,
		Recoverable: e.Recoverable,
		Context:     make(map[string]interface{}, len(e.Context)),
	}
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	return clone
}

// WithContext returns a copy of the error carrying an extra context entry.
func (e *CoreError) WithContext(key string, value interface{}) *CoreError {
	clone := e.clone()
	clone.Context[key] = value
	return clone
}

// WithCause returns a copy of the error with the underlying cause attached.
func (e *CoreError) WithCause(cause error) *CoreError {
	clone := e.clone()
	clone.Cause = cause
	return clone
}

// WithDetails returns a copy of the error with a human-readable detail string.
func (e *CoreError) WithDetails(format string, args ...interface{}) *CoreError {
	clone := e.clone()
	clone.Details = fmt.Sprintf(format, args...)
	return clone
}

// NewCoreError creates a new core error.
func NewCoreError(category ErrorCategory, severity ErrorSeverity, code, message string, recoverable bool) *CoreError {
	return &CoreError{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Context:     make(map[string]interface{}),
		Recoverable: recoverable,
	}
}

// Key and input validation errors.
var (
	ErrInvalidPrivateKey = NewCoreError(
		ErrorCategoryKeys, ErrorSeverityHigh, "INVALID_PRIVATE_KEY",
		"private key is invalid", false)

	ErrInvalidPublicKey = NewCoreError(
		ErrorCategoryKeys, ErrorSeverityHigh, "INVALID_PUBLIC_KEY",
		"public key is invalid", false)

	ErrInvalidMessageHash = NewCoreError(
		ErrorCategoryValidation, ErrorSeverityHigh, "INVALID_MESSAGE_HASH",
		"message hash must be exactly 32 bytes", false)

	ErrInvalidSignature = NewCoreError(
		ErrorCategoryValidation, ErrorSeverityHigh, "INVALID_SIGNATURE",
		"signature is malformed", false)
)

// Signing and recovery errors.
var (
	ErrSignatureCreationFailed = NewCoreError(
		ErrorCategorySigning, ErrorSeverityHigh, "SIGNATURE_CREATION_FAILED",
		"signature creation failed", false)

	ErrRecoveryFailed = NewCoreError(
		ErrorCategoryRecovery, ErrorSeverityHigh, "RECOVERY_FAILED",
		"public key recovery failed", false)
)

// Threshold key generation errors.
var (
	ErrShareVerificationFailed = NewCoreError(
		ErrorCategoryKeyGeneration, ErrorSeverityHigh, "SHARE_VERIFICATION_FAILED",
		"key share verification failed", true)

	ErrThresholdNotMet = NewCoreError(
		ErrorCategoryThreshold, ErrorSeverityHigh, "THRESHOLD_NOT_MET",
		"insufficient shares to reconstruct the secret", false)

	ErrInvalidThreshold = NewCoreError(
		ErrorCategoryThreshold, ErrorSeverityHigh, "INVALID_THRESHOLD",
		"threshold value is invalid", false)

	ErrDuplicateParticipants = NewCoreError(
		ErrorCategoryParticipant, ErrorSeverityMedium, "DUPLICATE_PARTICIPANTS",
		"duplicate participants detected", false)

	ErrInvalidParticipantID = NewCoreError(
		ErrorCategoryParticipant, ErrorSeverityMedium, "INVALID_PARTICIPANT_ID",
		"participant ID is invalid", false)

	ErrInvalidShareMessage = NewCoreError(
		ErrorCategoryValidation, ErrorSeverityMedium, "INVALID_SHARE_MESSAGE",
		"share message is malformed", false)
)

// Backend and internal errors.
var (
	ErrContextInitializationFailed = NewCoreError(
		ErrorCategoryInternal, ErrorSeverityCritical, "CONTEXT_INITIALIZATION_FAILED",
		"curve backend could not be initialized", false)

	ErrRandomnessGeneration = NewCoreError(
		ErrorCategoryCryptographic, ErrorSeverityCritical, "RANDOMNESS_GENERATION_FAILED",
		"failed to generate secure randomness", false)

	ErrInvalidState = NewCoreError(
		ErrorCategoryInternal, ErrorSeverityHigh, "INVALID_STATE",
		"operation not valid in the current session state", false)
)

// WrapError wraps an existing error with core error context.
func WrapError(err error, category ErrorCategory, severity ErrorSeverity, code, message string) *CoreError {
	return NewCoreError(category, severity, code, message, false).WithCause(err)
}

// IsErrorCategory checks whether an error belongs to a specific category.
func IsErrorCategory(err error, category ErrorCategory) bool {
	if coreErr, ok := err.(*CoreError); ok {
		return coreErr.Category == category
	}
	return false
}

// IsRecoverableError reports whether the error permits a retry of the
// operation that produced it.
func IsRecoverableError(err error) bool {
	if coreErr, ok := err.(*CoreError); ok {
		return coreErr.IsRecoverable()
	}
	return false
}
