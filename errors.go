package bridge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for common failure conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrMalformedTerm indicates an IR term that failed structural validation.
	ErrMalformedTerm = errors.New("malformed term")

	// ErrMalformedFact indicates a fact atom that failed validation.
	ErrMalformedFact = errors.New("malformed fact")

	// ErrDivergence indicates beta-reduction exhausted its fuel budget.
	ErrDivergence = errors.New("reduction diverged")

	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLensFailed indicates a lens adapter returned an error instead of a
	// raw payload. The underlying error should be wrapped for context.
	ErrLensFailed = errors.New("lens failed")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindExecution represents errors that occur during canonicalization
	// or comparison.
	KindExecution = "execution"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindNetwork represents errors related to queue or registry transport.
	KindNetwork = "network"

	// KindTimeout represents errors related to operation timeouts.
	KindTimeout = "timeout"

	// KindInternal represents internal engine errors.
	KindInternal = "internal"
)

// BridgeError is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of
// error.
//
// BridgeError implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
//
// Example usage:
//
//	err := &BridgeError{
//		Op:   "Engine.Canonicalize",
//		Kind: KindValidation,
//		Err:  ErrMalformedTerm,
//	}
type BridgeError struct {
	// Op is the operation that failed (e.g., "Engine.Canonicalize").
	Op string

	// Kind categorizes the error (e.g., KindValidation, KindExecution).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional).
	// This can include term paths, fact keys, or other debugging information.
	Context map[string]any
}

// Error implements the error interface, returning a formatted error message
// that includes the operation, kind, and underlying error.
func (e *BridgeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("bridge: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("bridge: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("bridge: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// Is implements error matching for BridgeError, allowing comparison based on
// the underlying error or the BridgeError itself.
func (e *BridgeError) Is(target error) bool {
	if target == nil {
		return false
	}

	// Check if target is a BridgeError with matching Kind
	if t, ok := target.(*BridgeError); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	// Delegate to underlying error
	return errors.Is(e.Err, target)
}

// WithContext returns a new BridgeError with the provided context added.
// This is useful for adding debugging information to errors.
func (e *BridgeError) WithContext(ctx map[string]any) *BridgeError {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewValidationError creates a new BridgeError with KindValidation.
func NewValidationError(op string, err error) *BridgeError {
	return &BridgeError{
		Op:   op,
		Kind: KindValidation,
		Err:  err,
	}
}

// NewExecutionError creates a new BridgeError with KindExecution.
func NewExecutionError(op string, err error) *BridgeError {
	return &BridgeError{
		Op:   op,
		Kind: KindExecution,
		Err:  err,
	}
}

// NewConfigurationError creates a new BridgeError with KindConfiguration.
func NewConfigurationError(op string, err error) *BridgeError {
	return &BridgeError{
		Op:   op,
		Kind: KindConfiguration,
		Err:  err,
	}
}

// NewNetworkError creates a new BridgeError with KindNetwork.
func NewNetworkError(op string, err error) *BridgeError {
	return &BridgeError{
		Op:   op,
		Kind: KindNetwork,
		Err:  err,
	}
}

// NewTimeoutError creates a new BridgeError with KindTimeout.
func NewTimeoutError(op string, err error) *BridgeError {
	return &BridgeError{
		Op:   op,
		Kind: KindTimeout,
		Err:  err,
	}
}

// NewInternalError creates a new BridgeError with KindInternal.
func NewInternalError(op string, err error) *BridgeError {
	return &BridgeError{
		Op:   op,
		Kind: KindInternal,
		Err:  err,
	}
}

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. This is intended for use in defer statements so cleanup
// errors are not silently ignored.
//
// The name parameter should describe the resource being closed (e.g.,
// "redis client", "etcd session"). If logger is nil, slog.Default() is used.
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
