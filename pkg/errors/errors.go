package errors

import (
	"errors"
	"fmt"
)

// ErrorType discriminates service errors so callers can branch on the
// class of failure without string matching.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeResourceNotFound
	ErrorTypeConflict
	ErrorTypeUnauthorized
	ErrorTypeSetup
	ErrorTypeStageSkipped
)

type ServiceError struct {
	Type    ErrorType
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewResourceNotFoundError(resource, name string) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeResourceNotFound,
		Message: fmt.Sprintf("%s %q not found", resource, name),
	}
}

func NewConflictError(resource, name string) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("%s %q already exists", resource, name),
	}
}

func NewUnauthorizedError() *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeUnauthorized,
		Message: "netbox rejected the API token",
	}
}

// NewSetupError marks failures that must abort the run before any stage
// executes (unreachable database, unreachable API, uncreatable filter target).
func NewSetupError(format string, args ...any) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeSetup,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewStageSkippedError marks a stage that cannot run against this source
// schema (for example a missing optional table). The pipeline logs it and
// proceeds to the next stage.
func NewStageSkippedError(stage, reason string) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeStageSkipped,
		Message: fmt.Sprintf("stage %s skipped: %s", stage, reason),
	}
}

func isType(err error, t ErrorType) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Type == t
	}
	return false
}

func IsResourceNotFoundError(err error) bool { return isType(err, ErrorTypeResourceNotFound) }
func IsConflictError(err error) bool         { return isType(err, ErrorTypeConflict) }
func IsUnauthorizedError(err error) bool     { return isType(err, ErrorTypeUnauthorized) }
func IsSetupError(err error) bool            { return isType(err, ErrorTypeSetup) }
func IsStageSkippedError(err error) bool     { return isType(err, ErrorTypeStageSkipped) }
