package errors

import (
	"fmt"
)

// ValidationError represents input validation errors raised by form setters.
// Field holds the Pay Now wire key (e.g. "p4") the rejected value targeted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// GatewayError represents a failure reported by a Netcash web service.
// Code carries the gateway status code (e.g. "311"); GatewayMessage the
// documented meaning of that code.
type GatewayError struct {
	Code           string
	Message        string
	GatewayMessage string
	IsRetriable    bool
}

func (e *GatewayError) Error() string {
	if e.GatewayMessage != "" {
		return fmt.Sprintf("%s: %s (gateway: %s)", e.Code, e.Message, e.GatewayMessage)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewGatewayError creates a new gateway error
func NewGatewayError(code, message string, retriable bool) *GatewayError {
	return &GatewayError{
		Code:        code,
		Message:     message,
		IsRetriable: retriable,
	}
}

// SOAPFault represents a SOAP fault returned by a Netcash endpoint.
type SOAPFault struct {
	FaultCode   string
	FaultString string
}

func (e *SOAPFault) Error() string {
	return fmt.Sprintf("soap fault [%s]: %s", e.FaultCode, e.FaultString)
}
