// Package errors provides standardized error handling for BPMN workflow integration
// and HTTP responses.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Request validation
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidField ErrorCode = "INVALID_FIELD"

	// Entity resolution
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeLookupFailed ErrorCode = "LOOKUP_FAILED"

	// Template assembly
	ErrCodeIncompleteTemplateData ErrorCode = "INCOMPLETE_TEMPLATE_DATA"
	ErrCodeTemplateNotFound       ErrorCode = "TEMPLATE_NOT_FOUND"

	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Retryable  bool                   `json:"retryable"`
	HTTPStatus int                    `json:"httpStatus"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Field returns the request or template field the error refers to, if any.
func (e *StandardError) Field() string {
	if v, ok := e.Metadata["field"].(string); ok {
		return v
	}
	return ""
}

// Entity returns the entity name for NOT_FOUND and LOOKUP_FAILED errors.
func (e *StandardError) Entity() string {
	if v, ok := e.Metadata["entity"].(string); ok {
		return v
	}
	return ""
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewMissingFieldError reports a mandatory request field that is absent.
func NewMissingFieldError(field string) *StandardError {
	return &StandardError{
		Code:       ErrCodeMissingField,
		Message:    fmt.Sprintf("Empty %s", field),
		Details:    fmt.Sprintf("field: %s", field),
		Retryable:  false,
		HTTPStatus: http.StatusBadRequest,
		Metadata:   map[string]interface{}{"field": field},
		Timestamp:  time.Now().UTC(),
	}
}

// NewInvalidFieldError reports a request field of the wrong type or format.
func NewInvalidFieldError(field, details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeInvalidField,
		Message:    fmt.Sprintf("Invalid %s", field),
		Details:    details,
		Retryable:  false,
		HTTPStatus: http.StatusBadRequest,
		Metadata:   map[string]interface{}{"field": field},
		Timestamp:  time.Now().UTC(),
	}
}

// NewNotFoundError reports a seller or client that does not resolve.
func NewNotFoundError(entity string) *StandardError {
	return &StandardError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found!", entity),
		Details:    fmt.Sprintf("entity: %s", entity),
		Retryable:  false,
		HTTPStatus: http.StatusBadRequest,
		Metadata:   map[string]interface{}{"entity": entity},
		Timestamp:  time.Now().UTC(),
	}
}

// NewMissingEmployeeError reports an employee reference that does not resolve.
// Employees are expected to always exist, so this is a server-side fault.
func NewMissingEmployeeError(employeeID int) *StandardError {
	return &StandardError{
		Code:       ErrCodeNotFound,
		Message:    "Employee not found!",
		Details:    fmt.Sprintf("employeeId: %d", employeeID),
		Retryable:  false,
		HTTPStatus: http.StatusInternalServerError,
		Metadata:   map[string]interface{}{"entity": "Employee"},
		Timestamp:  time.Now().UTC(),
	}
}

// NewLookupFailedError wraps a store failure while resolving an entity.
func NewLookupFailedError(entity string, err error) *StandardError {
	return &StandardError{
		Code:       ErrCodeLookupFailed,
		Message:    fmt.Sprintf("%s lookup failed", entity),
		Details:    err.Error(),
		Retryable:  true,
		HTTPStatus: http.StatusInternalServerError,
		Metadata:   map[string]interface{}{"entity": entity},
		Timestamp:  time.Now().UTC(),
	}
}

// NewIncompleteTemplateDataError reports an empty template context value.
func NewIncompleteTemplateDataError(field string) *StandardError {
	return &StandardError{
		Code:       ErrCodeIncompleteTemplateData,
		Message:    fmt.Sprintf("Template Data (%s) is empty!", field),
		Details:    fmt.Sprintf("field: %s", field),
		Retryable:  false,
		HTTPStatus: http.StatusInternalServerError,
		Metadata:   map[string]interface{}{"field": field},
		Timestamp:  time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateKey string) *StandardError {
	return &StandardError{
		Code:       ErrCodeTemplateNotFound,
		Message:    "Template not found in registry",
		Details:    fmt.Sprintf("templateKey: %s", templateKey),
		Retryable:  false,
		HTTPStatus: http.StatusInternalServerError,
		Metadata:   map[string]interface{}{"field": templateKey},
		Timestamp:  time.Now().UTC(),
	}
}

// NewInputParsingFailedError reports job variables or a request body that is not JSON.
func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:       ErrCodeInputParsingFailed,
		Message:    "Failed to parse input",
		Details:    err.Error(),
		Retryable:  false,
		HTTPStatus: http.StatusBadRequest,
		Timestamp:  time.Now().UTC(),
	}
}

// ==========================
// 4. Inspection Helpers
// ==========================

// AsStandard unwraps err into a *StandardError if one is in the chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// HTTPStatusOf returns the HTTP status that should be reported for err.
func HTTPStatusOf(err error) int {
	if stdErr, ok := AsStandard(err); ok && stdErr.HTTPStatus != 0 {
		return stdErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Is reports whether err is a StandardError with the given code.
func Is(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// ==========================
// 5. BPMN Mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMissingField:           "RETURN_NOTIFY_MISSING_FIELD",
	ErrCodeInvalidField:           "RETURN_NOTIFY_INVALID_FIELD",
	ErrCodeNotFound:               "RETURN_NOTIFY_NOT_FOUND",
	ErrCodeLookupFailed:           "RETURN_NOTIFY_LOOKUP_FAILED",
	ErrCodeIncompleteTemplateData: "RETURN_NOTIFY_INCOMPLETE_TEMPLATE_DATA",
	ErrCodeTemplateNotFound:       "RETURN_NOTIFY_TEMPLATE_NOT_FOUND",
	ErrCodeInputParsingFailed:     "RETURN_NOTIFY_PARSE_ERROR",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLookupFailed:
		return 3
	default:
		return 0 // Business errors: no retry
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"httpStatus":        stdErr.HTTPStatus,
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if field := stdErr.Field(); field != "" {
		vars["field"] = field
	}
	if entity := stdErr.Entity(); entity != "" {
		vars["entity"] = entity
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "LOOKUP") || strings.Contains(codeStr, "NOT_FOUND"):
		return "ENTITY"
	case strings.Contains(codeStr, "FIELD") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
