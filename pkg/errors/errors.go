// Package errors provides custom error types for the kardex system.
// These errors enable programmatic error checking and keep expected
// business conditions (missing active custodian, read-only sessions,
// closed areas) as typed return values rather than panics.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the kardex system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrActiveCustodianRequired indicates that an assignment was attempted
	// without an active custodian selected for the session
	ErrActiveCustodianRequired = errors.New("active custodian required")

	// ErrReadOnly indicates an attempt to modify a finalized, read-only session
	ErrReadOnly = errors.New("read only")

	// ErrAreaClosed indicates an operation on an administratively closed area
	ErrAreaClosed = errors.New("area closed")

	// ErrConfirmationRequired indicates that an operation needs an explicit
	// confirmation from the caller before it is retried
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrInvalidBackupFormat indicates a backup archive whose manifest is
	// missing or unparsable
	ErrInvalidBackupFormat = errors.New("invalid backup format")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfirmationRequiredError signals that a custody transfer needs an
// explicit confirmation before it is retried. It carries the custodian
// currently holding the item so callers can present a meaningful prompt.
type ConfirmationRequiredError struct {
	ItemKey          string
	CurrentCustodian string
	NewCustodian     string
}

// Error implements the error interface
func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("item %s is assigned to %s; confirmation required to reassign to %s",
		e.ItemKey, e.CurrentCustodian, e.NewCustodian)
}

// Is implements errors.Is support
func (e *ConfirmationRequiredError) Is(target error) bool {
	return target == ErrConfirmationRequired
}

// BackupFormatError represents a backup archive that cannot be restored
// because its manifest is missing or corrupt. This is fatal for the
// restore: no partial write happens once it is raised.
type BackupFormatError struct {
	Entry   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *BackupFormatError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("invalid backup format (%s): %s", e.Entry, e.Message)
	}
	return fmt.Sprintf("invalid backup format: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *BackupFormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *BackupFormatError) Is(target error) bool {
	return target == ErrInvalidBackupFormat
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "yaml", "zip", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "update", "delete", "restore"
	Resource  string // "item", "custodian", "snapshot", "asset"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsReadOnly checks if an error is a read-only violation
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrReadOnly)
}

// IsConfirmationRequired checks if an error is a confirmation-required condition
func IsConfirmationRequired(err error) bool {
	return errors.Is(err, ErrConfirmationRequired)
}

// IsInvalidBackupFormat checks if an error is a backup format error
func IsInvalidBackupFormat(err error) bool {
	return errors.Is(err, ErrInvalidBackupFormat)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}
