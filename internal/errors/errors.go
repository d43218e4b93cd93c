// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrAssetClassMismatch = errors.New("holding does not belong to asset class")
	ErrUnknownAssetClass  = errors.New("unknown asset class")
	ErrUnknownTable       = errors.New("unknown table")
	ErrPriceUnavailable   = errors.New("price unavailable")
	ErrCircuitOpen        = errors.New("circuit breaker is open")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrDatabaseError      = errors.New("database error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSyncNotConfigured  = errors.New("remote sync not configured")
	ErrInputValidation    = errors.New("input validation failed")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match any validation failure with ErrInputValidation.
func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// FetchError represents a failed price fetch for a single lookup key.
type FetchError struct {
	Source string
	Key    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("fetch error [%s]: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("fetch error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(source, key string, err error) *FetchError {
	return &FetchError{
		Source: source,
		Key:    key,
		Err:    err,
	}
}

// StoreError represents a failed record store operation.
type StoreError struct {
	Op    string
	Class string
	Index int
	Err   error
}

func (e *StoreError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("store error [%s] %s[%d]: %v", e.Op, e.Class, e.Index, e.Err)
	}
	return fmt.Sprintf("store error [%s] %s: %v", e.Op, e.Class, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError. Use index -1 when the
// operation is not positional.
func NewStoreError(op, class string, index int, err error) *StoreError {
	return &StoreError{
		Op:    op,
		Class: class,
		Index: index,
		Err:   err,
	}
}

// SyncError represents a remote sync failure.
type SyncError struct {
	Remote     string
	StatusCode int
	Err        error
}

func (e *SyncError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sync error [%s] http %d: %v", e.Remote, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("sync error [%s]: %v", e.Remote, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError creates a new SyncError.
func NewSyncError(remote string, statusCode int, err error) *SyncError {
	return &SyncError{
		Remote:     remote,
		StatusCode: statusCode,
		Err:        err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
