// Package errors provides structured error types for sneakerdb.
// All errors include a category, code, and message for consistent
// handling across the store, search, and snapshot layers.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryCatalog    ErrorCategory = "CATALOG"
	ErrCategorySearch     ErrorCategory = "SEARCH"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeInvalidReleaseYear = "INVALID_RELEASE_YEAR"
	CodeEmptySKU           = "EMPTY_SKU"
	CodeEmptyName          = "EMPTY_NAME"
	CodeEmptyQuery         = "EMPTY_QUERY"

	// Catalog codes
	CodeNotFound     = "NOT_FOUND"
	CodeDuplicateKey = "DUPLICATE_KEY"
	CodeForeignKey   = "FOREIGN_KEY"

	// Search codes
	CodeQuerySyntax    = "QUERY_SYNTAX"
	CodeIndexCorrupted = "INDEX_CORRUPTED"

	// Storage codes
	CodeSnapshotFailed = "SNAPSHOT_FAILED"
	CodeRestoreFailed  = "RESTORE_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// CatalogError is the structured error type used throughout sneakerdb.
type CatalogError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *CatalogError) Is(target error) bool {
	var t *CatalogError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new CatalogError.
func New(category ErrorCategory, code, message string) *CatalogError {
	return &CatalogError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new CatalogError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *CatalogError {
	return &CatalogError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *CatalogError) WithDetails(details map[string]interface{}) *CatalogError {
	cp := *e
	cp.Details = details
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a CatalogError.
func GetCategory(err error) ErrorCategory {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a CatalogError.
func GetCode(err error) string {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsNotFound reports whether err is a missing-key lookup failure.
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}

// IsDuplicateKey reports whether err is a primary-key conflict.
func IsDuplicateKey(err error) bool {
	return GetCode(err) == CodeDuplicateKey
}

// IsForeignKey reports whether err is a referential-integrity violation.
func IsForeignKey(err error) bool {
	return GetCode(err) == CodeForeignKey
}

// Convenience constructors for common errors.

func NewNotFoundError(message string) *CatalogError {
	return New(ErrCategoryCatalog, CodeNotFound, message)
}

func NewDuplicateKeyError(message string) *CatalogError {
	return New(ErrCategoryCatalog, CodeDuplicateKey, message)
}

func NewForeignKeyError(message string) *CatalogError {
	return New(ErrCategoryCatalog, CodeForeignKey, message)
}

func NewValidationError(code, message string) *CatalogError {
	return New(ErrCategoryValidation, code, message)
}

func NewSearchError(code, message string, cause error) *CatalogError {
	return Wrap(ErrCategorySearch, code, message, cause)
}

func NewStorageError(code, message string, cause error) *CatalogError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewInternalError(message string, cause error) *CatalogError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
