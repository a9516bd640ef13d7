// Package errors defines the categorized error type shared by the
// statement coding pipeline.
//
// Extraction failures are deliberately NOT errors: an unmatched field
// is reported with a sentinel value and processing continues. The only
// conditions modeled as fatal errors here are the ones that abort a
// whole document — the document cannot be opened or decrypted, or the
// OCR collaborator returned zero fragments.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category groups errors by pipeline stage.
type Category string

const (
	CategoryFile     Category = "file"
	CategoryOCR      Category = "ocr"
	CategoryParse    Category = "parse"
	CategoryConfig   Category = "config"
	CategoryCoding   Category = "coding"
	CategoryInternal Category = "internal"
)

// Code identifies a specific failure within a category.
type Code string

const (
	// File errors
	CodeFileNotFound  Code = "file_not_found"
	CodeFileEncrypted Code = "file_encrypted"
	CodeFileCorrupted Code = "file_corrupted"

	// OCR errors
	CodeNoFragments    Code = "no_fragments"
	CodeOCRUnavailable Code = "ocr_unavailable"
	CodeOCRBadResponse Code = "ocr_bad_response"

	// Parse errors
	CodeUnknownIssuer   Code = "unknown_issuer"
	CodeUnknownGLFormat Code = "unknown_gl_format"
	CodeInvalidSheet    Code = "invalid_sheet"

	// Configuration errors
	CodeInvalidConfig Code = "invalid_config"

	// Coding errors
	CodeNoTransactions Code = "no_transactions"
	CodeIndexOutOfRange Code = "index_out_of_range"

	// Internal errors
	CodeUnexpected Code = "unexpected_error"
)

// CoderError is the application error type. It carries a category, a
// code, optional context and the wrapped cause with its stack trace.
type CoderError struct {
	Category   Category          `json:"category"`
	Code       Code              `json:"code"`
	Message    string            `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Error implements the error interface.
func (e *CoderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *CoderError) Unwrap() error {
	return e.Cause
}

// ExitCode maps the category to a process exit code.
func (e *CoderError) ExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryOCR:
		return 3
	case CategoryParse:
		return 4
	case CategoryConfig:
		return 5
	case CategoryCoding, CategoryInternal:
		return 6
	default:
		return 1
	}
}

// WithContext attaches a key-value pair to the error.
func (e *CoderError) WithContext(key string, value interface{}) *CoderError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a CoderError with a fresh stack trace.
func New(category Category, code Code, message string) *CoderError {
	return &CoderError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Newf creates a CoderError with a formatted message.
func Newf(category Category, code Code, format string, args ...interface{}) *CoderError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with category and code.
func Wrap(err error, category Category, code Code, message string) *CoderError {
	if err == nil {
		return nil
	}
	return &CoderError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// FileError reports a document that could not be opened at all.
func FileError(code Code, path string, err error) *CoderError {
	var message string
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
	case CodeFileEncrypted:
		message = fmt.Sprintf("file could not be decrypted: %s", path)
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
	default:
		message = fmt.Sprintf("file error: %s", path)
	}

	result := Wrap(err, CategoryFile, code, message)
	if result == nil {
		result = New(CategoryFile, code, message)
	}
	return result.WithContext("file_path", path)
}

// OCRError reports a failed interaction with the OCR collaborator.
func OCRError(code Code, detail string, err error) *CoderError {
	var message string
	switch code {
	case CodeNoFragments:
		message = fmt.Sprintf("OCR returned zero text fragments for %s", detail)
	case CodeOCRUnavailable:
		message = fmt.Sprintf("OCR service unavailable: %s", detail)
	case CodeOCRBadResponse:
		message = fmt.Sprintf("OCR response could not be decoded: %s", detail)
	default:
		message = fmt.Sprintf("OCR error: %s", detail)
	}

	result := Wrap(err, CategoryOCR, code, message)
	if result == nil {
		result = New(CategoryOCR, code, message)
	}
	return result.WithContext("detail", detail)
}

// IsCoderError reports whether err is a CoderError.
func IsCoderError(err error) bool {
	_, ok := err.(*CoderError)
	return ok
}

// AsCoderError extracts a CoderError from an error chain.
func AsCoderError(err error) (*CoderError, bool) {
	var coderErr *CoderError
	if errors.As(err, &coderErr) {
		return coderErr, true
	}
	return nil, false
}
