package domain

import (
	"errors"
	"fmt"
)

var (
	ErrParse               = errors.New("spreadsheet could not be parsed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUnknownImportKind   = errors.New("unknown import kind")
	ErrResultNotFound      = errors.New("import result not found")
	ErrArchiveDisabled     = errors.New("result archive is not configured")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)

// ParseError aborts an import before any row is validated.
type ParseError struct {
	Reason string
	Err    error
}

// NewParseError builds a ParseError with an optional cause.
func NewParseError(reason string, cause error) *ParseError {
	return &ParseError{Reason: reason, Err: cause}
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParse, e.Err}
	}
	return []error{ErrParse}
}
