package domain

import (
	"fmt"
	"strings"
)

// ImportKind identifies one of the bulk import flows.
type ImportKind string

const (
	ImportKindCategories   ImportKind = "categories"
	ImportKindAssets       ImportKind = "assets"
	ImportKindAssetUpdates ImportKind = "asset-updates"
)

// ImportKinds lists every supported flow in display order.
var ImportKinds = []ImportKind{ImportKindCategories, ImportKindAssets, ImportKindAssetUpdates}

// FileStem returns the kind in a form safe for file names.
func (k ImportKind) FileStem() string {
	return strings.ReplaceAll(string(k), "-", "_")
}

// ParseImportKind maps a user-supplied name onto an ImportKind.
func ParseImportKind(s string) (ImportKind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, k := range ImportKinds {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownImportKind, s)
}

// FileType represents the allowed spreadsheet types for upload.
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
)

// AllowedContentTypes maps MIME content types to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FileTypeXLSX,
	"application/vnd.ms-excel": FileTypeXLS,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"xlsx": FileTypeXLSX,
	"xls":  FileTypeXLS,
}

// ErrorCode is the canonical rejection taxonomy shared by local validation
// and server response translation.
type ErrorCode string

const (
	CodeMissingRequired   ErrorCode = "missing_required"
	CodeTooLong           ErrorCode = "too_long"
	CodeInvalidCharacters ErrorCode = "invalid_characters"
	CodeDuplicateInBatch  ErrorCode = "duplicate_in_batch"
	CodeAlreadyExists     ErrorCode = "already_exists"
	CodeReferentialMiss   ErrorCode = "referential_miss"
	CodeServerError       ErrorCode = "server_error"
	CodeUnknown           ErrorCode = "unknown"
)

// ErrorCodes lists the taxonomy in report order.
var ErrorCodes = []ErrorCode{
	CodeMissingRequired,
	CodeTooLong,
	CodeInvalidCharacters,
	CodeDuplicateInBatch,
	CodeAlreadyExists,
	CodeReferentialMiss,
	CodeServerError,
	CodeUnknown,
}

var errorCodeMarkers = map[ErrorCode]string{
	CodeMissingRequired:   "⚠",
	CodeTooLong:           "📏",
	CodeInvalidCharacters: "🚫",
	CodeDuplicateInBatch:  "🔁",
	CodeAlreadyExists:     "📋",
	CodeReferentialMiss:   "🔗",
	CodeServerError:       "🔥",
	CodeUnknown:           "❌",
}

var errorCodeLabels = map[ErrorCode]string{
	CodeMissingRequired:   "Missing Required",
	CodeTooLong:           "Too Long",
	CodeInvalidCharacters: "Invalid Characters",
	CodeDuplicateInBatch:  "Duplicate In Batch",
	CodeAlreadyExists:     "Already Exists",
	CodeReferentialMiss:   "Referential Miss",
	CodeServerError:       "Server Error",
	CodeUnknown:           "Unknown",
}

// Marker returns the glyph shown in front of user-visible messages.
func (c ErrorCode) Marker() string {
	if m, ok := errorCodeMarkers[c]; ok {
		return m
	}
	return errorCodeMarkers[CodeUnknown]
}

// Label returns a human-readable name for the code.
func (c ErrorCode) Label() string {
	if l, ok := errorCodeLabels[c]; ok {
		return l
	}
	return errorCodeLabels[CodeUnknown]
}

// RejectionSource records which pipeline stage rejected a row.
type RejectionSource string

const (
	SourceLocal  RejectionSource = "local"
	SourceRemote RejectionSource = "remote"
)
