package reconciler

import (
	"regexp"
	"strings"

	"assetimport/internal/domain"
)

type errorMatcher struct {
	code     domain.ErrorCode
	patterns []string
}

// errorMatchers map server error text onto the taxonomy. First match wins.
var errorMatchers = []errorMatcher{
	{domain.CodeDuplicateInBatch, []string{
		"duplicated in this batch", "duplicated in batch", "duplicate in this batch", "duplicate in batch",
	}},
	{domain.CodeAlreadyExists, []string{"already exists", "already exist", "duplicate"}},
	{domain.CodeReferentialMiss, []string{"does not exist", "doesn't exist", "not found"}},
	{domain.CodeMissingRequired, []string{"is required", "cannot be empty", "must not be empty", "field required"}},
	{domain.CodeTooLong, []string{"maximum length", "too long", "exceeds"}},
	{domain.CodeInvalidCharacters, []string{"invalid character", "contains invalid"}},
}

// emptyMainCategoryDuplicate is the server's false positive for two rows that
// both leave the main category blank.
var emptyMainCategoryDuplicate = regexp.MustCompile(`(?i)category\s+''\s+is\s+duplicated`)

// TranslateError maps one server error string onto the taxonomy. Unrecognized
// text becomes CodeUnknown.
func TranslateError(msg string) domain.ErrorCode {
	lower := strings.ToLower(msg)
	for _, m := range errorMatchers {
		for _, p := range m.patterns {
			if strings.Contains(lower, p) {
				return m.code
			}
		}
	}
	return domain.CodeUnknown
}

// TranslateErrors combines several server errors for one item. The first
// recognized code wins and messages are joined verbatim.
func TranslateErrors(msgs []string) (domain.ErrorCode, string) {
	if len(msgs) == 0 {
		return domain.CodeUnknown, "Rejected by server"
	}
	code := domain.CodeUnknown
	for _, m := range msgs {
		if c := TranslateError(m); c != domain.CodeUnknown {
			code = c
			break
		}
	}
	return code, strings.Join(msgs, "; ")
}

func onlyEmptyMainCategoryDuplicates(msgs []string) bool {
	if len(msgs) == 0 {
		return false
	}
	for _, m := range msgs {
		if !emptyMainCategoryDuplicate.MatchString(m) {
			return false
		}
	}
	return true
}
