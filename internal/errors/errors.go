// Package errors provides structured error types for validflux
// with error codes, categories, and remediation guidance
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error codes for validflux
// Format: VALIDFLUX-<CATEGORY><NUMBER>
// Categories: P=Path, A=Archive, M=Manifest, D=Data, U=Usage
const (
	// Path errors (wrong input location)
	ErrCodePathNotFound  ErrorCode = "VALIDFLUX-P001"
	ErrCodeWrongPathKind ErrorCode = "VALIDFLUX-P002"

	// Archive errors (unreadable input)
	ErrCodeArchiveRead ErrorCode = "VALIDFLUX-A001"

	// Manifest errors (malformed bookkeeping)
	ErrCodeManifestInvalidJSON ErrorCode = "VALIDFLUX-M001"
	ErrCodeManifestNotAnObject ErrorCode = "VALIDFLUX-M002"

	// Data errors (backup cannot drive a restore)
	ErrCodeNoMetadata      ErrorCode = "VALIDFLUX-D001"
	ErrCodeEmptyMetadata   ErrorCode = "VALIDFLUX-D002"
	ErrCodeNoDataFiles     ErrorCode = "VALIDFLUX-D003"
	ErrCodeManifestMissing ErrorCode = "VALIDFLUX-D004"

	// Usage errors (CLI level)
	ErrCodeUnknownFileType ErrorCode = "VALIDFLUX-U001"
)

// Category represents error categories
type Category string

const (
	CategoryPath     Category = "path"
	CategoryArchive  Category = "archive"
	CategoryManifest Category = "manifest"
	CategoryData     Category = "data"
	CategoryUsage    Category = "usage"
)

// ValidationError is a structured error with code, category, and remediation.
// Every validation failure is terminal for its run; none are retried.
type ValidationError struct {
	Code        ErrorCode
	Category    Category
	Message     string
	Details     string
	Remediation string
	Missing     []string // populated for ErrCodeManifestMissing
	Cause       error
}

// Error implements error interface
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += fmt.Sprintf(": %s", e.Details)
	}
	if len(e.Missing) > 0 {
		msg += fmt.Sprintf("\n\nMissing files:\n  %s", strings.Join(e.Missing, "\n  "))
	}
	if e.Remediation != "" {
		msg += fmt.Sprintf("\n\nTo fix:\n  %s", e.Remediation)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for error comparison by code
func (e *ValidationError) Is(target error) bool {
	if t, ok := target.(*ValidationError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetails adds details to an error
func (e *ValidationError) WithDetails(details string) *ValidationError {
	e.Details = details
	return e
}

// WithCause adds an underlying cause
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.Cause = cause
	return e
}

// Constructors for the validation failure taxonomy

// PathNotFound reports a backup path that does not exist
func PathNotFound(path string) *ValidationError {
	return &ValidationError{
		Code:     ErrCodePathNotFound,
		Category: CategoryPath,
		Message:  "backup path does not exist",
		Details:  path,
	}
}

// WrongPathKind reports a path of the wrong kind (file where a directory
// was expected, or the reverse)
func WrongPathKind(path, expected string) *ValidationError {
	return &ValidationError{
		Code:     ErrCodeWrongPathKind,
		Category: CategoryPath,
		Message:  fmt.Sprintf("path is not a %s", expected),
		Details:  path,
	}
}

// ArchiveRead reports an unreadable or corrupt tar stream
func ArchiveRead(path string, cause error) *ValidationError {
	return &ValidationError{
		Code:        ErrCodeArchiveRead,
		Category:    CategoryArchive,
		Message:     "cannot read backup archive as tar",
		Details:     path,
		Cause:       cause,
		Remediation: "Verify the file is a tar, tar.gz, or tar.zst archive and re-transfer it if truncated.",
	}
}

// ManifestInvalidJSON reports a manifest that does not parse as JSON
func ManifestInvalidJSON(name string, cause error) *ValidationError {
	return &ValidationError{
		Code:        ErrCodeManifestInvalidJSON,
		Category:    CategoryManifest,
		Message:     "manifest contains invalid JSON",
		Details:     name,
		Cause:       cause,
		Remediation: "The backup was likely interrupted while the manifest was written. Take a fresh backup.",
	}
}

// ManifestNotAnObject reports a manifest whose top-level value is not an object
func ManifestNotAnObject(name string) *ValidationError {
	return &ValidationError{
		Code:     ErrCodeManifestNotAnObject,
		Category: CategoryManifest,
		Message:  "manifest is not a JSON object",
		Details:  name,
	}
}

// NoMetadata reports a backup with no metadata artifact at all
func NoMetadata() *ValidationError {
	return &ValidationError{
		Code:        ErrCodeNoMetadata,
		Category:    CategoryData,
		Message:     "no metadata file found (required for restore)",
		Remediation: "A restorable backup needs meta.NN, *.meta, or a bolt/kv store. Re-run the backup.",
	}
}

// EmptyMetadata reports a zero-length metadata artifact
func EmptyMetadata(name string) *ValidationError {
	return &ValidationError{
		Code:        ErrCodeEmptyMetadata,
		Category:    CategoryData,
		Message:     "metadata file is empty",
		Details:     name,
		Remediation: "An empty metadata file cannot drive a restore. Re-run the backup.",
	}
}

// NoDataFiles reports a backup carrying metadata but no payload data
func NoDataFiles() *ValidationError {
	return &ValidationError{
		Code:        ErrCodeNoDataFiles,
		Category:    CategoryData,
		Message:     "no data files found in backup",
		Remediation: "The backup holds no shard or database data. Check that the source had data to back up.",
	}
}

// ManifestMissingFiles reports manifest entries with no matching file
func ManifestMissingFiles(missing []string) *ValidationError {
	return &ValidationError{
		Code:        ErrCodeManifestMissing,
		Category:    CategoryData,
		Message:     fmt.Sprintf("%d file(s) listed in manifest are missing from backup", len(missing)),
		Missing:     missing,
		Remediation: "The backup transfer is incomplete. Re-copy the backup or take a fresh one.",
	}
}

// UnknownFileType reports a CLI path with an unrecognized extension
func UnknownFileType(path string) *ValidationError {
	return &ValidationError{
		Code:        ErrCodeUnknownFileType,
		Category:    CategoryUsage,
		Message:     "unknown file type",
		Details:     path,
		Remediation: "Expected a directory or a .tar, .tar.gz, .tgz, or .tar.zst file.",
	}
}

// GetCode returns the error code if available
func GetCode(err error) ErrorCode {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Code
	}
	return ""
}

// GetCategory returns the error category if available
func GetCategory(err error) Category {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Category
	}
	return ""
}
