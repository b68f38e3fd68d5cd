// Package exitcode maps validation outcomes to process exit codes.
//
// validflux deliberately collapses every failure to 1: shell wrappers and CI
// jobs branch on pass/fail only, and the structured report carries the
// detail that sysexits-style codes would otherwise encode.
package exitcode

const (
	// Success - backup validated, ready for restore
	Success = 0

	// Failure - validation failed, usage error, or I/O error
	Failure = 1
)

// FromError returns the exit code for a command result.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	return Failure
}

// FromVerdict returns the exit code for a validation verdict.
func FromVerdict(valid bool) int {
	if valid {
		return Success
	}
	return Failure
}
