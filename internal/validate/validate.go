// Package validate decides whether a backup is structurally sufficient to
// drive a restore, without performing one.
//
// One orchestration routine consumes the enumeration capability from
// internal/source, so directory and archive backups are judged by exactly
// the same rules. Only presence and non-emptiness of artifacts is checked;
// byte-level payload correctness is out of scope.
package validate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/rotblauer/ValidFlux/internal/classify"
	apperrors "github.com/rotblauer/ValidFlux/internal/errors"
	"github.com/rotblauer/ValidFlux/internal/manifest"
	"github.com/rotblauer/ValidFlux/internal/source"
)

// Status is a single check outcome.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is one entry of the ordered validation report.
type Check struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report is the structured result of one validation run. It is created
// fresh per run, fully populated synchronously, and carries no shared
// state; rendering it is the caller's concern.
type Report struct {
	Source     string           `json:"source"`
	Kind       string           `json:"kind"`
	Checks     []Check          `json:"checks"`
	DirStats   []source.DirStat `json:"data_directories,omitempty"`
	RootPrefix string           `json:"root_prefix,omitempty"`

	DataFiles int    `json:"data_files"`
	DataBytes uint64 `json:"data_bytes"`

	Valid bool `json:"valid"`

	// Failure is the first fatal condition encountered, nil when valid.
	Failure *apperrors.ValidationError `json:"-"`
}

func (r *Report) pass(name, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Status: StatusPass, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) warn(name, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Status: StatusWarn, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) fail(name string, err *apperrors.ValidationError) {
	r.Checks = append(r.Checks, Check{Name: name, Status: StatusFail, Message: err.Message})
	if r.Failure == nil {
		r.Failure = err
	}
}

// Err aggregates every failed check into one error, the typed fatal
// condition first. Returns nil for a passing report.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	var result *multierror.Error
	if r.Failure != nil {
		result = multierror.Append(result, r.Failure)
	}
	for _, c := range r.Checks {
		if c.Status == StatusFail && (r.Failure == nil || c.Message != r.Failure.Message) {
			result = multierror.Append(result, fmt.Errorf("%s: %s", c.Name, c.Message))
		}
	}
	return result.ErrorOrNil()
}

// Run validates the backup behind the given enumerator. Rules apply in a
// fixed order and the first fatal condition short-circuits the rest; there
// is no retry. Zero-byte data files and missing restore-discovery naming
// are warnings only.
func Run(path string, enum source.Enumerator) *Report {
	r := &Report{Source: path}

	e, err := enum.Enumerate()
	if err != nil {
		r.Kind = "unknown"
		r.fail("Source", toValidationError(err))
		return r
	}
	r.Kind = e.Kind.String()
	r.DirStats = e.DirStats
	r.RootPrefix = e.RootPrefix
	r.pass("Source", "%s readable (%d entries)", e.Kind, e.TotalEntries)

	for _, adv := range e.Advisories {
		r.warn("Restore discovery", "%s", adv)
	}

	doc := r.checkManifest(e)
	if r.Failure != nil {
		return r
	}
	if !r.checkMetadata(e) {
		return r
	}
	if !r.checkData(e) {
		return r
	}
	if !r.checkCrossReference(e, doc) {
		return r
	}

	r.Valid = true
	return r
}

// checkManifest locates and parses the manifest, when one exists. An
// absent manifest is only a warning; 2.x backups may omit the "files" key
// entirely and that too is valid.
func (r *Report) checkManifest(e *source.Enumeration) *manifest.Document {
	if e.Manifest == nil {
		r.warn("Manifest", "no manifest file found (optional for some backup types)")
		return nil
	}
	doc, err := manifest.Parse(e.Manifest.Data)
	if err != nil {
		if errors.Is(err, manifest.ErrNotAnObject) {
			r.fail("Manifest", apperrors.ManifestNotAnObject(e.Manifest.Name))
		} else {
			r.fail("Manifest", apperrors.ManifestInvalidJSON(e.Manifest.Name, err))
		}
		return nil
	}
	if doc.HasFiles() {
		r.pass("Manifest", "%s is valid JSON with %d file entries", e.Manifest.Name, len(doc.Files()))
	} else {
		r.pass("Manifest", "%s is valid JSON", e.Manifest.Name)
	}
	return doc
}

// checkMetadata requires at least one metadata artifact, each non-empty.
func (r *Report) checkMetadata(e *source.Enumeration) bool {
	var names []string
	for _, f := range e.Files {
		if !classify.IsMetadata(f.Base) {
			continue
		}
		if f.Size == 0 {
			r.fail("Metadata", apperrors.EmptyMetadata(f.Base))
			return false
		}
		names = append(names, f.Base)
	}
	if len(names) == 0 {
		r.fail("Metadata", apperrors.NoMetadata())
		return false
	}
	r.pass("Metadata", "found: %s", strings.Join(names, ", "))
	return true
}

// checkData requires at least one data-bearing file: files inside database
// subdirectories, top-level shard-pattern files, and for archives any file
// that is neither metadata nor manifest.
func (r *Report) checkData(e *source.Enumeration) bool {
	var empty int

	switch e.Kind {
	case source.KindArchive:
		for _, f := range e.Files {
			if classify.IsMetadataOrManifest(f.Base) {
				continue
			}
			r.DataFiles++
			r.DataBytes += f.Size
			if f.Size == 0 {
				empty++
			}
		}
	default:
		for _, d := range e.DirStats {
			r.DataFiles += d.FileCount
			r.DataBytes += d.TotalBytes
			empty += d.EmptyFiles
		}
		for _, f := range e.Files {
			if !classify.IsShard(f.Base) {
				continue
			}
			r.DataFiles++
			r.DataBytes += f.Size
			if f.Size == 0 {
				empty++
			}
		}
	}

	if r.DataFiles == 0 {
		r.fail("Data files", apperrors.NoDataFiles())
		return false
	}
	r.pass("Data files", "%d data file(s)", r.DataFiles)
	if empty > 0 {
		// valid backups may hold empty measurement shards
		r.warn("Empty data files", "%d empty data file(s)", empty)
	}
	return true
}

// checkCrossReference verifies every manifest-declared file resolves to an
// existing entry. Manifests without a non-empty files list skip this.
func (r *Report) checkCrossReference(e *source.Enumeration, doc *manifest.Document) bool {
	if doc == nil || !doc.HasFiles() || len(doc.Files()) == 0 {
		return true
	}
	missing, found := manifest.CrossReference(doc, e.Names)
	if len(missing) > 0 {
		r.fail("Manifest cross-reference", apperrors.ManifestMissingFiles(missing))
		return false
	}
	r.pass("Manifest cross-reference", "all %d manifest entries have matching files", found)
	return true
}

// toValidationError normalizes an enumeration error into the structured
// taxonomy, wrapping anything untyped as an archive read failure.
func toValidationError(err error) *apperrors.ValidationError {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return apperrors.ArchiveRead("", err)
}

// IsArchivePath reports whether a file name looks like a supported backup
// archive: .tar, .tar.gz, .tgz, .tar.zst, or any name containing ".tar.".
func IsArchivePath(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range []string{".tar", ".tar.gz", ".tgz", ".tar.zst"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return strings.Contains(lower, ".tar.")
}

// ForPath inspects the path and returns the matching enumerator: a
// directory enumerator for directories, an archive enumerator for
// recognized archive names. Unrecognized files are a usage error.
func ForPath(path string) (source.Enumerator, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, apperrors.PathNotFound(path)
	}
	if err != nil {
		return nil, apperrors.PathNotFound(path).WithCause(err)
	}
	if info.IsDir() {
		return source.NewDirectory(path), nil
	}
	if IsArchivePath(path) {
		return source.NewArchive(path), nil
	}
	return nil, apperrors.UnknownFileType(path)
}

// Backup validates the backup at path, dispatching on its representation.
func Backup(path string) *Report {
	enum, err := ForPath(path)
	if err != nil {
		r := &Report{Source: path, Kind: "unknown"}
		r.fail("Source", toValidationError(err))
		return r
	}
	return Run(path, enum)
}
