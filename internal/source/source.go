// Package source enumerates backup contents from either of the two
// representations a backup arrives in: an on-disk directory or a tar
// archive (optionally gzip- or zstd-compressed).
//
// Both enumerators produce the same Enumeration value, so the validation
// rules are applied by one routine regardless of where the backup came
// from and cannot drift between the two paths.
package source

// Kind identifies the backup representation that was enumerated.
type Kind int

const (
	KindDirectory Kind = iota
	KindArchive
)

// String returns the human-readable source kind.
func (k Kind) String() string {
	if k == KindArchive {
		return "archive"
	}
	return "directory"
}

// FileRecord describes one enumerated file. Records are transient: they are
// produced by an enumeration pass and only read by the validator.
type FileRecord struct {
	RelPath string // path relative to the backup root (prefix-stripped for archives)
	Base    string // base name, used for classification
	Size    uint64
	IsDir   bool
}

// DirStat aggregates one immediate child directory of the backup root.
// Internal directories (leading underscore, or literally "manifest") are
// not aggregated.
type DirStat struct {
	Name       string
	FileCount  int
	TotalBytes uint64
	EmptyFiles int
}

// ManifestFile is a located manifest: its name and raw bytes, ready for
// parsing. At most one manifest is authoritative per backup.
type ManifestFile struct {
	Name string
	Data []byte
}

// Enumeration is the complete result of one pass over a backup source.
//
// Files holds the classification candidates: for a directory source the
// immediate children of the root, for an archive every regular file member
// (shard payloads may sit in subdirectories there).
type Enumeration struct {
	Kind  Kind
	Files []FileRecord

	// Names contains every alias a manifest entry may resolve by: relative
	// paths, and for archives also raw member names and bare basenames.
	Names map[string]struct{}

	DirStats []DirStat
	Manifest *ManifestFile

	// RootPrefix is the single wrapping directory all archive members were
	// nested under, empty when none was detected. Always empty for
	// directory sources.
	RootPrefix string

	// Advisories are non-fatal observations; they never fail a validation.
	Advisories []string

	// TotalEntries counts raw entries seen (archive members including
	// directories, or top-level directory entries).
	TotalEntries int
}

// Enumerator is the single enumeration capability both backup
// representations implement.
type Enumerator interface {
	Enumerate() (*Enumeration, error)
}

// internalDir reports whether a directory name is backup-internal
// bookkeeping rather than a database data directory.
func internalDir(name string) bool {
	return len(name) > 0 && (name[0] == '_' || name == "manifest")
}
