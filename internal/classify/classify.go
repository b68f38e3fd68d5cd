// Package classify identifies InfluxDB backup files by name.
//
// Three backup generations are recognized:
//   - 1.x legacy:   meta.00, db.rp.shard.index (e.g. mydb.autogen.00001.00)
//   - 1.x portable: <ts>.manifest, <ts>.meta, <ts>.s<N>.tar.gz
//   - 2.x:          manifest.json, bolt/kv stores, free-form shard payloads
//
// 2.x shard payload names (.tsm, .wal, ...) carry no stable pattern, so data
// files in that generation are classified by exclusion: anything that is
// neither metadata nor a manifest.
package classify

import (
	"path/filepath"
	"regexp"
)

// Kind is a classification bucket. A single name can match more than one
// kind; predicates are tested independently.
type Kind int

const (
	KindUnclassified Kind = iota
	KindMetadata
	KindShard
	KindManifest
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMetadata:
		return "metadata"
	case KindShard:
		return "shard"
	case KindManifest:
		return "manifest"
	default:
		return "data"
	}
}

// rule binds one filename pattern to the kind it indicates.
type rule struct {
	kind    Kind
	pattern *regexp.Regexp
}

// literal names that need no pattern match
var (
	v2BoltNames    = map[string]bool{"bolt": true, "kv": true}
	v2ManifestName = "manifest.json"
	legacyManifest = "manifest"
)

// rules is the static classification table, one entry per format generation
// and artifact type. Patterns anchor on the full base name.
var rules = []rule{
	// 1.x legacy metadata: meta.00, meta.01, ...
	{KindMetadata, regexp.MustCompile(`^meta\.\d+$`)},
	// 1.x portable metadata: timestamp prefix + .meta
	{KindMetadata, regexp.MustCompile(`^.{2,}\.meta$`)},
	// 2.x timestamped bolt store: 20240212T140100Z.bolt
	{KindMetadata, regexp.MustCompile(`^.{2,}\.bolt$`)},

	// 1.x legacy shard: db.retention-policy.shardID.ownerID
	{KindShard, regexp.MustCompile(`^[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.\d+\.\d+$`)},
	// 1.x portable shard archive: <ts>.s<N>.tar.gz
	{KindShard, regexp.MustCompile(`^.+\.s\d+\.tar\.gz$`)},

	// 1.x portable manifest: timestamp prefix + .manifest
	{KindManifest, regexp.MustCompile(`^.{2,}\.manifest$`)},
}

// matches reports whether the base name of path matches any rule of the
// given kind, or one of the literal names for that kind.
func matches(path string, kind Kind) bool {
	base := filepath.Base(path)
	switch kind {
	case KindMetadata:
		if v2BoltNames[base] {
			return true
		}
	case KindManifest:
		if base == v2ManifestName || base == legacyManifest {
			return true
		}
	}
	for _, r := range rules {
		if r.kind == kind && r.pattern.MatchString(base) {
			return true
		}
	}
	return false
}

// IsMetadata reports whether the name is a metadata artifact required for
// restore (1.x meta files, 2.x bolt/kv stores).
func IsMetadata(name string) bool {
	return matches(name, KindMetadata)
}

// IsShard reports whether the name matches a 1.x shard backup pattern.
// 2.x shard payloads do not match; they are detected by exclusion.
func IsShard(name string) bool {
	return matches(name, KindShard)
}

// IsManifest reports whether the name is a backup manifest (any generation).
func IsManifest(name string) bool {
	return matches(name, KindManifest)
}

// IsMetadataOrManifest reports whether the name is backup bookkeeping rather
// than user data. Everything else in a 2.x backup or archive is a data file.
func IsMetadataOrManifest(name string) bool {
	return IsMetadata(name) || IsManifest(name)
}

// Classify returns every kind the name matches, in metadata, shard,
// manifest order. An empty result means the name is unclassified.
func Classify(name string) []Kind {
	var kinds []Kind
	for _, k := range []Kind{KindMetadata, KindShard, KindManifest} {
		if matches(name, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
