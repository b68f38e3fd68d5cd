package source

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"

	"github.com/rotblauer/ValidFlux/internal/classify"
	apperrors "github.com/rotblauer/ValidFlux/internal/errors"
)

// restoreDirGlob is the directory naming pattern the companion restore
// tooling discovers backups by. An archive without such a directory is
// still valid, but gets an advisory.
const restoreDirGlob = "influxdb_backup_*"

// compression magic bytes
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Archive enumerates a backup packed as a tar archive, uncompressed or
// compressed with gzip or zstd. Compression is detected from content, not
// from the file extension.
type Archive struct {
	path string
}

// NewArchive creates an enumerator for the archive at path.
func NewArchive(path string) *Archive {
	return &Archive{path: path}
}

// member is one raw tar entry, captured during the single read pass.
type member struct {
	name  string
	size  uint64
	isDir bool
}

// Enumerate reads the archive once and returns its contents. The archive
// handle is released on every exit path.
func (a *Archive) Enumerate() (*Enumeration, error) {
	info, err := os.Stat(a.path)
	if os.IsNotExist(err) {
		return nil, apperrors.PathNotFound(a.path)
	}
	if err != nil {
		return nil, apperrors.PathNotFound(a.path).WithCause(err)
	}
	if info.IsDir() {
		return nil, apperrors.WrongPathKind(a.path, "file")
	}

	file, err := os.Open(a.path)
	if err != nil {
		return nil, apperrors.ArchiveRead(a.path, err)
	}
	defer file.Close()

	reader, closer, err := a.decompress(file)
	if err != nil {
		return nil, apperrors.ArchiveRead(a.path, err)
	}
	if closer != nil {
		defer closer()
	}

	members, manifests, err := a.readMembers(reader)
	if err != nil {
		return nil, apperrors.ArchiveRead(a.path, err)
	}

	return a.assemble(members, manifests), nil
}

// decompress wraps the file in the matching decompression reader based on
// its leading magic bytes. Plain tar streams pass through untouched.
func (a *Archive) decompress(file *os.File) (io.Reader, func(), error) {
	magic := make([]byte, 4)
	n, err := io.ReadFull(file, magic)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}
	magic = magic[:n]

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := pgzip.NewReader(file)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { gz.Close() }, nil
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(file)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	default:
		return file, nil, nil
	}
}

// readMembers performs the single pass over the tar stream, capturing
// member headers and buffering the bytes of every manifest candidate so a
// second pass is never needed.
func (a *Archive) readMembers(r io.Reader) ([]member, map[string][]byte, error) {
	tr := tar.NewReader(r)
	var members []member
	manifests := make(map[string][]byte)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("invalid tar stream: %w", err)
		}

		m := member{
			name:  hdr.Name,
			size:  uint64(hdr.Size),
			isDir: hdr.Typeflag == tar.TypeDir,
		}
		members = append(members, m)

		if hdr.Typeflag == tar.TypeReg && classify.IsManifest(path.Base(strings.TrimSuffix(hdr.Name, "/"))) {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, nil, fmt.Errorf("reading manifest member %s: %w", hdr.Name, err)
			}
			manifests[hdr.Name] = data
		}
	}
	if len(members) == 0 {
		return nil, nil, fmt.Errorf("archive contains no tar entries")
	}
	return members, manifests, nil
}

// assemble post-processes the captured members: root-prefix detection,
// logical relative paths, the alias name set, per-directory aggregates,
// and the restore-discovery advisory.
func (a *Archive) assemble(members []member, manifests map[string][]byte) *Enumeration {
	enum := &Enumeration{
		Kind:         KindArchive,
		Names:        make(map[string]struct{}),
		TotalEntries: len(members),
	}
	enum.RootPrefix = detectRootPrefix(members)

	rel := func(name string) string {
		if enum.RootPrefix != "" && strings.HasPrefix(name, enum.RootPrefix+"/") {
			return name[len(enum.RootPrefix)+1:]
		}
		return name
	}

	dirStats := make(map[string]*DirStat)
	var dirOrder []string

	for _, m := range members {
		if m.isDir {
			continue
		}
		logical := rel(m.name)
		base := path.Base(logical)
		enum.Files = append(enum.Files, FileRecord{
			RelPath: logical,
			Base:    base,
			Size:    m.size,
		})

		// every alias a manifest entry may be stated by
		enum.Names[m.name] = struct{}{}
		enum.Names[base] = struct{}{}
		enum.Names[logical] = struct{}{}

		// aggregate files living under a top-level data directory
		if i := strings.IndexByte(logical, '/'); i > 0 {
			top := logical[:i]
			if !internalDir(top) {
				stat, ok := dirStats[top]
				if !ok {
					stat = &DirStat{Name: top}
					dirStats[top] = stat
					dirOrder = append(dirOrder, top)
				}
				stat.FileCount++
				stat.TotalBytes += m.size
				if m.size == 0 {
					stat.EmptyFiles++
				}
			}
		}
	}

	sort.Strings(dirOrder)
	for _, name := range dirOrder {
		enum.DirStats = append(enum.DirStats, *dirStats[name])
	}

	a.locateManifest(enum, members, manifests, rel)

	if !hasRestoreDir(members, enum.RootPrefix) {
		enum.Advisories = append(enum.Advisories, fmt.Sprintf(
			"no %s directory found in archive (restore tooling may not locate this backup)", restoreDirGlob))
	}
	return enum
}

// locateManifest picks the authoritative manifest among the buffered
// candidates: manifest.json, then plain manifest, then the first portable
// *.manifest in member order.
func (a *Archive) locateManifest(enum *Enumeration, members []member, manifests map[string][]byte, rel func(string) string) {
	pick := ""
	for _, want := range []string{"manifest.json", "manifest"} {
		for _, m := range members {
			if _, ok := manifests[m.name]; ok && path.Base(rel(m.name)) == want {
				pick = m.name
				break
			}
		}
		if pick != "" {
			break
		}
	}
	if pick == "" {
		for _, m := range members {
			if _, ok := manifests[m.name]; ok {
				pick = m.name
				break
			}
		}
	}
	if pick != "" {
		enum.Manifest = &ManifestFile{Name: rel(pick), Data: manifests[pick]}
	}
}

// detectRootPrefix finds the single top-level directory every member is
// nested under, as produced by archiving a backup directory with tar. It
// returns "" when members disagree on their first path segment or any
// member sits outside the candidate root.
func detectRootPrefix(members []member) string {
	topDirs := make(map[string]struct{})
	for _, m := range members {
		name := strings.TrimSuffix(m.name, "/")
		if i := strings.IndexByte(name, '/'); i > 0 {
			topDirs[name[:i]] = struct{}{}
		}
	}
	if len(topDirs) != 1 {
		return ""
	}
	var prefix string
	for p := range topDirs {
		prefix = p
	}
	for _, m := range members {
		name := strings.TrimSuffix(m.name, "/")
		if name != prefix && !strings.HasPrefix(m.name, prefix+"/") {
			return ""
		}
	}
	return prefix
}

// hasRestoreDir reports whether any directory member (or the detected root
// prefix itself) matches the restore tooling's discovery glob.
func hasRestoreDir(members []member, prefix string) bool {
	for _, m := range members {
		if !m.isDir {
			continue
		}
		base := path.Base(strings.TrimSuffix(m.name, "/"))
		if ok, _ := path.Match(restoreDirGlob, base); ok {
			return true
		}
	}
	if prefix != "" {
		if ok, _ := path.Match(restoreDirGlob, prefix); ok {
			return true
		}
	}
	return false
}
