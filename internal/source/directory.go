package source

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/rotblauer/ValidFlux/internal/classify"
	apperrors "github.com/rotblauer/ValidFlux/internal/errors"
)

// Directory enumerates an on-disk backup directory.
type Directory struct {
	fs   afero.Fs
	root string
}

// NewDirectory creates an enumerator over the OS filesystem.
func NewDirectory(root string) *Directory {
	return &Directory{fs: afero.NewOsFs(), root: root}
}

// NewDirectoryFs creates an enumerator over an arbitrary filesystem.
// Tests use an in-memory fs.
func NewDirectoryFs(fsys afero.Fs, root string) *Directory {
	return &Directory{fs: fsys, root: root}
}

// Enumerate walks the backup directory once and returns its contents.
func (d *Directory) Enumerate() (*Enumeration, error) {
	info, err := d.fs.Stat(d.root)
	if os.IsNotExist(err) {
		return nil, apperrors.PathNotFound(d.root)
	}
	if err != nil {
		return nil, apperrors.PathNotFound(d.root).WithCause(err)
	}
	if !info.IsDir() {
		return nil, apperrors.WrongPathKind(d.root, "directory")
	}

	entries, err := afero.ReadDir(d.fs, d.root)
	if err != nil {
		return nil, apperrors.PathNotFound(d.root).WithCause(err)
	}

	enum := &Enumeration{
		Kind:         KindDirectory,
		Names:        make(map[string]struct{}),
		TotalEntries: len(entries),
	}

	var topDirs []string
	for _, e := range entries {
		if e.IsDir() {
			topDirs = append(topDirs, e.Name())
			continue
		}
		enum.Files = append(enum.Files, FileRecord{
			RelPath: e.Name(),
			Base:    e.Name(),
			Size:    uint64(e.Size()),
		})
		enum.Names[e.Name()] = struct{}{}
	}

	// Recursive relative paths for manifest cross-reference.
	walkErr := afero.Walk(d.fs, d.root, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return err
		}
		rel, rerr := filepath.Rel(d.root, path)
		if rerr != nil {
			return rerr
		}
		enum.Names[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if walkErr != nil {
		return nil, apperrors.PathNotFound(d.root).WithCause(walkErr)
	}

	// Per-directory aggregates for every non-internal child directory.
	for _, name := range topDirs {
		if internalDir(name) {
			continue
		}
		stat := DirStat{Name: name}
		dirPath := filepath.Join(d.root, name)
		err := afero.Walk(d.fs, dirPath, func(path string, fi os.FileInfo, err error) error {
			if err != nil || fi.IsDir() {
				return err
			}
			stat.FileCount++
			stat.TotalBytes += uint64(fi.Size())
			if fi.Size() == 0 {
				stat.EmptyFiles++
			}
			return nil
		})
		if err != nil {
			return nil, apperrors.PathNotFound(dirPath).WithCause(err)
		}
		enum.DirStats = append(enum.DirStats, stat)
	}

	if err := d.locateManifest(enum); err != nil {
		return nil, err
	}
	return enum, nil
}

// locateManifest finds the authoritative manifest among the top-level
// files: manifest.json (2.x), then plain manifest (1.x legacy), then the
// first portable *.manifest.
func (d *Directory) locateManifest(enum *Enumeration) error {
	var names []string
	for _, f := range enum.Files {
		names = append(names, f.Base)
	}
	sort.Strings(names)

	pick := ""
	for _, candidate := range []string{"manifest.json", "manifest"} {
		for _, n := range names {
			if n == candidate {
				pick = n
				break
			}
		}
		if pick != "" {
			break
		}
	}
	if pick == "" {
		for _, n := range names {
			if classify.IsManifest(n) {
				pick = n
				break
			}
		}
	}
	if pick == "" {
		return nil
	}

	data, err := afero.ReadFile(d.fs, filepath.Join(d.root, pick))
	if err != nil {
		return apperrors.PathNotFound(filepath.Join(d.root, pick)).WithCause(err)
	}
	enum.Manifest = &ManifestFile{Name: pick, Data: data}
	return nil
}
