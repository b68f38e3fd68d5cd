// Package manifest parses backup manifest documents and cross-references
// their declared file lists against the files a backup actually contains.
//
// Both 1.x manifests (top-level "files" list of strings) and 2.x
// manifest.json ("files" list of objects with a fileName key) are supported.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Parse failure sentinels, matchable with errors.Is.
var (
	ErrInvalidJSON = errors.New("manifest is not valid JSON")
	ErrNotAnObject = errors.New("manifest is not a JSON object")
)

// FileRef is one manifest-declared file, normalized from whichever entry
// shape the manifest used.
type FileRef struct {
	Name string
}

// Document is a parsed manifest. The raw object is retained so callers can
// report entry counts; unknown top-level keys are ignored.
type Document struct {
	raw map[string]any
}

// Parse decodes manifest bytes into a Document.
// A missing "files" key is valid: 2.x manifests may omit it.
func Parse(data []byte) (*Document, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotAnObject
	}
	return &Document{raw: obj}, nil
}

// HasFiles reports whether the manifest declares a "files" list at all.
func (d *Document) HasFiles() bool {
	_, ok := d.raw["files"]
	return ok
}

// Files returns the declared file references in manifest order.
// Entries may be bare strings or objects carrying "fileName" (preferred)
// or "filename" (legacy casing); other shapes normalize to an empty name.
func (d *Document) Files() []FileRef {
	list, ok := d.raw["files"].([]any)
	if !ok {
		return nil
	}
	refs := make([]FileRef, 0, len(list))
	for _, entry := range list {
		refs = append(refs, FileRef{Name: refName(entry)})
	}
	return refs
}

// refName extracts the file name from one manifest entry.
func refName(entry any) string {
	switch e := entry.(type) {
	case string:
		return e
	case map[string]any:
		if s, ok := e["fileName"].(string); ok {
			return s
		}
		if s, ok := e["filename"].(string); ok {
			return s
		}
		return ""
	default:
		return ""
	}
}

// CrossReference checks every declared file against the set of names known
// to exist. Empty reference names are skipped; they count as neither found
// nor missing. The lookup is exact set membership, so existing must already
// contain every alias a reference may be stated by (relative path, bare
// basename).
func CrossReference(d *Document, existing map[string]struct{}) (missing []string, found int) {
	for _, ref := range d.Files() {
		if ref.Name == "" {
			continue
		}
		if _, ok := existing[ref.Name]; ok {
			found++
		} else {
			missing = append(missing, ref.Name)
		}
	}
	return missing, found
}
