package validate

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"

	apperrors "github.com/rotblauer/ValidFlux/internal/errors"
)

// writeBackupDir materializes files under a fresh backup directory.
func writeBackupDir(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "backup")
	for rel, data := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// writeBackupArchive builds a tar.gz with the files, optionally nesting
// everything under a wrapping root directory.
func writeBackupArchive(t *testing.T, wrap string, files map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	if wrap != "" {
		if err := tw.WriteHeader(&tar.Header{Name: wrap + "/", Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
			t.Fatal(err)
		}
	}
	for rel, data := range files {
		name := rel
		if wrap != "" {
			name = wrap + "/" + rel
		}
		hdr := &tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(data))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "backup.tar.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz := pgzip.NewWriter(f)
	if _, err := gz.Write(buf.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func failureCode(t *testing.T, r *Report) apperrors.ErrorCode {
	t.Helper()
	if r.Failure == nil {
		t.Fatal("report has no failure")
	}
	return r.Failure.Code
}

// legacyBackup is the minimal passing 1.x layout: a 64-byte metadata
// placeholder and a 128-byte shard file.
func legacyBackup() map[string][]byte {
	return map[string][]byte{
		"meta.00":               make([]byte, 64),
		"mydb.autogen.00001.00": make([]byte, 128),
	}
}

func TestValidate_LegacyDirectoryPasses(t *testing.T) {
	root := writeBackupDir(t, legacyBackup())
	r := Backup(root)
	if !r.Valid {
		t.Fatalf("expected pass, got %v", r.Err())
	}
	if r.DataFiles != 1 {
		t.Errorf("data files = %d, want 1", r.DataFiles)
	}
}

func TestValidate_PortableDirectoryPasses(t *testing.T) {
	root := writeBackupDir(t, map[string][]byte{
		"20240101T120000Z.manifest": []byte(`{"files": ["20240101T120000Z.meta", "20240101T120000Z.s1.tar.gz"]}`),
		"20240101T120000Z.meta":     make([]byte, 64),
		"20240101T120000Z.s1.tar.gz": make([]byte, 256),
	})
	r := Backup(root)
	if !r.Valid {
		t.Fatalf("expected pass, got %v", r.Err())
	}
}

func TestValidate_MissingMetadata(t *testing.T) {
	root := writeBackupDir(t, map[string][]byte{
		"mydb.autogen.00001.00": make([]byte, 128),
	})
	r := Backup(root)
	if r.Valid {
		t.Fatal("expected failure")
	}
	if failureCode(t, r) != apperrors.ErrCodeNoMetadata {
		t.Errorf("failure = %v, want NoMetadata", r.Failure)
	}
}

func TestValidate_EmptyMetadata(t *testing.T) {
	files := legacyBackup()
	files["meta.00"] = []byte{}
	r := Backup(writeBackupDir(t, files))
	if r.Valid {
		t.Fatal("expected failure")
	}
	if failureCode(t, r) != apperrors.ErrCodeEmptyMetadata {
		t.Errorf("failure = %v, want EmptyMetadata", r.Failure)
	}
}

func TestValidate_NoDataFiles(t *testing.T) {
	root := writeBackupDir(t, map[string][]byte{
		"meta.00": make([]byte, 64),
	})
	r := Backup(root)
	if r.Valid {
		t.Fatal("expected failure")
	}
	if failureCode(t, r) != apperrors.ErrCodeNoDataFiles {
		t.Errorf("failure = %v, want NoDataFiles", r.Failure)
	}
}

func TestValidate_V2DirectoryCrossReference(t *testing.T) {
	files := map[string][]byte{
		"manifest.json":      []byte(`{"files": [{"fileName": "bolt"}, {"fileName": "1234/000000001.tsm"}]}`),
		"bolt":               make([]byte, 256),
		"1234/000000001.tsm": make([]byte, 512),
	}
	r := Backup(writeBackupDir(t, files))
	if !r.Valid {
		t.Fatalf("expected pass, got %v", r.Err())
	}

	// remove the shard from disk, keep the manifest entry
	delete(files, "1234/000000001.tsm")
	files["1234/other.tsm"] = make([]byte, 16) // keep data presence satisfied
	r = Backup(writeBackupDir(t, files))
	if r.Valid {
		t.Fatal("expected failure")
	}
	if failureCode(t, r) != apperrors.ErrCodeManifestMissing {
		t.Fatalf("failure = %v, want ManifestCrossReferenceMissing", r.Failure)
	}
	if len(r.Failure.Missing) != 1 || r.Failure.Missing[0] != "1234/000000001.tsm" {
		t.Errorf("missing = %v, want [1234/000000001.tsm]", r.Failure.Missing)
	}
}

func TestValidate_ManifestEntryShapesEquivalent(t *testing.T) {
	for _, entry := range []string{`"bolt"`, `{"fileName": "bolt"}`, `{"filename": "bolt"}`} {
		files := map[string][]byte{
			"manifest.json": []byte(`{"files": [` + entry + `]}`),
			"bolt":          make([]byte, 256),
			"1234/f.tsm":    make([]byte, 16),
		}
		r := Backup(writeBackupDir(t, files))
		if !r.Valid {
			t.Errorf("entry %s: expected pass, got %v", entry, r.Err())
		}
	}
}

func TestValidate_InvalidManifestJSON(t *testing.T) {
	files := legacyBackup()
	files["manifest"] = []byte(`{broken`)
	r := Backup(writeBackupDir(t, files))
	if r.Valid {
		t.Fatal("expected failure")
	}
	if failureCode(t, r) != apperrors.ErrCodeManifestInvalidJSON {
		t.Errorf("failure = %v, want ManifestInvalidJSON", r.Failure)
	}
}

func TestValidate_ManifestNotAnObject(t *testing.T) {
	files := legacyBackup()
	files["manifest.json"] = []byte(`["just", "a", "list"]`)
	r := Backup(writeBackupDir(t, files))
	if r.Valid {
		t.Fatal("expected failure")
	}
	if failureCode(t, r) != apperrors.ErrCodeManifestNotAnObject {
		t.Errorf("failure = %v, want ManifestNotAnObject", r.Failure)
	}
}

func TestValidate_ManifestWithoutFilesKeyIsFine(t *testing.T) {
	files := map[string][]byte{
		"manifest.json": []byte(`{"manifestVersion": 2}`),
		"bolt":          make([]byte, 256),
		"1234/f.tsm":    make([]byte, 16),
	}
	r := Backup(writeBackupDir(t, files))
	if !r.Valid {
		t.Fatalf("expected pass, got %v", r.Err())
	}
}

func TestValidate_ConcreteScenarioSteps(t *testing.T) {
	// pass, then degrade the backup one step at a time
	r := Backup(writeBackupDir(t, legacyBackup()))
	if !r.Valid {
		t.Fatalf("baseline: expected pass, got %v", r.Err())
	}

	noMeta := map[string][]byte{"mydb.autogen.00001.00": make([]byte, 128)}
	if r := Backup(writeBackupDir(t, noMeta)); failureCode(t, r) != apperrors.ErrCodeNoMetadata {
		t.Errorf("no meta: failure = %v", r.Failure)
	}

	emptyMeta := map[string][]byte{
		"meta.00":               {},
		"mydb.autogen.00001.00": make([]byte, 128),
	}
	if r := Backup(writeBackupDir(t, emptyMeta)); failureCode(t, r) != apperrors.ErrCodeEmptyMetadata {
		t.Errorf("empty meta: failure = %v", r.Failure)
	}

	onlyMeta := map[string][]byte{"meta.00": make([]byte, 64)}
	if r := Backup(writeBackupDir(t, onlyMeta)); failureCode(t, r) != apperrors.ErrCodeNoDataFiles {
		t.Errorf("only meta: failure = %v", r.Failure)
	}
}

func TestValidate_ArchiveFlatAndWrappedAgree(t *testing.T) {
	files := map[string][]byte{
		"manifest.json":      []byte(`{"files": [{"fileName": "bolt"}, {"fileName": "1234/000000001.tsm"}]}`),
		"bolt":               make([]byte, 256),
		"1234/000000001.tsm": make([]byte, 512),
	}

	flat := Backup(writeBackupArchive(t, "", files))
	wrapped := Backup(writeBackupArchive(t, "influxdb_backup_20240101_120000", files))

	if !flat.Valid {
		t.Errorf("flat archive: expected pass, got %v", flat.Err())
	}
	if !wrapped.Valid {
		t.Errorf("wrapped archive: expected pass, got %v", wrapped.Err())
	}
	if flat.DataFiles != wrapped.DataFiles {
		t.Errorf("data files disagree: flat %d, wrapped %d", flat.DataFiles, wrapped.DataFiles)
	}
	if wrapped.RootPrefix != "influxdb_backup_20240101_120000" {
		t.Errorf("root prefix = %q", wrapped.RootPrefix)
	}
}

func TestValidate_ArchiveAdvisoryDoesNotFail(t *testing.T) {
	files := map[string][]byte{
		"meta.00":               make([]byte, 64),
		"mydb.autogen.00001.00": make([]byte, 128),
	}
	r := Backup(writeBackupArchive(t, "my_custom_backup_name", files))
	if !r.Valid {
		t.Fatalf("expected pass, got %v", r.Err())
	}
	warned := false
	for _, c := range r.Checks {
		if c.Status == StatusWarn && c.Name == "Restore discovery" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a restore discovery advisory")
	}
}

func TestValidate_ArchiveMissingMetadata(t *testing.T) {
	files := map[string][]byte{"1234/000000001.tsm": make([]byte, 512)}
	r := Backup(writeBackupArchive(t, "influxdb_backup_x", files))
	if failureCode(t, r) != apperrors.ErrCodeNoMetadata {
		t.Errorf("failure = %v, want NoMetadata", r.Failure)
	}
}

func TestValidate_ArchiveEmptyMetadata(t *testing.T) {
	files := map[string][]byte{
		"bolt":               {},
		"1234/000000001.tsm": make([]byte, 512),
	}
	r := Backup(writeBackupArchive(t, "influxdb_backup_x", files))
	if failureCode(t, r) != apperrors.ErrCodeEmptyMetadata {
		t.Errorf("failure = %v, want EmptyMetadata", r.Failure)
	}
}

func TestValidate_ArchiveCrossReferenceAliases(t *testing.T) {
	// manifest references by prefix-stripped path; members carry the prefix
	files := map[string][]byte{
		"manifest.json":      []byte(`{"files": [{"fileName": "bolt"}, {"fileName": "1234/000000001.tsm"}]}`),
		"bolt":               make([]byte, 256),
		"1234/000000001.tsm": make([]byte, 512),
	}
	r := Backup(writeBackupArchive(t, "influxdb_backup_20240101_120000", files))
	if !r.Valid {
		t.Fatalf("expected pass, got %v", r.Err())
	}
}

func TestValidate_ArchiveNotATar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.tar")
	if err := os.WriteFile(path, []byte("plain text, not a tar"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := Backup(path)
	if r.Valid {
		t.Fatal("expected failure")
	}
	if failureCode(t, r) != apperrors.ErrCodeArchiveRead {
		t.Errorf("failure = %v, want ArchiveRead", r.Failure)
	}
}

func TestValidate_PathDispatch(t *testing.T) {
	if r := Backup(filepath.Join(t.TempDir(), "nope")); failureCode(t, r) != apperrors.ErrCodePathNotFound {
		t.Errorf("missing path: failure = %v", r.Failure)
	}

	odd := filepath.Join(t.TempDir(), "backup.zip")
	if err := os.WriteFile(odd, []byte("zip?"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := Backup(odd); failureCode(t, r) != apperrors.ErrCodeUnknownFileType {
		t.Errorf("unknown type: failure = %v", r.Failure)
	}
}

func TestValidate_EmptyDataFilesWarnOnly(t *testing.T) {
	files := map[string][]byte{
		"meta.00":               make([]byte, 64),
		"mydb.autogen.00001.00": make([]byte, 128),
		"mydb/autogen/1/empty":  {},
	}
	r := Backup(writeBackupDir(t, files))
	if !r.Valid {
		t.Fatalf("expected pass, got %v", r.Err())
	}
	warned := false
	for _, c := range r.Checks {
		if c.Name == "Empty data files" && c.Status == StatusWarn {
			warned = true
		}
	}
	if !warned {
		t.Error("expected empty data file warning")
	}
}

func TestIsArchivePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"backup.tar", true},
		{"backup.tar.gz", true},
		{"backup.tgz", true},
		{"backup.tar.zst", true},
		{"backup.tar.bz2", true}, // dot-dot matching
		{"backup.zip", false},
		{"backup.sql", false},
		{"tarball", false},
	}
	for _, tt := range tests {
		if got := IsArchivePath(tt.path); got != tt.want {
			t.Errorf("IsArchivePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
