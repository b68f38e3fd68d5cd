package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	apperrors "github.com/rotblauer/ValidFlux/internal/errors"
	"github.com/rotblauer/ValidFlux/internal/logger"
	"github.com/rotblauer/ValidFlux/internal/source"
	"github.com/rotblauer/ValidFlux/internal/validate"
)

func passingReport() *validate.Report {
	return &validate.Report{
		Source: "/backups/b",
		Kind:   "directory",
		Checks: []validate.Check{
			{Name: "Source", Status: validate.StatusPass, Message: "directory readable (4 entries)"},
			{Name: "Metadata", Status: validate.StatusPass, Message: "found: meta.00"},
			{Name: "Data files", Status: validate.StatusPass, Message: "2 data file(s)"},
		},
		DirStats:  []source.DirStat{{Name: "mydb", FileCount: 2, TotalBytes: 4096, EmptyFiles: 1}},
		DataFiles: 2,
		DataBytes: 4096,
		Valid:     true,
	}
}

func TestRenderText_Pass(t *testing.T) {
	logger.DisableColors()

	var buf bytes.Buffer
	RenderText(&buf, passingReport())
	out := buf.String()

	for _, want := range []string{
		"Validating backup directory: /backups/b",
		"✓",
		"found: meta.00",
		"mydb: 2 files",
		"(1 empty)",
		"Total data files: 2",
		"[OK] backup validation passed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderText_Fail(t *testing.T) {
	logger.DisableColors()

	r := &validate.Report{
		Source: "/backups/b.tar.gz",
		Kind:   "archive",
		Checks: []validate.Check{
			{Name: "Source", Status: validate.StatusPass, Message: "archive readable (3 entries)"},
			{Name: "Manifest cross-reference", Status: validate.StatusFail, Message: "1 file(s) listed in manifest are missing from backup"},
		},
		RootPrefix: "influxdb_backup_20240101_120000",
		Failure:    apperrors.ManifestMissingFiles([]string{"1234/000000001.tsm"}),
	}

	var buf bytes.Buffer
	RenderText(&buf, r)
	out := buf.String()

	for _, want := range []string{
		"✗",
		"Archive root directory: influxdb_backup_20240101_120000/",
		"[FAIL] backup validation failed",
		"1234/000000001.tsm",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, passingReport()); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Source    string `json:"source"`
		Kind      string `json:"kind"`
		Valid     bool   `json:"valid"`
		DataFiles int    `json:"data_files"`
		Checks    []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Source != "/backups/b" || decoded.Kind != "directory" || !decoded.Valid {
		t.Errorf("unexpected decode: %+v", decoded)
	}
	if len(decoded.Checks) != 3 || decoded.Checks[0].Status != "pass" {
		t.Errorf("unexpected checks: %+v", decoded.Checks)
	}
}
