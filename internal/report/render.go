// Package report renders validation reports for human and machine
// consumers. The validator returns data; all printing lives here.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rotblauer/ValidFlux/internal/logger"
	"github.com/rotblauer/ValidFlux/internal/validate"
)

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, r *validate.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// RenderText writes the report as a human-readable check list with a
// summary verdict.
func RenderText(w io.Writer, r *validate.Report) {
	fmt.Fprintf(w, "Validating backup %s: %s\n", r.Kind, r.Source)
	fmt.Fprintln(w, strings.Repeat("=", 72))

	for _, c := range r.Checks {
		fmt.Fprintf(w, "  %s %-26s %s\n", statusMark(c.Status), c.Name, c.Message)
	}

	if r.RootPrefix != "" {
		fmt.Fprintf(w, "\n  Archive root directory: %s/\n", r.RootPrefix)
	}

	if len(r.DirStats) > 0 {
		fmt.Fprintf(w, "\n  Data directories: %d\n", len(r.DirStats))
		for _, d := range r.DirStats {
			line := fmt.Sprintf("    - %s: %d files, %s", d.Name, d.FileCount, humanize.Bytes(d.TotalBytes))
			if d.EmptyFiles > 0 {
				line += fmt.Sprintf(" (%d empty)", d.EmptyFiles)
			}
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintf(w, "\n  Total data files: %d\n", r.DataFiles)
	fmt.Fprintf(w, "  Total size: %s\n", humanize.Bytes(r.DataBytes))

	fmt.Fprintln(w, strings.Repeat("=", 72))
	if r.Valid {
		fmt.Fprintf(w, "%s backup validation passed — ready for restore\n", logger.Green("[OK]"))
	} else {
		fmt.Fprintf(w, "%s backup validation failed\n", logger.Red("[FAIL]"))
		if r.Failure != nil {
			fmt.Fprintf(w, "\n%s\n", r.Failure.Error())
		}
	}
}

func statusMark(s validate.Status) string {
	switch s {
	case validate.StatusPass:
		return logger.Green("✓")
	case validate.StatusWarn:
		return logger.Yellow("⚠")
	default:
		return logger.Red("✗")
	}
}
