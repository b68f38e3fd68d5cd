package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rotblauer/ValidFlux/internal/classify"
	"github.com/rotblauer/ValidFlux/internal/manifest"
	"github.com/rotblauer/ValidFlux/internal/validate"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "List and classify the contents of a backup",
	Long: `Inspect a backup directory or archive without judging it.

Every enumerated file is listed with its classification (metadata, shard,
manifest, or data) and size, followed by per-directory aggregates and a
manifest summary. Useful for understanding what a validate failure is
looking at.

Examples:
  validflux inspect /var/backups/influxdb_backup_20240101_120000
  validflux inspect backup.tar.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	enum, err := validate.ForPath(path)
	if err != nil {
		return err
	}
	e, err := enum.Enumerate()
	if err != nil {
		return err
	}

	fmt.Printf("Backup %s: %s\n", e.Kind, path)
	if e.RootPrefix != "" {
		fmt.Printf("Archive root directory: %s/\n", e.RootPrefix)
	}
	fmt.Println(strings.Repeat("-", 72))

	files := make([]string, 0, len(e.Files))
	byPath := make(map[string]uint64, len(e.Files))
	for _, f := range e.Files {
		files = append(files, f.RelPath)
		byPath[f.RelPath] = f.Size
	}
	sort.Strings(files)

	for _, rel := range files {
		fmt.Printf("  %-10s %10s  %s\n", kindLabel(rel), humanize.Bytes(byPath[rel]), rel)
	}

	if len(e.DirStats) > 0 {
		fmt.Printf("\nData directories:\n")
		for _, d := range e.DirStats {
			fmt.Printf("  - %s: %d files, %s\n", d.Name, d.FileCount, humanize.Bytes(d.TotalBytes))
		}
	}

	if e.Manifest != nil {
		fmt.Printf("\nManifest: %s\n", e.Manifest.Name)
		if doc, err := manifest.Parse(e.Manifest.Data); err != nil {
			fmt.Printf("  (unparseable: %v)\n", err)
		} else if doc.HasFiles() {
			fmt.Printf("  %d file entries\n", len(doc.Files()))
		}
	}

	for _, adv := range e.Advisories {
		fmt.Fprintf(os.Stderr, "note: %s\n", adv)
	}
	return nil
}

// kindLabel names the first matching classification for display, falling
// back to "data" for residually-classified files.
func kindLabel(name string) string {
	kinds := classify.Classify(name)
	if len(kinds) == 0 {
		return classify.KindUnclassified.String()
	}
	labels := make([]string, len(kinds))
	for i, k := range kinds {
		labels[i] = k.String()
	}
	return strings.Join(labels, ",")
}
