package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/rotblauer/ValidFlux/internal/report"
	"github.com/rotblauer/ValidFlux/internal/validate"
)

// ErrValidationFailed signals a failed run after the report has already
// been rendered; main maps it to exit code 1 without re-printing details.
var ErrValidationFailed = errors.New("backup validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a backup directory or archive",
	Long: `Validate an InfluxDB backup for restore readiness.

The path may be a backup directory or a tar archive (.tar, .tar.gz, .tgz,
.tar.zst). The backup is checked for:
  - a non-empty metadata artifact (meta.NN, *.meta, bolt/kv)
  - at least one data-bearing file (shards, database directories)
  - a parseable manifest, when one is present
  - every manifest-declared file existing in the backup

Exit code is 0 when the backup passes, 1 otherwise.

Examples:
  # Validate a backup directory
  validflux validate /var/backups/influxdb_backup_20240101_120000

  # Validate an archived backup
  validflux validate /var/backups/influxdb_backup_20240101.tar.gz

  # JSON output for automation
  validflux validate --format json /var/backups/backup.tar`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var (
	validateFormat string
	validateQuiet  bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFormat, "format", "", "Output format (table, json)")
	validateCmd.Flags().BoolVarP(&validateQuiet, "quiet", "q", false, "Suppress report output, exit code only")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	format := validateFormat
	if format == "" {
		format = cfg.OutputFormat
	}

	log.Debug("validating backup", "path", path)
	result := validate.Backup(path)

	if !validateQuiet {
		if format == "json" {
			if err := report.RenderJSON(os.Stdout, result); err != nil {
				return err
			}
		} else {
			report.RenderText(os.Stdout, result)
		}
	}

	if !result.Valid {
		log.Debug("validation failed", "path", path, "error", result.Err())
		return ErrValidationFailed
	}
	return nil
}
