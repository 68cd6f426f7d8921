// Package cli implements the syrnia-tracker command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// newRootCmd builds the command tree around s.
func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "syrnia-tracker",
		Short: "Syrnia activity log and aggregation engine",
		Long: `syrnia-tracker keeps the append-only activity log scraped from the game,
derives experience gains from cumulative counters, and summarizes the log by
window, calendar bucket and game week. It also backfills untracked periods
reported by an external reconciler.

Configuration is read from defaults, then the YAML file named by --config or
$SYRNIA_CONFIG, then SYRNIA_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipEngine] == "true" {
				return nil
			}
			return s.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&s.configPath, "config", "", "YAML config file (defaults to $SYRNIA_CONFIG)")
	root.PersistentFlags().StringVar(&s.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit (textfile collector format)")

	root.AddCommand(
		newVersionCmd(),
		newAppendCmd(s),
		newQueryCmd(s),
		newBucketsCmd(s),
		newWeekCmd(s),
		newGapsCmd(s),
		newResolveCmd(s),
		newImportUntrackedCmd(s),
		newExportCmd(s),
		newStatsCmd(s),
	)
	return root
}

const skipEngine = "skip-engine"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipEngine: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "syrnia-tracker %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
		},
	}
}

// Execute runs the command line with args. The engine opened for the
// command is stopped before Execute returns, whether the command failed or
// not.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	s := &session{stderr: stderr}

	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)

	s.close()
	if s.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(s.metricsFile, metrics.GetRegistry()); werr != nil && err == nil {
			err = fmt.Errorf("write metrics: %w", werr)
		}
	}
	return err
}
