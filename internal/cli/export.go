package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newExportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the stored activity log to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.svc.Export(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newStatsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show decode statistics of the stored log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Reading the window decodes the whole log, which refreshes the
			// per-shape counts.
			if _, err := s.svc.QueryWindow(cmd.Context(), time.Time{}, time.Time{}); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), s.svc.Stats())
		},
	}
}
