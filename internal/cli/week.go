package cli

import (
	"github.com/spf13/cobra"
)

func newWeekCmd(s *session) *cobra.Command {
	var (
		key   string
		all   bool
		reset bool
	)
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show or update weekly summaries",
		Long: `Without flags, compute the current game week's summary and store it.

--key summarizes the week starting on that Sunday without storing it, --all
lists the stored weekly rows and --reset removes them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			switch {
			case reset:
				if err := s.svc.ResetWeekSummaries(ctx); err != nil {
					return err
				}
				return writeJSON(out, map[string]bool{"reset": true})
			case all:
				rows, err := s.svc.WeekSummaries(ctx)
				if err != nil {
					return err
				}
				return writeJSON(out, rows)
			case key != "":
				ws, err := s.svc.SummarizeWeek(ctx, key)
				if err != nil {
					return err
				}
				return writeJSON(out, ws)
			default:
				ws, err := s.svc.CurrentWeekSummary(ctx)
				if err != nil {
					return err
				}
				return writeJSON(out, ws)
			}
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "week key (YYYY-MM-DD of the opening Sunday)")
	cmd.Flags().BoolVar(&all, "all", false, "list stored weekly rows")
	cmd.Flags().BoolVar(&reset, "reset", false, "remove stored weekly rows")
	cmd.MarkFlagsMutuallyExclusive("key", "all", "reset")
	return cmd
}
