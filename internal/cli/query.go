package cli

import (
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/week"
	"github.com/spf13/cobra"
)

type queryResult struct {
	Summary  model.PeriodSummary `json:"summary"`
	Loot     []model.LootEntry   `json:"loot"`
	Produced []model.LootEntry   `json:"produced"`
}

type windowFlags struct {
	from, to string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "window start, RFC3339 or YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&f.to, "to", "", "window end, RFC3339 or YYYY-MM-DD (exclusive)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func newQueryCmd(s *session) *cobra.Command {
	var w windowFlags
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Summarize the log over a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cal := s.svc.Calendar()
			start, err := parseInstant(w.from, cal)
			if err != nil {
				return err
			}
			end, err := parseInstant(w.to, cal)
			if err != nil {
				return err
			}
			summary, err := s.svc.QueryWindow(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), queryResult{
				Summary:  summary,
				Loot:     summary.LootList(),
				Produced: summary.ProducedList(),
			})
		},
	}
	w.register(cmd)
	return cmd
}

func newBucketsCmd(s *session) *cobra.Command {
	var (
		w  windowFlags
		by string
	)
	cmd := &cobra.Command{
		Use:   "buckets",
		Short: "Summarize the log per hour, day, week or month",
		Long: `Split the window into calendar buckets in the configured timezone and
summarize each. Week buckets start on Sunday at 18:00 like the game's weekly
reset. The first and last buckets are clipped to the window.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := week.ParseGranularity(by)
			if err != nil {
				return err
			}
			cal := s.svc.Calendar()
			start, err := parseInstant(w.from, cal)
			if err != nil {
				return err
			}
			end, err := parseInstant(w.to, cal)
			if err != nil {
				return err
			}
			buckets, err := s.svc.QueryBuckets(cmd.Context(), start, end, g)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), buckets)
		},
	}
	w.register(cmd)
	cmd.Flags().StringVar(&by, "by", string(week.Day), "bucket size: hour, day, week or month")
	return cmd
}
