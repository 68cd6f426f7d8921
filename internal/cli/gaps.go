package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/gaps"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type gapView struct {
	Gap           model.Gap   `json:"gap"`
	SuggestedRows []model.Row `json:"suggestedRows"`
}

func newGapsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "gaps",
		Short: "List unresolved untracked gaps with suggested backfill rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			found, err := s.svc.UnresolvedGaps(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]gapView, 0, len(found))
			for _, g := range found {
				views = append(views, gapView{Gap: g, SuggestedRows: gaps.InitialRows(g)})
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}
}

func newResolveCmd(s *session) *cobra.Command {
	var (
		ids      []string
		date     string
		rowsPath string
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Backfill an untracked gap and mark its records resolved",
		Long: `Backfill the gap formed by --ids on --date and mark its records resolved.

Rows are read as a JSON array of {"hour","skill","exp","loot"} from --rows
("-" for stdin). Without --rows the suggested rows of the gap are used, which
spread each skill's exp evenly over the hours it spans.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			day, err := s.svc.Calendar().ParseDate(date)
			if err != nil {
				return err
			}

			var rows []model.Row
			if rowsPath != "" {
				data, err := readInput(rowsPath, cmd.InOrStdin())
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &rows); err != nil {
					return fmt.Errorf("decode rows: %w", err)
				}
			} else if rows, err = suggestedRows(ctx, s, ids); err != nil {
				return err
			}

			if err := s.svc.ResolveGap(ctx, ids, rows, day); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"resolved": ids, "rows": len(rows)})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "record ids of the gap")
	cmd.Flags().StringVar(&date, "date", "", "civil date the backfill lands on (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rowsPath, "rows", "", `JSON rows file, "-" for stdin`)
	_ = cmd.MarkFlagRequired("ids")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

// suggestedRows finds the unresolved gap made of exactly ids.
func suggestedRows(ctx context.Context, s *session, ids []string) ([]model.Row, error) {
	found, err := s.svc.UnresolvedGaps(ctx)
	if err != nil {
		return nil, err
	}
	want := slices.Sorted(slices.Values(ids))
	for _, g := range found {
		if slices.Equal(slices.Sorted(slices.Values(g.RecordIDs)), want) {
			return gaps.InitialRows(g), nil
		}
	}
	return nil, fmt.Errorf("no unresolved gap is made of records %v; pass --rows", ids)
}

func newImportUntrackedCmd(s *session) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "import-untracked",
		Short: "Import untracked records from the external reconciler",
		Long: `Import a JSON array of untracked records:

  [{"id":"..","startUTC":"RFC3339","endUTC":"RFC3339","skill":"..","expGained":0,"durationMs":0}]

A record replaces the stored one with the same id; resolved records stay
resolved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			var records []model.UntrackedRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("decode untracked records: %w", err)
			}
			if err := s.svc.ImportUntracked(cmd.Context(), records); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{"imported": len(records)})
		},
	}
	cmd.Flags().StringVar(&path, "file", "-", `JSON file, "-" for stdin`)
	return cmd
}
