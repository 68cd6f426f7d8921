package cli

import (
	"errors"
	"strings"

	service "github.com/ParkerM2/Syrnia-Tracker-sub000/internal/app"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/quoted"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/record"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
	"github.com/spf13/cobra"
)

type appendResult struct {
	Appended  int              `json:"appended"`
	Skipped   int              `json:"skipped"`
	GainedExp map[string]int64 `json:"gainedExp"`
}

func newAppendCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "append [row...]",
		Short: "Append extracted activity rows to the log",
		Long: `Append one or more comma-delimited activity rows to the log.

Rows are taken from the arguments, or from stdin when none are given. Any
record layout the log has ever used is accepted; header lines are skipped.
Rows carrying a cumulative totalExp get their gainedExp derived from the
stored baseline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			if len(args) > 0 {
				for _, a := range args {
					rows = append(rows, quoted.ParseLine(a))
				}
			} else {
				data, err := readInput("-", cmd.InOrStdin())
				if err != nil {
					return err
				}
				rows = quoted.ParseRecords(string(data))
			}

			ctx := cmd.Context()
			res := appendResult{GainedExp: map[string]int64{}}
			for _, fields := range rows {
				if record.IsHeader(fields) {
					continue
				}
				e, err := s.svc.AppendCandidate(ctx, fields)
				if errors.Is(err, service.ErrMalformedRecord) {
					res.Skipped++
					logger.Get().Warn(ctx, "skipping row", logger.String("row", strings.Join(fields, ",")), logger.Error(err))
					continue
				}
				if err != nil {
					return err
				}
				res.Appended++
				if e.GainedExp > 0 {
					res.GainedExp[e.Skill] += e.GainedExp
				}
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}
