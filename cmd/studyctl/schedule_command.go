package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/studyhub-backend/internal/generation"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [kind]",
		Short: "Print the poll backoff table for each artifact kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedules, err := ctx.schedules()
			if err != nil {
				return err
			}
			kinds := generation.Kinds
			if len(args) == 1 {
				k, err := generation.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []generation.Kind{k}
			}
			out := cmd.OutOrStdout()
			for i, k := range kinds {
				if i > 0 {
					fmt.Fprintln(out)
				}
				s := schedules.For(k)
				fmt.Fprintf(out, "%s: %d attempts, gives up after %s\n", k, s.Ceiling(), s.Total())
				fmt.Fprintln(out, renderTable(
					[]string{"Attempts", "Delay", "Elapsed at end"},
					scheduleRows(s),
					[]columnAlignment{alignLeft, alignRight, alignRight},
				))
			}
			return nil
		},
	}
}

// scheduleRows has one row per step with the cumulative wait at its last attempt.
func scheduleRows(s generation.Schedule) [][]string {
	rows := make([][]string, 0, len(s.Steps))
	from := 1
	var elapsed time.Duration
	for _, step := range s.Steps {
		delay := time.Duration(step.DelayMS) * time.Millisecond
		elapsed += delay * time.Duration(step.UpTo-from+1)
		span := strconv.Itoa(from)
		if step.UpTo > from {
			span = fmt.Sprintf("%d-%d", from, step.UpTo)
		}
		rows = append(rows, []string{span, delay.String(), elapsed.String()})
		from = step.UpTo + 1
	}
	return rows
}
