package app

import (
	"fmt"
	"os"

	"market-lens/internal/snapshot"
)

// Compare prints the structured delta between today's snapshot and the most
// recent earlier one.
func (a *App) Compare(opts CompareOptions) error {
	history, closeHistory, err := a.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	recent := history.Range(opts.Days)
	var curr *snapshot.DailySnapshot
	if len(recent) > 0 {
		curr = &recent[0]
	}
	prev := history.Yesterday()

	delta := snapshot.Compare(prev, curr)

	fmt.Fprintln(os.Stdout, delta.Summary)
	for _, change := range delta.Changes {
		from, to := change.From, change.To
		if from == "" {
			from = "n/a"
		}
		if to == "" {
			to = "n/a"
		}
		fmt.Fprintf(os.Stdout, "  %s: %s -> %s\n", change.Label, from, to)
	}
	return nil
}
