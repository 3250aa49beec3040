package app

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Show prints recent snapshots.
func (a *App) Show(opts ShowOptions) error {
	history, closeHistory, err := a.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	snapshots := history.Range(opts.Days)
	if len(snapshots) == 0 {
		fmt.Fprintln(os.Stdout, "no snapshots found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tRegime\tConf\tPolicy\tFed\tVol\tTrade Level\tDaily Call")

	for _, snap := range snapshots {
		regime, conf := "-", "-"
		if snap.Regime != nil {
			regime = snap.Regime.Label
			conf = fmt.Sprintf("%d%%", snap.Regime.Confidence)
		}
		policy := "-"
		if snap.Policy != nil {
			policy = snap.Policy.Label
		}
		fed := "-"
		if snap.Fed != nil {
			fed = snap.Fed.Tone
		}
		vol := "-"
		if snap.Volatility != nil {
			vol = snap.Volatility.State
		}
		level := "-"
		if snap.TradeLevel != nil {
			level = snap.TradeLevel.Level
		}

		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			snap.Date,
			regime,
			conf,
			policy,
			fed,
			vol,
			level,
			sanitizeInline(snap.DailyCall),
		)
	}

	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
