package app

import (
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"market-lens/internal/snapshot"
)

// Export renders snapshot history as CSV and/or a PNG confidence chart.
func (a *App) Export(opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)
	if opts.Days <= 0 {
		opts.Days = snapshot.RetentionLimit
	}

	history, closeHistory, err := a.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	snapshots := history.Range(opts.Days)
	if len(snapshots) == 0 {
		a.Logger.Info().Msg("no snapshots found for export window")
		return nil
	}

	// Range is most-recent-first; exports read oldest-first.
	reverse(snapshots)
	downsampled := downsample(snapshots, opts.MaxPoints)
	a.Logger.Info().Int("total", len(snapshots)).Int("exported", len(downsampled)).Msg("exporting snapshots")

	if opts.CSVPath != "" {
		if err := writeSnapshotsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeSnapshotsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func reverse(snapshots []snapshot.DailySnapshot) {
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
}

func downsample(snapshots []snapshot.DailySnapshot, max int) []snapshot.DailySnapshot {
	if max <= 0 || len(snapshots) <= max {
		return snapshots
	}

	result := make([]snapshot.DailySnapshot, 0, max)
	step := float64(len(snapshots)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(snapshots) {
			idx = len(snapshots) - 1
		}
		result = append(result, snapshots[idx])
	}
	return result
}

func writeSnapshotsCSV(path string, snapshots []snapshot.DailySnapshot) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "regime", "confidence", "policy_risk", "fed_tone", "volatility", "trade_level", "daily_call", "missing"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, snap := range snapshots {
		regime, confidence := "", ""
		if snap.Regime != nil {
			regime = snap.Regime.Label
			confidence = strconv.Itoa(snap.Regime.Confidence)
		}
		record := []string{
			snap.Date,
			regime,
			confidence,
			fieldOrEmpty(snap.Policy != nil, func() string { return snap.Policy.Label }),
			fieldOrEmpty(snap.Fed != nil, func() string { return snap.Fed.Tone }),
			fieldOrEmpty(snap.Volatility != nil, func() string { return snap.Volatility.State }),
			fieldOrEmpty(snap.TradeLevel != nil, func() string { return snap.TradeLevel.Level }),
			snap.DailyCall,
			strings.Join(snap.Meta.Missing, "|"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeSnapshotsPNG(path string, snapshots []snapshot.DailySnapshot) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, 0, len(snapshots))
	confidence := make([]float64, 0, len(snapshots))

	for _, snap := range snapshots {
		if snap.Regime == nil {
			continue
		}
		date, err := time.Parse(snapshot.DateLayout, snap.Date)
		if err != nil {
			continue
		}
		x = append(x, date)
		confidence = append(confidence, float64(snap.Regime.Confidence))
	}

	if len(x) < 2 {
		return errors.New("not enough dated snapshots to chart")
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Confidence (%)",
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 100,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Confidence",
				XValues: x,
				YValues: confidence,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func fieldOrEmpty(present bool, get func() string) string {
	if !present {
		return ""
	}
	return get()
}
