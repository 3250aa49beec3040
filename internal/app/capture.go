package app

import (
	"context"
	"time"
)

// Capture runs one evaluate-capture cycle immediately.
func (a *App) Capture(ctx context.Context, opts CaptureOptions) error {
	history, closeHistory, err := a.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	svc := a.newService(history, nil)
	return svc.ProcessBucket(ctx, time.Now().UTC(), opts.Force)
}
