package gps

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ReplayOptions controls real time NMEA playback
type ReplayOptions struct {
	Speed float64 // playback multiplier, 1.0 is real time
	Loop  bool    // start over after the last fix
	Clock func() time.Time
}

// Replay writes the fixes to w as NMEA sentences, waiting between fixes as
// long as their timestamps are apart, divided by the playback speed. Each fix
// is stamped with the current time on output, like a live receiver. Replay
// returns when the last fix is written, or with the context error once ctx
// is done.
func Replay(ctx context.Context, w io.Writer, fixes []Fix, opts ReplayOptions) error {
	if len(fixes) == 0 {
		return ErrEmptyTrajectory
	}

	// Invalid speeds replay in real time
	if opts.Speed <= 0 {
		opts.Speed = 1.0
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	for {
		for i, fix := range fixes {
			if i > 0 {
				wait := time.Duration(float64(fix.Time.Sub(fixes[i-1].Time)) / opts.Speed)
				if err := sleepContext(ctx, wait); err != nil {
					return err
				}
			} else if err := ctx.Err(); err != nil {
				return err
			}

			fix.Time = now()
			if _, err := io.WriteString(w, fix.Sentences()); err != nil {
				return fmt.Errorf("failed to write NMEA output: %w", err)
			}
		}

		if !opts.Loop {
			return nil
		}
		// Loop back to start after one nominal second
		if err := sleepContext(ctx, time.Duration(float64(time.Second)/opts.Speed)); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
