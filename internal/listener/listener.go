package listener

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"admin-welcome-modal/internal/observability"
	"admin-welcome-modal/internal/storage"
)

// Refresher rebuilds the options snapshot.
type Refresher interface {
	BuildSnapshot(ctx context.Context) error
}

const debounceWindow = 200 * time.Millisecond

// ListenAndRefresh reloads the snapshot whenever the options row changes.
// It reconnects with jittered backoff until ctx is cancelled.
func ListenAndRefresh(ctx context.Context, st *storage.Store, eng Refresher, channel string, baseBackoff time.Duration) {
	if channel == "" {
		channel = st.ListenChannel()
	}
	for ctx.Err() == nil {
		err := listen(ctx, st, eng, channel)
		if ctx.Err() != nil {
			break
		}
		backoff := jitter(baseBackoff)
		log.Error().Err(err).Dur("retry_in", backoff).Msg("listener interrupted")
		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
	}
	log.Info().Msg("listener stopped")
}

func listen(ctx context.Context, st *storage.Store, eng Refresher, channel string) error {
	conn, err := st.PgxPool().Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err = conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return err
	}
	log.Info().Str("channel", channel).Msg("listening for option changes")

	d := debouncer{window: debounceWindow}
	for {
		waitCtx, cancel := ctx, context.CancelFunc(func() {})
		if deadline, ok := d.trailing(); ok {
			waitCtx, cancel = context.WithDeadline(ctx, deadline)
		}
		ntf, err := conn.Conn().WaitForNotification(waitCtx)
		expired := waitCtx.Err() != nil && ctx.Err() == nil
		cancel()
		if err != nil {
			if expired {
				d.flush(time.Now())
				log.Info().Str("channel", channel).Msg("options changed during debounce; refreshing snapshot")
				refresh(ctx, eng)
				continue
			}
			return err
		}
		if !d.allow(time.Now()) {
			continue // folded into the trailing refresh
		}
		log.Info().Str("channel", ntf.Channel).Msg("options changed; refreshing snapshot")
		refresh(ctx, eng)
	}
}

func refresh(ctx context.Context, eng Refresher) {
	if err := eng.BuildSnapshot(ctx); err != nil {
		observability.SnapshotReloads.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("refresh snapshot error")
		return
	}
	observability.SnapshotReloads.WithLabelValues("ok").Inc()
}

// debouncer lets the first notification of a burst through and remembers
// any it suppresses, so one trailing refresh picks up the last change.
type debouncer struct {
	window  time.Duration
	last    time.Time
	pending bool
}

func (d *debouncer) allow(now time.Time) bool {
	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		d.pending = true
		return false
	}
	d.last = now
	d.pending = false
	return true
}

// trailing returns when the suppressed notifications should be refreshed.
func (d *debouncer) trailing() (time.Time, bool) {
	if !d.pending {
		return time.Time{}, false
	}
	return d.last.Add(d.window), true
}

func (d *debouncer) flush(now time.Time) {
	d.last = now
	d.pending = false
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	factor := 0.5 + rand.Float64() // 0.5x-1.5x
	return time.Duration(float64(base) * factor)
}
