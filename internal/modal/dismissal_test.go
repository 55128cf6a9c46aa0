package modal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cooldownOptions(minutes int) Options {
	o := Defaults()
	o.DismissMode = DismissCooldown
	o.CooldownMinutes = minutes
	return o
}

func TestShouldShow_FreshState(t *testing.T) {
	assert.True(t, ShouldShow(DismissalState{}, Defaults(), time.UnixMilli(1)))
}

func TestCooldownWindow(t *testing.T) {
	opts := cooldownOptions(15)
	closedAt := time.UnixMilli(1000000)

	st := Close(DismissalState{}, opts, closedAt, false)
	require.True(t, st.HasCooldown())
	assert.Equal(t, int64(1900000), st.NextShow.UnixMilli())
	assert.False(t, st.DismissedForSession)

	assert.False(t, ShouldShow(st, opts, closedAt))
	assert.False(t, ShouldShow(st, opts, time.UnixMilli(1899999)))
	assert.True(t, ShouldShow(st, opts, time.UnixMilli(1900000)))
}

func TestCooldownClampedOnClose(t *testing.T) {
	opts := cooldownOptions(0)
	st := Close(DismissalState{}, opts, time.UnixMilli(0).Add(time.Hour), false)
	assert.Equal(t, time.UnixMilli(0).Add(time.Hour+time.Minute), st.NextShow)
}

func TestSessionHideSuppressesRegardlessOfMode(t *testing.T) {
	for _, mode := range []DismissMode{DismissCooldown, DismissAlways} {
		t.Run(string(mode), func(t *testing.T) {
			opts := Defaults()
			opts.DismissMode = mode
			opts.EnableSessionHide = true

			st := Close(DismissalState{}, opts, time.UnixMilli(5000), true)
			assert.True(t, st.DismissedForSession)
			for _, later := range []time.Duration{0, time.Hour, 48 * time.Hour} {
				assert.False(t, ShouldShow(st, opts, time.UnixMilli(5000).Add(later)))
			}
		})
	}
}

func TestSessionCheckboxIgnoredWhenDisabled(t *testing.T) {
	opts := Defaults()
	opts.DismissMode = DismissAlways
	opts.EnableSessionHide = false

	st := Close(DismissalState{}, opts, time.UnixMilli(5000), true)
	assert.False(t, st.DismissedForSession)
	assert.True(t, ShouldShow(st, opts, time.UnixMilli(5001)))
}

func TestAlwaysModeClearsCooldown(t *testing.T) {
	opts := Defaults()
	opts.DismissMode = DismissAlways

	prior := DismissalState{NextShow: time.UnixMilli(99999999)}
	st := Close(prior, opts, time.UnixMilli(1000), false)
	assert.False(t, st.HasCooldown())
	assert.True(t, ShouldShow(st, opts, time.UnixMilli(1001)))
}

func TestCooldownIgnoredInAlwaysMode(t *testing.T) {
	opts := Defaults()
	opts.DismissMode = DismissAlways
	st := DismissalState{NextShow: time.UnixMilli(10000)}
	assert.True(t, ShouldShow(st, opts, time.UnixMilli(1)))
}

func TestLoadSaveState(t *testing.T) {
	store := MemoryStore{}
	want := DismissalState{DismissedForSession: true, NextShow: time.UnixMilli(1900000)}
	SaveState(store, want)

	assert.Equal(t, "true", store[KeyDismissed])
	assert.Equal(t, "1900000", store[KeyNextShowTime])
	assert.Equal(t, want, LoadState(store))

	SaveState(store, DismissalState{})
	assert.Empty(t, store)
}

func TestLoadState_CorruptValuesFailOpen(t *testing.T) {
	store := MemoryStore{KeyDismissed: "yes", KeyNextShowTime: "soon"}
	st := LoadState(store)
	assert.Equal(t, DismissalState{}, st)
	assert.True(t, ShouldShow(st, cooldownOptions(15), time.UnixMilli(1)))
}

func TestReset_Idempotent(t *testing.T) {
	store := MemoryStore{KeyDismissed: "true", KeyNextShowTime: "1900000", "other": "kept"}

	Reset(store)
	once := LoadState(store)
	Reset(store)

	assert.Equal(t, once, LoadState(store))
	assert.Equal(t, DismissalState{}, once)
	assert.Equal(t, MemoryStore{"other": "kept"}, store)
}
