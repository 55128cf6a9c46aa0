package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-welcome-modal/internal/modal"
	"admin-welcome-modal/internal/observability"
	"admin-welcome-modal/internal/storage"
)

type failingStore struct{ err error }

func (f failingStore) LoadOptions(context.Context) (modal.Partial, error) {
	return modal.Partial{}, f.err
}
func (f failingStore) SaveOptions(context.Context, modal.Options) error { return f.err }
func (f failingStore) DeleteOptions(context.Context) error              { return f.err }

func strPtr(s string) *string { return &s }

var admin = modal.Viewer{Privileged: true, Roles: []string{"administrator"}, Screen: "dashboard"}

func newEngine(t *testing.T, opts *modal.Options, now int64) *ModalEngine {
	t.Helper()
	store := storage.NewMemory()
	if opts != nil {
		require.NoError(t, store.SaveOptions(context.Background(), *opts))
	}
	eng := NewEngine(store, modal.NewPolicy(true)).
		WithClock(func() time.Time { return time.UnixMilli(now) })
	require.NoError(t, eng.BuildSnapshot(context.Background()))
	return eng
}

func TestBuildSnapshot_DefaultsWhenEmpty(t *testing.T) {
	eng := newEngine(t, nil, 1)
	assert.Equal(t, modal.Defaults(), eng.Settings())
}

func TestBuildSnapshot_StoreError(t *testing.T) {
	eng := NewEngine(failingStore{err: errors.New("boom")}, modal.NewPolicy(true))
	assert.Error(t, eng.BuildSnapshot(context.Background()))
	assert.Equal(t, modal.Defaults(), eng.Settings(), "no snapshot falls back to defaults")
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	eng := NewEngine(store, modal.NewPolicy(true))

	wrote, err := eng.Seed(ctx, modal.Partial{Title: strPtr("<i>First</i>")})
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, "First", eng.Settings().Title)

	wrote, err = eng.Seed(ctx, modal.Partial{Title: strPtr("Second")})
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, "First", eng.Settings().Title)
}

func TestDecide_Outcomes(t *testing.T) {
	opts := modal.Defaults()
	opts.CooldownMinutes = 15
	eng := newEngine(t, &opts, 1000000)

	ineligible := testutil.ToFloat64(observability.Decisions.WithLabelValues("ineligible"))
	shown := testutil.ToFloat64(observability.Decisions.WithLabelValues("shown"))
	suppressed := testutil.ToFloat64(observability.Decisions.WithLabelValues("suppressed"))

	d := eng.Decide(context.Background(), modal.Viewer{}, modal.MemoryStore{})
	assert.Equal(t, Decision{}, d)

	d = eng.Decide(context.Background(), admin, modal.MemoryStore{})
	assert.True(t, d.Eligible)
	assert.True(t, d.Show)
	require.NotNil(t, d.Options)

	d = eng.Decide(context.Background(), admin, modal.MemoryStore{modal.KeyNextShowTime: "1000001"})
	assert.True(t, d.Eligible)
	assert.False(t, d.Show)

	assert.Equal(t, ineligible+1, testutil.ToFloat64(observability.Decisions.WithLabelValues("ineligible")))
	assert.Equal(t, shown+1, testutil.ToFloat64(observability.Decisions.WithLabelValues("shown")))
	assert.Equal(t, suppressed+1, testutil.ToFloat64(observability.Decisions.WithLabelValues("suppressed")))
}

func TestRender(t *testing.T) {
	eng := newEngine(t, nil, 1)
	ep := modal.Endpoints{Events: "/v1/modal/events", Reset: "/v1/modal/reset"}

	_, ok, err := eng.Render(context.Background(), modal.Viewer{}, modal.MemoryStore{}, ep)
	require.NoError(t, err)
	assert.False(t, ok)

	before := testutil.ToFloat64(observability.Renders)
	markup, ok, err := eng.Render(context.Background(), admin, modal.MemoryStore{modal.KeyDismissed: "true"}, ep)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, markup, `"show":false`)
	assert.Equal(t, before+1, testutil.ToFloat64(observability.Renders))
}

func TestAddFilter_AppliesToRenderOnly(t *testing.T) {
	eng := newEngine(t, nil, 1)
	eng.AddFilter(func(o modal.Options) modal.Options {
		o.Title = strings.ToUpper(o.Title)
		return o
	})

	assert.Equal(t, "WELCOME TO YOUR SITE", eng.Options().Title)
	assert.Equal(t, "Welcome to Your Site", eng.Settings().Title)
}

func TestHandleEvent_CooldownClose(t *testing.T) {
	opts := modal.Defaults()
	opts.CooldownMinutes = 15
	eng := newEngine(t, &opts, 1000000)
	st := modal.MemoryStore{}

	before := testutil.ToFloat64(observability.Dismissals.WithLabelValues("cooldown", "false"))
	res := eng.HandleEvent(context.Background(), admin, st, modal.TriggerCloseButton, false)
	assert.Equal(t, EventResult{Closed: true, State: "hidden"}, res)
	assert.Equal(t, "1900000", st[modal.KeyNextShowTime])
	assert.Equal(t, before+1, testutil.ToFloat64(observability.Dismissals.WithLabelValues("cooldown", "false")))

	res = eng.HandleEvent(context.Background(), admin, st, modal.TriggerCloseButton, false)
	assert.False(t, res.Closed, "modal already suppressed")
}

func TestHandleEvent_IgnoresScreenTargeting(t *testing.T) {
	opts := modal.Defaults()
	opts.Screens = modal.Screens{"upload"}
	opts.Roles = []string{"administrator"}
	eng := newEngine(t, &opts, 1000000)

	st := modal.MemoryStore{}
	res := eng.HandleEvent(context.Background(), modal.Viewer{Privileged: true, Roles: []string{"administrator"}}, st, modal.TriggerCloseButton, false)
	assert.True(t, res.Closed)
	assert.Equal(t, "1900000", st[modal.KeyNextShowTime])

	st = modal.MemoryStore{}
	res = eng.HandleEvent(context.Background(), modal.Viewer{Privileged: true, Roles: []string{"editor"}}, st, modal.TriggerCloseButton, false)
	assert.False(t, res.Closed, "role rule still applies")
	assert.Empty(t, st)
}

func TestHandleEvent_Ineligible(t *testing.T) {
	eng := newEngine(t, nil, 1)
	st := modal.MemoryStore{}
	res := eng.HandleEvent(context.Background(), modal.Viewer{}, st, modal.TriggerCloseButton, true)
	assert.False(t, res.Closed)
	assert.Empty(t, st)
}

func TestReset(t *testing.T) {
	eng := newEngine(t, nil, 1)
	st := modal.MemoryStore{modal.KeyDismissed: "true", modal.KeyNextShowTime: "5"}
	eng.Reset(st)
	assert.Empty(t, st)
	eng.Reset(st)
	assert.Empty(t, st)
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	eng := NewEngine(store, modal.NewPolicy(true))
	require.NoError(t, eng.BuildSnapshot(ctx))

	res, err := eng.UpdateSettings(ctx, modal.Partial{
		Title:       strPtr("Heads up"),
		DismissMode: strPtr("session"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Heads up", res.Options.Title)
	assert.Equal(t, modal.DismissCooldown, res.Options.DismissMode)
	require.Len(t, res.Rejected, 1)

	p, err := store.LoadOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Heads up", *p.Title)
	assert.Equal(t, "Heads up", eng.Settings().Title)
}

func TestUpdateSettings_StoreError(t *testing.T) {
	eng := NewEngine(failingStore{err: errors.New("read only")}, modal.NewPolicy(true))
	_, err := eng.UpdateSettings(context.Background(), modal.Partial{Title: strPtr("x")})
	assert.Error(t, err)
	assert.Equal(t, modal.Defaults().Title, eng.Settings().Title)
}

func TestDeleteSettings(t *testing.T) {
	opts := modal.Defaults()
	opts.Title = "Custom"
	eng := newEngine(t, &opts, 1)

	require.NoError(t, eng.DeleteSettings(context.Background()))
	assert.Equal(t, modal.Defaults(), eng.Settings())

	require.NoError(t, eng.BuildSnapshot(context.Background()))
	assert.Equal(t, modal.Defaults(), eng.Settings())
}
