package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"admin-welcome-modal/internal/cache"
	"admin-welcome-modal/internal/modal"
	"admin-welcome-modal/internal/observability"
	"admin-welcome-modal/internal/storage"
)

// ModalEngine serves eligibility, rendering and dismissal decisions from a
// lock-free snapshot of the resolved options.
type ModalEngine struct {
	snap    cache.Snapshot[modal.Options]
	store   OptionsStore
	policy  modal.Policy
	filters []OptionsFilter
	now     func() time.Time
}

func NewEngine(store OptionsStore, policy modal.Policy) *ModalEngine {
	return &ModalEngine{store: store, policy: policy, now: time.Now}
}

// WithClock replaces the engine clock.
func (e *ModalEngine) WithClock(now func() time.Time) *ModalEngine {
	e.now = now
	return e
}

// AddFilter registers a rewrite applied to options before rendering.
func (e *ModalEngine) AddFilter(f OptionsFilter) {
	e.filters = append(e.filters, f)
}

// BuildSnapshot loads persisted options, fills defaults and swaps the snapshot.
func (e *ModalEngine) BuildSnapshot(ctx context.Context) error {
	p, err := e.store.LoadOptions(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load options: %w", err)
	}
	opts := modal.Resolve(p)
	e.snap.Store(opts)
	log.Debug().
		Str("dismiss_mode", string(opts.DismissMode)).
		Int("roles", len(opts.Roles)).
		Int("screens", len(opts.Screens)).
		Msg("options snapshot built")
	return nil
}

// Seed persists seed when nothing has been stored yet. It reports whether a
// write happened.
func (e *ModalEngine) Seed(ctx context.Context, seed modal.Partial) (bool, error) {
	_, err := e.store.LoadOptions(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("load options: %w", err)
	}
	opts, rejected := modal.Sanitize(seed, modal.Defaults())
	logRejected(rejected, "seed")
	if err := e.store.SaveOptions(ctx, opts); err != nil {
		return false, fmt.Errorf("save seed: %w", err)
	}
	e.snap.Store(opts)
	return true, nil
}

// Settings returns the stored options without render filters.
func (e *ModalEngine) Settings() modal.Options {
	opts, ok := e.snap.Load()
	if !ok {
		return modal.Defaults()
	}
	return opts
}

// Options returns the options as rendered: stored values passed through filters.
func (e *ModalEngine) Options() modal.Options {
	opts := e.Settings()
	for _, f := range e.filters {
		opts = f(opts)
	}
	return opts
}

// Decide runs the eligibility gate and, when eligible, the load-time
// dismissal check against the viewer's session store.
func (e *ModalEngine) Decide(_ context.Context, v modal.Viewer, st modal.Store) Decision {
	opts := e.Options()
	if !e.policy.IsEligible(opts, v) {
		observability.Decisions.WithLabelValues("ineligible").Inc()
		return Decision{}
	}
	show := modal.ShouldShow(modal.LoadState(st), opts, e.now())
	outcome := "suppressed"
	if show {
		outcome = "shown"
	}
	observability.Decisions.WithLabelValues(outcome).Inc()
	return Decision{Eligible: true, Show: show, Options: &opts}
}

// Render returns the modal fragment for an eligible viewer. ok is false when
// the viewer is ineligible and nothing should be emitted.
func (e *ModalEngine) Render(ctx context.Context, v modal.Viewer, st modal.Store, ep modal.Endpoints) (markup string, ok bool, err error) {
	d := e.Decide(ctx, v, st)
	if !d.Eligible {
		return "", false, nil
	}
	markup, err = modal.Markup(*d.Options, d.Show, ep)
	if err != nil {
		return "", false, err
	}
	observability.Renders.Inc()
	log.Debug().Str("screen", v.Screen).Bool("show", d.Show).Msg("modal rendered")
	return markup, true, nil
}

// HandleEvent replays a page interaction through the controller. Screen
// targeting is not re-evaluated: the event comes from a modal that was
// rendered for an eligible screen. The viewer must still pass the privilege
// and role rules, and the modal must be visible for the event to take effect.
func (e *ModalEngine) HandleEvent(_ context.Context, v modal.Viewer, st modal.Store, t modal.Trigger, sessionChecked bool) EventResult {
	opts := e.Options()
	if !e.policy.AdmitsViewer(opts, v) {
		return EventResult{State: modal.Hidden.String()}
	}
	c := modal.NewController(opts, st, modal.NewHeadlessView(opts), e.now)
	c.Activate()
	closed := c.Handle(t, sessionChecked)
	if closed {
		session := opts.EnableSessionHide && sessionChecked
		observability.Dismissals.WithLabelValues(string(opts.DismissMode), fmt.Sprint(session)).Inc()
	}
	return EventResult{Closed: closed, State: c.State().String()}
}

// Reset clears the viewer's dismissal state.
func (e *ModalEngine) Reset(st modal.Store) {
	modal.Reset(st)
}

// UpdateSettings sanitizes in over the current settings, persists the result
// and swaps the snapshot.
func (e *ModalEngine) UpdateSettings(ctx context.Context, in modal.Partial) (SettingsResult, error) {
	opts, rejected := modal.Sanitize(in, e.Settings())
	logRejected(rejected, "settings")
	if err := e.store.SaveOptions(ctx, opts); err != nil {
		return SettingsResult{}, fmt.Errorf("save options: %w", err)
	}
	e.snap.Store(opts)
	return SettingsResult{Options: opts, Rejected: rejected}, nil
}

// DeleteSettings removes persisted options; defaults apply afterwards.
func (e *ModalEngine) DeleteSettings(ctx context.Context) error {
	if err := e.store.DeleteOptions(ctx); err != nil {
		return fmt.Errorf("delete options: %w", err)
	}
	e.snap.Store(modal.Defaults())
	return nil
}

// Preview renders a draft. It reads and writes no state.
func (e *ModalEngine) Preview(draft modal.Partial) (string, error) {
	return modal.Preview(draft)
}

func logRejected(rejected []modal.Rejection, source string) {
	for _, r := range rejected {
		log.Warn().Str("source", source).Str("field", r.Field).Str("reason", r.Reason).Msg("option rejected")
	}
}
