package engine

import (
	"context"

	"admin-welcome-modal/internal/modal"
)

// OptionsStore is the ConfigStore contract the engine reads and writes.
type OptionsStore interface {
	LoadOptions(ctx context.Context) (modal.Partial, error)
	SaveOptions(ctx context.Context, opts modal.Options) error
	DeleteOptions(ctx context.Context) error
}

// OptionsFilter rewrites resolved options before they are rendered.
type OptionsFilter func(modal.Options) modal.Options

// Decision is the per-request outcome for one viewer.
type Decision struct {
	Eligible bool           `json:"eligible"`
	Show     bool           `json:"show"`
	Options  *modal.Options `json:"options,omitempty"`
}

// EventResult reports what a controller event did.
type EventResult struct {
	Closed bool   `json:"closed"`
	State  string `json:"state"`
}

// SettingsResult is returned after a settings write.
type SettingsResult struct {
	Options  modal.Options     `json:"options"`
	Rejected []modal.Rejection `json:"rejected,omitempty"`
}
