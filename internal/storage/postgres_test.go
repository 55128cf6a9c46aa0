package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-welcome-modal/internal/modal"
)

func TestOptionsRow_RoundTrip(t *testing.T) {
	opts := modal.Defaults()
	opts.Title = "Release notes"
	opts.DismissMode = modal.DismissAlways
	opts.CooldownMinutes = 45
	opts.Roles = []string{"editor"}
	opts.Screens = modal.Screens{"dashboard", "/upload.php"}
	opts.Colors = modal.Colors{HeaderBg: "#111111"}

	raw, err := encodeOptions(opts)
	require.NoError(t, err)

	p, err := decodeOptions(raw)
	require.NoError(t, err)
	assert.Equal(t, opts, modal.Resolve(p))
}

func TestOptionsRow_DecodesPartialRows(t *testing.T) {
	p, err := decodeOptions([]byte(`{"title":"Hi","screens":"dashboard\nupload","dismiss_mode":"session","extra":true}`))
	require.NoError(t, err)

	opts := modal.Resolve(p)
	assert.Equal(t, "Hi", opts.Title)
	assert.Equal(t, modal.Screens{"dashboard", "upload"}, opts.Screens)
	assert.Equal(t, modal.DismissCooldown, opts.DismissMode, "unknown stored mode resolves to the default")
	assert.Equal(t, modal.Defaults().Colors, opts.Colors)
}

func TestOptionsRow_DecodeError(t *testing.T) {
	_, err := decodeOptions([]byte(`{"screens":42}`))
	assert.Error(t, err)
}

func TestStore_ListenChannel(t *testing.T) {
	assert.Equal(t, "modal_options_change", (&Store{}).ListenChannel())
	assert.Equal(t, "custom", (&Store{channel: "custom"}).ListenChannel())
}
