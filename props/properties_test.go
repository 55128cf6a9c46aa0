package props

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-welcome-modal/internal/modal"
)

func TestLoadSeed_Missing(t *testing.T) {
	_, ok, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadSeed_Decodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
modal:
  title: Quarterly audit
  dismiss_mode: always
  cooldown_minutes: 30
  roles: [editor]
  screens:
    - dashboard
    - /upload.php
  colors:
    header_bg: "#111111"
`), 0o600))

	p, ok, err := LoadSeed(path)
	require.NoError(t, err)
	require.True(t, ok)

	opts := modal.Resolve(p)
	assert.Equal(t, "Quarterly audit", opts.Title)
	assert.Equal(t, modal.DismissAlways, opts.DismissMode)
	assert.Equal(t, 30, opts.CooldownMinutes)
	assert.Equal(t, []string{"editor"}, opts.Roles)
	assert.Equal(t, modal.Screens{"dashboard", "/upload.php"}, opts.Screens)
	assert.Equal(t, modal.Colors{HeaderBg: "#111111"}, opts.Colors)
	assert.True(t, opts.ShowCTA, "absent fields keep defaults")
}

func TestLoadSeed_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modal: [unterminated"), 0o600))

	_, _, err := LoadSeed(path)
	assert.Error(t, err)
}

func TestLoadSeed_ScreensAsText(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want modal.Screens
	}{
		{"block scalar", "modal:\n  screens: |\n    dashboard\n\n    /upload.php\n", modal.Screens{"dashboard", "/upload.php"}},
		{"single line", "modal:\n  screens: edit-post\n", modal.Screens{"edit-post"}},
		{"flow sequence", "modal:\n  screens: [users, tools]\n", modal.Screens{"users", "tools"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "modal.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			p, ok, err := LoadSeed(path)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.Screens)
		})
	}
}

func TestLoadSeed_ScreensRejectsMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modal:\n  screens:\n    upload: true\n"), 0o600))

	_, _, err := LoadSeed(path)
	assert.Error(t, err)
}
