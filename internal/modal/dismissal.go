package modal

import (
	"strconv"
	"strings"
	"time"
)

// Session storage keys.
const (
	KeyDismissed    = "awm_modal_dismissed"
	KeyNextShowTime = "awm_modal_next_show_time"
)

// Store is a per-browser-session key/value medium.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// DismissalState records how the viewer dismissed the modal this session.
// A zero NextShow means no cooldown is pending.
type DismissalState struct {
	DismissedForSession bool
	NextShow            time.Time
}

func (s DismissalState) HasCooldown() bool { return !s.NextShow.IsZero() }

// LoadState reads the state from st. Missing keys and unparseable timestamps
// are treated as absent.
func LoadState(st Store) DismissalState {
	var s DismissalState
	if v, ok := st.Get(KeyDismissed); ok && v == "true" {
		s.DismissedForSession = true
	}
	if v, ok := st.Get(KeyNextShowTime); ok {
		if ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && ms > 0 {
			s.NextShow = time.UnixMilli(ms)
		}
	}
	return s
}

// SaveState writes s to st, removing keys for absent values.
func SaveState(st Store, s DismissalState) {
	if s.DismissedForSession {
		st.Set(KeyDismissed, "true")
	} else {
		st.Remove(KeyDismissed)
	}
	if s.HasCooldown() {
		st.Set(KeyNextShowTime, strconv.FormatInt(s.NextShow.UnixMilli(), 10))
	} else {
		st.Remove(KeyNextShowTime)
	}
}

// Reset clears both keys. Calling it repeatedly has the same effect as once.
func Reset(st Store) {
	st.Remove(KeyDismissed)
	st.Remove(KeyNextShowTime)
}

// ShouldShow decides visibility at load. Session suppression wins over an
// expired cooldown.
func ShouldShow(s DismissalState, opts Options, now time.Time) bool {
	if s.DismissedForSession {
		return false
	}
	if opts.DismissMode == DismissCooldown && s.HasCooldown() && now.Before(s.NextShow) {
		return false
	}
	return true
}

// Close returns the state after the viewer closes the modal at now.
func Close(s DismissalState, opts Options, now time.Time, sessionChecked bool) DismissalState {
	if opts.EnableSessionHide && sessionChecked {
		s.DismissedForSession = true
		s.NextShow = time.Time{}
	} else {
		s.DismissedForSession = false
	}

	switch opts.DismissMode {
	case DismissCooldown:
		s.NextShow = now.Add(time.Duration(ClampCooldown(opts.CooldownMinutes)) * time.Minute)
	case DismissAlways:
		s.NextShow = time.Time{}
	}
	return s
}

// MemoryStore is a map-backed Store.
type MemoryStore map[string]string

func (m MemoryStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MemoryStore) Set(key, value string) { m[key] = value }

func (m MemoryStore) Remove(key string) { delete(m, key) }
