package modal

import (
	"path"
	"strings"
)

// Viewer is the per-request context supplied by the host application.
type Viewer struct {
	Privileged bool
	Roles      []string
	Screen     string // empty when the current screen is unknown
}

// Veto is an external predicate consulted after the built-in rules.
// Returning false makes the viewer ineligible; it can never widen eligibility.
type Veto func(opts Options, v Viewer) bool

// Policy decides whether the modal is a candidate for display at all.
type Policy struct {
	// RequirePrivilege rejects viewers the host did not confirm as administrators.
	RequirePrivilege bool
	Vetoes           []Veto
}

func NewPolicy(requirePrivilege bool, vetoes ...Veto) Policy {
	return Policy{RequirePrivilege: requirePrivilege, Vetoes: vetoes}
}

// IsEligible evaluates privilege, roles, screens and vetoes in that order,
// stopping at the first failure.
func (p Policy) IsEligible(opts Options, v Viewer) bool {
	if !p.AdmitsViewer(opts, v) {
		return false
	}
	if !MatchScreen(opts.Screens, v.Screen) {
		return false
	}
	for _, veto := range p.Vetoes {
		if veto != nil && !veto(opts, v) {
			return false
		}
	}
	return true
}

// AdmitsViewer applies the privilege and role rules only. Interactions with
// an already rendered modal are checked with it, since the screen gate was
// passed when the page was built.
func (p Policy) AdmitsViewer(opts Options, v Viewer) bool {
	if p.RequirePrivilege && !v.Privileged {
		return false
	}
	return matchRoles(opts.Roles, v.Roles)
}

// matchRoles reports whether the viewer holds one of the allowed roles.
// An empty allow list admits everyone.
func matchRoles(allowed, held []string) bool {
	if len(allowed) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		set[strings.TrimSpace(r)] = struct{}{}
	}
	for _, r := range held {
		if _, ok := set[strings.TrimSpace(r)]; ok {
			return true
		}
	}
	return false
}

// MatchScreen reports whether screen satisfies any pattern. An empty pattern
// list admits every screen; a non-empty list rejects an unknown screen.
// Matching is equality or substring containment after normalization, so a
// short pattern like "post" also matches "edit-post".
func MatchScreen(patterns []string, screen string) bool {
	if len(patterns) == 0 {
		return true
	}
	cur := NormalizeScreen(screen)
	if cur == "" {
		return false
	}
	for _, p := range patterns {
		np := NormalizeScreen(p)
		if np == "" {
			continue
		}
		if cur == np || strings.Contains(cur, np) {
			return true
		}
	}
	return false
}

// NormalizeScreen lowercases s, reduces a file-like pattern ("/upload.php")
// to its base name without extension and trims slashes.
func NormalizeScreen(s string) string {
	s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), "/")
	if ext := path.Ext(s); ext != "" && !strings.ContainsAny(ext, "?=&") {
		s = strings.TrimSuffix(path.Base(s), ext)
	}
	return strings.Trim(s, "/")
}
