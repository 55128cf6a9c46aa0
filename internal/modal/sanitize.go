package modal

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	hexColor = regexp.MustCompile(`^#([A-Fa-f0-9]{3}){1,2}$`)

	// message keeps a post-like HTML subset; text fields keep no markup.
	messagePolicy = bluemonday.UGCPolicy()
	textPolicy    = bluemonday.StrictPolicy()
)

// ValidHexColor reports whether c is a 3- or 6-digit hex color.
func ValidHexColor(c string) bool {
	return hexColor.MatchString(c)
}

// SanitizeHexColor returns c when valid, otherwise the empty (absent) slot.
func SanitizeHexColor(c string) string {
	c = strings.TrimSpace(c)
	if ValidHexColor(c) {
		return c
	}
	return ""
}

// SanitizeMessage strips everything outside the safe HTML subset.
func SanitizeMessage(raw string) string {
	return messagePolicy.Sanitize(raw)
}

// SanitizeText removes markup and collapses surrounding whitespace.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// SanitizeURL keeps http, https, mailto and relative URLs. Anything else,
// including javascript: links, becomes empty.
func SanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return u.String()
	default:
		return ""
	}
}

// Rejection names a submitted field that could not be accepted.
type Rejection struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Sanitize applies the write contract: each present field of in is cleaned
// and layered over prev. A dismiss mode outside the enumeration is rejected
// and prev's value retained; cooldown is clamped; invalid colors become absent.
func Sanitize(in Partial, prev Options) (Options, []Rejection) {
	var rejected []Rejection
	clean := Partial{
		ShowCTA:           in.ShowCTA,
		CTANewTab:         in.CTANewTab,
		EnableSessionHide: in.EnableSessionHide,
		CloseOnEsc:        in.CloseOnEsc,
		CloseOnCTA:        in.CloseOnCTA,
		CloseOnOverlay:    in.CloseOnOverlay,
	}

	clean.Title = mapString(in.Title, SanitizeText)
	clean.CTAText = mapString(in.CTAText, SanitizeText)
	clean.FooterNote = mapString(in.FooterNote, SanitizeText)
	clean.Message = mapString(in.Message, SanitizeMessage)
	if in.CTAURL != nil {
		u := SanitizeURL(*in.CTAURL)
		if u == "" && strings.TrimSpace(*in.CTAURL) != "" {
			rejected = append(rejected, Rejection{Field: "cta_url", Reason: "unsupported URL"})
		}
		clean.CTAURL = &u
	}

	if in.DismissMode != nil {
		if DismissMode(*in.DismissMode).Valid() {
			clean.DismissMode = in.DismissMode
		} else {
			rejected = append(rejected, Rejection{Field: "dismiss_mode", Reason: "unknown mode " + *in.DismissMode})
		}
	}
	if in.CooldownMinutes != nil {
		m := ClampCooldown(*in.CooldownMinutes)
		clean.CooldownMinutes = &m
	}

	if in.Roles != nil {
		roles := make([]string, 0, len(in.Roles))
		for _, r := range in.Roles {
			if r = SanitizeText(r); r != "" {
				roles = append(roles, r)
			}
		}
		clean.Roles = roles
	}
	if in.Screens != nil {
		screens := make(Screens, 0, len(in.Screens))
		for _, s := range in.Screens {
			if s = SanitizeText(s); s != "" {
				screens = append(screens, s)
			}
		}
		clean.Screens = screens
	}

	if in.Colors != nil {
		colors := *in.Colors
		for _, slot := range colors.slots() {
			if *slot.value == "" {
				continue
			}
			v := SanitizeHexColor(*slot.value)
			if v == "" {
				rejected = append(rejected, Rejection{Field: "colors." + slot.key, Reason: "invalid hex color"})
			}
			*slot.value = v
		}
		clean.Colors = &colors
	}

	return clean.over(prev), rejected
}

func mapString(v *string, fn func(string) string) *string {
	if v == nil {
		return nil
	}
	s := fn(*v)
	return &s
}
