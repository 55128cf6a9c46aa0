package modal

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DismissMode governs reappearance after close.
type DismissMode string

const (
	DismissCooldown DismissMode = "cooldown" // reappear after CooldownMinutes
	DismissAlways   DismissMode = "always"   // reappear on every page load
)

func (m DismissMode) Valid() bool {
	return m == DismissCooldown || m == DismissAlways
}

const (
	MinCooldownMinutes = 1
	MaxCooldownMinutes = 1440
)

// Colors holds the ten styling slots. An empty slot is absent.
type Colors struct {
	HeaderBg     string `json:"header_bg,omitempty" yaml:"header_bg"`
	HeaderText   string `json:"header_text,omitempty" yaml:"header_text"`
	BodyBg       string `json:"body_bg,omitempty" yaml:"body_bg"`
	BodyText     string `json:"body_text,omitempty" yaml:"body_text"`
	FooterBg     string `json:"footer_bg,omitempty" yaml:"footer_bg"`
	FooterText   string `json:"footer_text,omitempty" yaml:"footer_text"`
	BtnBg        string `json:"btn_bg,omitempty" yaml:"btn_bg"`
	BtnText      string `json:"btn_text,omitempty" yaml:"btn_text"`
	BtnBgHover   string `json:"btn_bg_hover,omitempty" yaml:"btn_bg_hover"`
	BtnTextHover string `json:"btn_text_hover,omitempty" yaml:"btn_text_hover"`
}

// slots pairs every color slot with its CSS custom property, in render order.
func (c *Colors) slots() []colorSlot {
	return []colorSlot{
		{"header_bg", "--awm-header-bg", &c.HeaderBg},
		{"header_text", "--awm-header-color", &c.HeaderText},
		{"body_bg", "--awm-body-bg", &c.BodyBg},
		{"body_text", "--awm-body-color", &c.BodyText},
		{"footer_bg", "--awm-footer-bg", &c.FooterBg},
		{"footer_text", "--awm-footer-color", &c.FooterText},
		{"btn_bg", "--awm-btn-bg", &c.BtnBg},
		{"btn_text", "--awm-btn-color", &c.BtnText},
		{"btn_bg_hover", "--awm-btn-bg-hover", &c.BtnBgHover},
		{"btn_text_hover", "--awm-btn-color-hover", &c.BtnTextHover},
	}
}

type colorSlot struct {
	key    string
	cssVar string
	value  *string
}

// Screens is an ordered list of screen patterns. On input it accepts either a
// JSON array or a single newline-delimited string.
type Screens []string

func (s *Screens) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		*s = ParseScreens(text)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

// UnmarshalYAML accepts a newline-delimited block scalar or a sequence.
func (s *Screens) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return nil
		}
		*s = ParseScreens(node.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return fmt.Errorf("screens: expected text or list at line %d", node.Line)
}

// ParseScreens splits newline-delimited patterns, dropping blank lines.
func ParseScreens(text string) Screens {
	out := Screens{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Options is the resolved modal configuration. Every field carries a value.
type Options struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	CTAText    string `json:"cta_text"`
	CTAURL     string `json:"cta_url"`
	FooterNote string `json:"footer_note"`

	ShowCTA   bool `json:"show_cta"`
	CTANewTab bool `json:"cta_new_tab"`

	DismissMode       DismissMode `json:"dismiss_mode"`
	CooldownMinutes   int         `json:"cooldown_minutes"`
	EnableSessionHide bool        `json:"enable_session_hide"`

	CloseOnEsc     bool `json:"close_on_esc"`
	CloseOnCTA     bool `json:"close_on_cta"`
	CloseOnOverlay bool `json:"close_on_overlay"`

	Roles   []string `json:"roles"`
	Screens Screens  `json:"screens"`
	Colors  Colors   `json:"colors"`
}

// Partial is a persisted or submitted configuration where nil means absent.
// Unknown keys are dropped on decode.
type Partial struct {
	Title      *string `json:"title,omitempty" yaml:"title"`
	Message    *string `json:"message,omitempty" yaml:"message"`
	CTAText    *string `json:"cta_text,omitempty" yaml:"cta_text"`
	CTAURL     *string `json:"cta_url,omitempty" yaml:"cta_url"`
	FooterNote *string `json:"footer_note,omitempty" yaml:"footer_note"`

	ShowCTA   *bool `json:"show_cta,omitempty" yaml:"show_cta"`
	CTANewTab *bool `json:"cta_new_tab,omitempty" yaml:"cta_new_tab"`

	DismissMode       *string `json:"dismiss_mode,omitempty" yaml:"dismiss_mode"`
	CooldownMinutes   *int    `json:"cooldown_minutes,omitempty" yaml:"cooldown_minutes"`
	EnableSessionHide *bool   `json:"enable_session_hide,omitempty" yaml:"enable_session_hide"`

	CloseOnEsc     *bool `json:"close_on_esc,omitempty" yaml:"close_on_esc"`
	CloseOnCTA     *bool `json:"close_on_cta,omitempty" yaml:"close_on_cta"`
	CloseOnOverlay *bool `json:"close_on_overlay,omitempty" yaml:"close_on_overlay"`

	Roles   []string `json:"roles,omitempty" yaml:"roles"`
	Screens Screens  `json:"screens,omitempty" yaml:"screens"`
	Colors  *Colors  `json:"colors,omitempty" yaml:"colors"`
}

// DefaultCTAURL points at the help documents page of the admin area.
const DefaultCTAURL = "/wp-admin/admin.php?page=wp-help-documents"

// Defaults returns the configuration used for every absent field.
func Defaults() Options {
	return Options{
		Title:             "Welcome to Your Site",
		Message:           "<p>This is an important message for administrators. Please review the information below.</p>",
		CTAText:           "Access Help",
		CTAURL:            DefaultCTAURL,
		FooterNote:        "Don't show this again during my current session",
		ShowCTA:           true,
		CTANewTab:         true,
		DismissMode:       DismissCooldown,
		CooldownMinutes:   15,
		EnableSessionHide: true,
		CloseOnEsc:        true,
		CloseOnCTA:        true,
		CloseOnOverlay:    false,
		Roles:             []string{},
		Screens:           Screens{},
		Colors: Colors{
			HeaderBg:     "#00463b",
			HeaderText:   "#ffffff",
			BodyBg:       "#ffffff",
			BodyText:     "#111111",
			FooterBg:     "#0E281D",
			FooterText:   "#ffffff",
			BtnBg:        "#00463b",
			BtnText:      "#ffffff",
			BtnBgHover:   "#006b57",
			BtnTextHover: "#ffffff",
		},
	}
}

// Resolve fills every absent field of p from Defaults. Colors are filled as a
// whole: a present colors object keeps its empty slots absent.
func Resolve(p Partial) Options {
	return p.over(Defaults())
}

// over layers the present fields of p on top of base.
func (p Partial) over(base Options) Options {
	o := base
	setString(&o.Title, p.Title)
	setString(&o.Message, p.Message)
	setString(&o.CTAText, p.CTAText)
	setString(&o.CTAURL, p.CTAURL)
	setString(&o.FooterNote, p.FooterNote)
	setBool(&o.ShowCTA, p.ShowCTA)
	setBool(&o.CTANewTab, p.CTANewTab)
	if p.DismissMode != nil && DismissMode(*p.DismissMode).Valid() {
		o.DismissMode = DismissMode(*p.DismissMode)
	}
	if p.CooldownMinutes != nil {
		o.CooldownMinutes = ClampCooldown(*p.CooldownMinutes)
	}
	setBool(&o.EnableSessionHide, p.EnableSessionHide)
	setBool(&o.CloseOnEsc, p.CloseOnEsc)
	setBool(&o.CloseOnCTA, p.CloseOnCTA)
	setBool(&o.CloseOnOverlay, p.CloseOnOverlay)
	if p.Roles != nil {
		o.Roles = append([]string{}, p.Roles...)
	}
	if p.Screens != nil {
		o.Screens = append(Screens{}, p.Screens...)
	}
	if p.Colors != nil {
		o.Colors = *p.Colors
	}
	return o
}

// Partial converts resolved options back to a fully populated partial.
func (o Options) Partial() Partial {
	mode := string(o.DismissMode)
	colors := o.Colors
	return Partial{
		Title:             &o.Title,
		Message:           &o.Message,
		CTAText:           &o.CTAText,
		CTAURL:            &o.CTAURL,
		FooterNote:        &o.FooterNote,
		ShowCTA:           &o.ShowCTA,
		CTANewTab:         &o.CTANewTab,
		DismissMode:       &mode,
		CooldownMinutes:   &o.CooldownMinutes,
		EnableSessionHide: &o.EnableSessionHide,
		CloseOnEsc:        &o.CloseOnEsc,
		CloseOnCTA:        &o.CloseOnCTA,
		CloseOnOverlay:    &o.CloseOnOverlay,
		Roles:             append([]string{}, o.Roles...),
		Screens:           append(Screens{}, o.Screens...),
		Colors:            &colors,
	}
}

// ClampCooldown bounds minutes to [MinCooldownMinutes, MaxCooldownMinutes].
func ClampCooldown(minutes int) int {
	if minutes < MinCooldownMinutes {
		return MinCooldownMinutes
	}
	if minutes > MaxCooldownMinutes {
		return MaxCooldownMinutes
	}
	return minutes
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// KnownScreens lists common admin screen ids offered as targeting hints.
var KnownScreens = []string{
	"dashboard",
	"edit-comments",
	"edit-page",
	"edit-post",
	"options-general",
	"page",
	"plugins",
	"post",
	"profile",
	"themes",
	"tools",
	"upload",
	"users",
}
