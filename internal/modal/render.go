package modal

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Element ids shared by the markup and the controller script.
const (
	OverlayID       = "awm-admin-modal-overlay"
	ContainerID     = "awm-admin-modal"
	CloseButtonID   = "awm-close-modal-btn"
	CTAButtonID     = "awm-access-help-btn"
	SessionBoxID    = "awm-hide-session-checkbox"
	PreviewHolderID = "awm-preview-content"
)

// Fallbacks used when a rendered field is empty.
const (
	FallbackTitle      = "Welcome"
	FallbackCTAText    = "Access Help"
	FallbackCTAURL     = "#"
	FallbackFooterNote = "Don't show this again during my current session"
	PreviewMessage     = "<p>Your message will appear here.</p>"
)

// FocusDelay lets layout settle before focus moves into the modal.
const FocusDelay = 100 * time.Millisecond

const (
	focusableSelector     = `button, [href], input, select, textarea, [tabindex]:not([tabindex="-1"])`
	modalPageTemplateName = "modal_page"
	previewTemplateName   = "modal_preview"
)

const modalTemplate = `{{define "modal"}}<div id="{{.IDs.Container}}" role="dialog" aria-modal="true" tabindex="-1"{{if .Style}} style="{{.Style}}"{{end}}>
  <div id="awm-admin-modal-header">{{.Title}}</div>
  <div id="awm-admin-modal-content">{{.Message}}</div>
  <div id="awm-admin-modal-buttons">
    {{- if .ShowCTA}}
    <a href="{{.CTAURL}}" class="awm-modal-btn" id="{{.IDs.CTA}}"{{if .NewTab}} target="_blank" rel="noopener noreferrer"{{end}}>{{.CTAText}}</a>
    {{- end}}
    <button type="button" class="awm-modal-btn" id="{{.IDs.Close}}">Close</button>
  </div>
  {{- if .SessionHide}}
  <div id="awm-admin-modal-footer">
    <input type="checkbox" id="{{.IDs.SessionBox}}">
    <label for="{{.IDs.SessionBox}}">{{.FooterNote}}</label>
  </div>
  {{- end}}
</div>{{end}}`

const modalPageTemplate = `<div id="{{.IDs.Overlay}}" style="display:none;">
{{template "modal" .}}
</div>
<script>
(function() {
  var data = {{.Data}};
  var overlay = document.getElementById(data.ids.overlay);
  var container = document.getElementById(data.ids.container);
  if (!overlay || !container) { return; }
  var checkbox = document.getElementById(data.ids.session_box);
  var previous = null;

  function send(url, body) {
    return fetch(url, {method: 'POST', keepalive: true, credentials: 'same-origin', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body || {})});
  }
  function hide() {
    overlay.style.display = 'none';
    if (previous && previous.focus) { previous.focus(); }
  }
  function close(trigger) {
    hide();
    return send(data.endpoints.events, {trigger: trigger, session_hide: !!(checkbox && checkbox.checked)});
  }
  function trap() {
    var items = container.querySelectorAll(data.focusable);
    if (items.length === 0) { return; }
    var first = items[0], last = items[items.length - 1];
    previous = document.activeElement;
    setTimeout(function() { first.focus(); }, data.focus_delay_ms);
    container.addEventListener('keydown', function(e) {
      if (e.key !== 'Tab') { return; }
      if (e.shiftKey && document.activeElement === first) { e.preventDefault(); last.focus(); }
      else if (!e.shiftKey && document.activeElement === last) { e.preventDefault(); first.focus(); }
    });
  }

  var closeBtn = document.getElementById(data.ids.close);
  if (closeBtn) { closeBtn.addEventListener('click', function() { close('close_button'); }); }
  var cta = document.getElementById(data.ids.cta);
  if (cta && data.options.close_on_cta) { cta.addEventListener('click', function() { close('cta'); }); }
  if (data.options.close_on_esc) {
    document.addEventListener('keydown', function(e) {
      if (e.key === 'Escape' && overlay.style.display === 'flex') { close('escape'); }
    });
  }
  if (data.options.close_on_overlay) {
    overlay.addEventListener('click', function(e) { if (e.target === overlay) { close('overlay'); } });
  }
  container.addEventListener('click', function(e) { e.stopPropagation(); });

  window.awmResetModal = function() { return send(data.endpoints.reset); };

  if (data.show) {
    overlay.style.display = 'flex';
    trap();
  }
})();
</script>`

const previewTemplate = `<div id="{{.IDs.Preview}}">
{{template "modal" .}}
</div>`

var (
	pageTemplate        = template.Must(template.New(modalPageTemplateName).Parse(modalTemplate + modalPageTemplate))
	previewPageTemplate = template.Must(template.New(previewTemplateName).Parse(modalTemplate + previewTemplate))
)

type elementIDs struct {
	Overlay    string `json:"overlay"`
	Container  string `json:"container"`
	Close      string `json:"close"`
	CTA        string `json:"cta"`
	SessionBox string `json:"session_box"`
	Preview    string `json:"-"`
}

var ids = elementIDs{
	Overlay:    OverlayID,
	Container:  ContainerID,
	Close:      CloseButtonID,
	CTA:        CTAButtonID,
	SessionBox: SessionBoxID,
	Preview:    PreviewHolderID,
}

// Endpoints tells the controller script where to report closes and resets.
type Endpoints struct {
	Events string `json:"events"`
	Reset  string `json:"reset"`
}

// scriptData is serialized into the page for the controller script.
type scriptData struct {
	Options      Options    `json:"options"`
	Show         bool       `json:"show"`
	IDs          elementIDs `json:"ids"`
	Endpoints    Endpoints  `json:"endpoints"`
	Focusable    string     `json:"focusable"`
	FocusDelayMS int64      `json:"focus_delay_ms"`
}

type view struct {
	IDs         elementIDs
	Style       template.CSS
	Title       string
	Message     template.HTML
	ShowCTA     bool
	CTAURL      string
	CTAText     string
	NewTab      bool
	SessionHide bool
	FooterNote  string
	Data        scriptData
}

// CSSVariables maps every present, valid color slot to its custom property.
// Absent or invalid slots emit nothing so the stylesheet default applies.
func CSSVariables(c Colors) string {
	var vars []string
	for _, slot := range c.slots() {
		if v := strings.TrimSpace(*slot.value); ValidHexColor(v) {
			vars = append(vars, slot.cssVar+": "+v+";")
		}
	}
	return strings.Join(vars, " ")
}

// newView applies the field fallbacks shared by the live and preview renders.
func newView(title, message, ctaText, ctaURL, footer string, colors Colors) view {
	v := view{
		IDs:        ids,
		Style:      template.CSS(CSSVariables(colors)),
		Title:      orDefault(SanitizeText(title), FallbackTitle),
		Message:    template.HTML(SanitizeMessage(message)),
		CTAText:    orDefault(SanitizeText(ctaText), FallbackCTAText),
		CTAURL:     orDefault(SanitizeURL(ctaURL), FallbackCTAURL),
		FooterNote: orDefault(SanitizeText(footer), FallbackFooterNote),
	}
	return v
}

// Markup renders the live modal, its serialized options and the controller
// script. show carries the load-time dismissal decision.
func Markup(opts Options, show bool, ep Endpoints) (string, error) {
	v := newView(opts.Title, opts.Message, opts.CTAText, opts.CTAURL, opts.FooterNote, opts.Colors)
	v.ShowCTA = opts.ShowCTA
	v.NewTab = opts.CTANewTab
	v.SessionHide = opts.EnableSessionHide
	v.Data = scriptData{
		Options:      opts,
		Show:         show,
		IDs:          ids,
		Endpoints:    ep,
		Focusable:    focusableSelector,
		FocusDelayMS: FocusDelay.Milliseconds(),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render modal: %w", err)
	}
	return buf.String(), nil
}

// Preview renders a draft without resolving defaults, using the same color
// mapping and fallbacks as Markup. It touches no store.
func Preview(draft Partial) (string, error) {
	var colors Colors
	if draft.Colors != nil {
		colors = *draft.Colors
	}
	message := deref(draft.Message)
	if strings.TrimSpace(message) == "" {
		message = PreviewMessage
	}
	v := newView(deref(draft.Title), message, deref(draft.CTAText), deref(draft.CTAURL), deref(draft.FooterNote), colors)
	v.ShowCTA = draft.ShowCTA == nil || *draft.ShowCTA
	v.NewTab = draft.CTANewTab != nil && *draft.CTANewTab
	v.SessionHide = draft.EnableSessionHide == nil || *draft.EnableSessionHide

	var buf bytes.Buffer
	if err := previewPageTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return buf.String(), nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
