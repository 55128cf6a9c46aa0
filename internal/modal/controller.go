package modal

import "time"

// State of the controller. Hidden is terminal once the modal has closed or
// was never shown.
type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// Trigger is a user interaction that may close the modal.
type Trigger string

const (
	TriggerCloseButton Trigger = "close_button"
	TriggerEscape      Trigger = "escape"
	TriggerOverlay     Trigger = "overlay"
	TriggerCTA         Trigger = "cta"
)

func (t Trigger) Valid() bool {
	switch t {
	case TriggerCloseButton, TriggerEscape, TriggerOverlay, TriggerCTA:
		return true
	}
	return false
}

// View is the page surface the controller drives.
type View interface {
	// Anchored reports whether the modal container exists on the page.
	Anchored() bool
	Show()
	Hide()
	// ActiveElement returns the id of the element holding focus, "" for none.
	ActiveElement() string
	// Focusables lists focusable descendants of the modal in tab order.
	Focusables() []string
	Focus(id string)
}

// Controller runs the Hidden/Visible state machine for one page view.
type Controller struct {
	opts  Options
	store Store
	view  View
	now   func() time.Time

	state      State
	previous   string
	focusables []string
}

// NewController binds opts to a session store and view. now defaults to time.Now.
func NewController(opts Options, store Store, view View, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{opts: opts, store: store, view: view, now: now}
}

func (c *Controller) State() State { return c.state }

// Activate evaluates the load-time decision. A page without the modal
// container leaves the controller inert.
func (c *Controller) Activate() State {
	if c.view == nil || !c.view.Anchored() {
		return c.state
	}
	if !ShouldShow(LoadState(c.store), c.opts, c.now()) {
		return c.state
	}
	c.state = Visible
	c.view.Show()
	c.trapFocus()
	return c.state
}

func (c *Controller) trapFocus() {
	c.previous = c.view.ActiveElement()
	c.focusables = c.view.Focusables()
	if len(c.focusables) > 0 {
		c.view.Focus(c.focusables[0])
	}
}

// Handle routes an interaction. It reports whether the modal closed; triggers
// disabled by the options, and any trigger while Hidden, are ignored.
func (c *Controller) Handle(t Trigger, sessionChecked bool) bool {
	if c.state != Visible {
		return false
	}
	switch t {
	case TriggerCloseButton:
	case TriggerEscape:
		if !c.opts.CloseOnEsc {
			return false
		}
	case TriggerOverlay:
		if !c.opts.CloseOnOverlay {
			return false
		}
	case TriggerCTA:
		if !c.opts.CloseOnCTA {
			return false
		}
	default:
		return false
	}
	c.Close(sessionChecked)
	return true
}

// Close writes the dismissal state, hides the modal and gives focus back to
// the element that held it before the modal opened.
func (c *Controller) Close(sessionChecked bool) {
	if c.state != Visible {
		return
	}
	SaveState(c.store, Close(LoadState(c.store), c.opts, c.now(), sessionChecked))
	c.state = Hidden
	c.view.Hide()
	if c.previous != "" {
		c.view.Focus(c.previous)
	}
}

// Tab moves focus inside the modal, wrapping at either end. It returns the
// id that received focus, or "" when focus was left to the default order.
func (c *Controller) Tab(shift bool) string {
	if c.state != Visible || len(c.focusables) == 0 {
		return ""
	}
	first, last := c.focusables[0], c.focusables[len(c.focusables)-1]
	active := c.view.ActiveElement()
	switch {
	case shift && active == first:
		c.view.Focus(last)
		return last
	case !shift && active == last:
		c.view.Focus(first)
		return first
	}
	return ""
}

// HeadlessView stands in for a page the server has already rendered the
// modal into. It records visibility and focus without a DOM.
type HeadlessView struct {
	Visible bool
	Active  string
	Items   []string
}

// NewHeadlessView returns a view over the controls the markup renders.
func NewHeadlessView(opts Options) *HeadlessView {
	items := []string{}
	if opts.ShowCTA {
		items = append(items, CTAButtonID)
	}
	items = append(items, CloseButtonID)
	if opts.EnableSessionHide {
		items = append(items, SessionBoxID)
	}
	return &HeadlessView{Items: items}
}

func (v *HeadlessView) Anchored() bool        { return true }
func (v *HeadlessView) Show()                 { v.Visible = true }
func (v *HeadlessView) Hide()                 { v.Visible = false }
func (v *HeadlessView) ActiveElement() string { return v.Active }
func (v *HeadlessView) Focusables() []string  { return v.Items }
func (v *HeadlessView) Focus(id string)       { v.Active = id }
