// Package host is an in-memory browser host: a window with a visual
// viewport, a document element carrying an inline style, and synchronous
// event dispatch. It backs the JS runtime, the CLI simulations and the tests.
package host

import (
	"sync"

	"vhfix/pkg/css"
	"vhfix/pkg/viewport"
)

// Config describes the simulated device.
type Config struct {
	UserAgent    string
	Width        float64
	InnerHeight  float64
	VisualHeight float64 // 0 means equal to InnerHeight

	NoWindow         bool
	NoVisualViewport bool
	NoDocument       bool
}

// Host implements viewport.Environment.
type Host struct {
	mu  sync.Mutex
	ua  string
	win *Window
	doc *Element
}

var _ viewport.Environment = (*Host)(nil)

// New builds a host from cfg.
func New(cfg Config) *Host {
	h := &Host{ua: cfg.UserAgent}
	if !cfg.NoWindow {
		h.win = newWindow(cfg)
	}
	if !cfg.NoDocument {
		h.doc = NewElement()
	}
	return h
}

// UserAgent returns the configured user agent, falling back to the legacy
// window.opera string when it is empty.
func (h *Host) UserAgent() string {
	h.mu.Lock()
	ua := h.ua
	h.mu.Unlock()
	if ua == "" && h.win != nil {
		return h.win.Opera()
	}
	return ua
}

// SetUserAgent replaces the user agent.
func (h *Host) SetUserAgent(ua string) {
	h.mu.Lock()
	h.ua = ua
	h.mu.Unlock()
}

// Window returns the window, if the host has one.
func (h *Host) Window() (viewport.Window, bool) {
	if h.win == nil {
		return nil, false
	}
	return h.win, true
}

// DocumentElement returns the root element style, if the host has a
// document.
func (h *Host) DocumentElement() (viewport.StyleRoot, bool) {
	if h.doc == nil {
		return nil, false
	}
	return h.doc, true
}

// Win returns the concrete window or nil.
func (h *Host) Win() *Window {
	return h.win
}

// Root returns the concrete document element or nil.
func (h *Host) Root() *Element {
	return h.doc
}

// Element is the document element's inline style.
type Element struct {
	mu       sync.Mutex
	style    *css.StyleDeclaration
	writes   int
	onChange []func(name, value string)
}

// NewElement returns an element with an empty style.
func NewElement() *Element {
	return &Element{style: &css.StyleDeclaration{}}
}

// SetProperty sets a style property.
func (e *Element) SetProperty(name, value string) {
	e.mu.Lock()
	e.style.SetProperty(name, value)
	e.writes++
	hooks := e.onChange
	e.mu.Unlock()
	for _, fn := range hooks {
		fn(name, value)
	}
}

// GetPropertyValue returns a style property or "".
func (e *Element) GetPropertyValue(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.style.GetPropertyValue(name)
}

// RemoveProperty deletes a style property and returns the old value.
func (e *Element) RemoveProperty(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writes++
	return e.style.RemoveProperty(name)
}

// CSSText returns the serialized style attribute.
func (e *Element) CSSText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.style.CSSText()
}

// SetCSSText replaces the whole inline style.
func (e *Element) SetCSSText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.style = css.ParseInline(text)
	e.writes++
}

// Resolve substitutes var() references in value against this style.
func (e *Element) Resolve(value string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return css.Resolve(value, e.style.Lookup)
}

// Writes counts style mutations since creation.
func (e *Element) Writes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writes
}

// OnChange registers fn to run after every SetProperty.
func (e *Element) OnChange(fn func(name, value string)) {
	e.mu.Lock()
	e.onChange = append(e.onChange, fn)
	e.mu.Unlock()
}

// CustomProperties returns the custom properties of the inline style in
// declaration order.
func (e *Element) CustomProperties() []css.Declaration {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []css.Declaration
	for _, d := range e.style.Declarations() {
		if css.IsCustomProperty(d.Name) {
			out = append(out, d)
		}
	}
	return out
}
