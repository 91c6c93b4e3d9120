package host

import (
	"sync"

	"vhfix/pkg/css"
	"vhfix/pkg/viewport"
)

// Window is a simulated browser window.
type Window struct {
	*EventTarget

	mu     sync.Mutex
	width  float64
	inner  float64
	visual *VisualViewport
	opera  string
}

func newWindow(cfg Config) *Window {
	w := &Window{
		EventTarget: newEventTarget("window"),
		width:       cfg.Width,
		inner:       cfg.InnerHeight,
	}
	if !cfg.NoVisualViewport {
		vh := cfg.VisualHeight
		if vh == 0 {
			vh = cfg.InnerHeight
		}
		w.visual = &VisualViewport{EventTarget: newEventTarget("visualViewport"), height: vh}
	}
	return w
}

// InnerHeight returns the layout viewport height.
func (w *Window) InnerHeight() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inner
}

// InnerWidth returns the layout viewport width.
func (w *Window) InnerWidth() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

// VisualViewport returns the visual viewport, if the host exposes one.
func (w *Window) VisualViewport() (viewport.VisualViewport, bool) {
	if w.visual == nil {
		return nil, false
	}
	return w.visual, true
}

// Visual returns the concrete visual viewport or nil.
func (w *Window) Visual() *VisualViewport {
	return w.visual
}

// Opera returns the legacy window.opera identification string.
func (w *Window) Opera() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opera
}

// SetOpera sets the legacy window.opera identification string.
func (w *Window) SetOpera(s string) {
	w.mu.Lock()
	w.opera = s
	w.mu.Unlock()
}

// Viewport returns the current sizes for resolving viewport units.
func (w *Window) Viewport() css.Viewport {
	w.mu.Lock()
	width, inner := w.width, w.inner
	w.mu.Unlock()
	visual := inner
	if w.visual != nil {
		visual = w.visual.Height()
	}
	return css.Viewport{
		Width:         width,
		SmallHeight:   min(inner, visual),
		LargeHeight:   max(inner, visual),
		DynamicHeight: visual,
	}
}

// Resize changes the window and visual viewport sizes, then fires resize on
// the window and, if its height changed, on the visual viewport.
func (w *Window) Resize(width, inner, visual float64) {
	w.mu.Lock()
	w.width, w.inner = width, inner
	w.mu.Unlock()

	changed := w.visual != nil && w.visual.setHeight(visual)
	w.DispatchEvent(viewport.EventResize)
	if changed {
		w.visual.DispatchEvent(viewport.EventResize)
	}
}

// Rotate swaps width and height and fires orientationchange then resize.
func (w *Window) Rotate() {
	w.mu.Lock()
	w.width, w.inner = w.inner, w.width
	inner := w.inner
	w.mu.Unlock()

	changed := w.visual != nil && w.visual.setHeight(inner)
	w.DispatchEvent(viewport.EventOrientationChange)
	w.DispatchEvent(viewport.EventResize)
	if changed {
		w.visual.DispatchEvent(viewport.EventResize)
	}
}

// ShowKeyboard shrinks the visual viewport by height without resizing the
// window, the way mobile hosts behave, and fires focusin.
func (w *Window) ShowKeyboard(height float64) {
	inner := w.InnerHeight()
	w.DispatchEvent(viewport.EventFocusIn)
	if w.visual != nil && w.visual.setHeight(max(inner-height, 0)) {
		w.visual.DispatchEvent(viewport.EventResize)
	}
}

// HideKeyboard restores the visual viewport and fires focusout.
func (w *Window) HideKeyboard() {
	inner := w.InnerHeight()
	w.DispatchEvent(viewport.EventFocusOut)
	if w.visual != nil && w.visual.setHeight(inner) {
		w.visual.DispatchEvent(viewport.EventResize)
	}
}

// VisualViewport is the simulated visual viewport.
type VisualViewport struct {
	*EventTarget

	mu     sync.Mutex
	height float64
}

// Height returns the visible height.
func (v *VisualViewport) Height() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// SetHeight changes the height and fires resize if it changed.
func (v *VisualViewport) SetHeight(h float64) {
	if v.setHeight(h) {
		v.DispatchEvent(viewport.EventResize)
	}
}

func (v *VisualViewport) setHeight(h float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.height == h {
		return false
	}
	v.height = h
	return true
}
