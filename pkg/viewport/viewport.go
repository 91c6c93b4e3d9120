// Package viewport publishes reliable viewport height custom properties for
// in-app browsers and WebViews, whose native svh/lvh units drift as the host
// app's toolbars show and hide.
//
// A Binding ties the computations to an Environment. In a regular browser
// Init writes the native 100svh/100lvh lengths; inside an in-app browser it
// writes pixel heights and keeps them current on resize, orientation and,
// optionally, focus changes.
package viewport

import (
	"strconv"

	"github.com/charmbracelet/log"
)

// Native lengths published outside in-app browsers.
const (
	NativeSafe  = "100svh"
	NativeLarge = "100lvh"
)

// Heights are the two published values in CSS pixels.
type Heights struct {
	Safe  float64
	Large float64
}

// Disposer removes the listeners registered by Init. Calling it more than
// once is harmless.
type Disposer func()

func noop() {}

// Binding runs the viewport computations against one environment.
type Binding struct {
	env Environment
}

// New returns a Binding for env. A nil env behaves like NoHost.
func New(env Environment) *Binding {
	if env == nil {
		env = NoHost
	}
	return &Binding{env: env}
}

// ComputeHeights samples the live window state. Safe is always the inner
// height; Large is the larger of the visual and inner heights, or the
// smaller on iOS when capOnIOS is set, since the visual viewport overshoots
// there during momentum scrolling.
func (b *Binding) ComputeHeights(ua string, capOnIOS bool) Heights {
	var inner, visual float64
	if win, ok := b.env.Window(); ok {
		inner = nonNegative(win.InnerHeight())
		visual = inner
		if vv, ok := win.VisualViewport(); ok {
			visual = nonNegative(vv.Height())
		}
	}

	large := max(visual, inner)
	if capOnIOS && IsIOS(ua) {
		large = min(visual, inner)
	}
	return Heights{Safe: inner, Large: large}
}

// ApplyVars writes safe and large as pixel lengths to the document element.
// It does nothing when the host has no document.
func (b *Binding) ApplyVars(safe, large float64, names VariableNames) {
	b.setVars(Pixels(safe), Pixels(large), names)
}

func (b *Binding) setVars(safe, large string, names VariableNames) {
	root, ok := b.env.DocumentElement()
	if !ok {
		return
	}
	root.SetProperty(names.safe(), safe)
	root.SetProperty(names.large(), large)
}

// Pixels formats v as a CSS pixel length in its shortest form.
func Pixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Init publishes the viewport variables and, inside in-app browsers,
// keeps them up to date until the returned Disposer is called.
func (b *Binding) Init(opts Options) Disposer {
	ua := b.env.UserAgent()
	reason := Classify(ua, opts.ForceInApp, opts.Apps)
	if reason == ReasonNone {
		log.Debug("viewport: native units", "ua", ua)
		b.setVars(NativeSafe, NativeLarge, opts.VariableNames)
		return noop
	}
	log.Debug("viewport: compensating", "ua", ua, "reason", reason)

	update := func() {
		h := b.ComputeHeights(ua, opts.CapOnIOS())
		b.ApplyVars(h.Safe, h.Large, opts.VariableNames)
		if opts.OnUpdate != nil {
			opts.OnUpdate(h.Safe, h.Large)
		}
	}
	update()

	win, ok := b.env.Window()
	if !ok {
		return noop
	}
	return subscribe(win, opts.UpdateOnFocus, func(Event) { update() })
}

// InitRaw decodes raw with DecodeOptions and calls Init. Shape errors are
// returned before the host is touched.
func (b *Binding) InitRaw(raw map[string]any) (Disposer, error) {
	opts, err := DecodeOptions(raw)
	if err != nil {
		return noop, err
	}
	return b.Init(opts), nil
}

// SetViewportHeight is an alias for Init.
func (b *Binding) SetViewportHeight(opts Options) Disposer {
	return b.Init(opts)
}

// SetViewportHeightRaw is an alias for InitRaw.
func (b *Binding) SetViewportHeightRaw(raw map[string]any) (Disposer, error) {
	return b.InitRaw(raw)
}
