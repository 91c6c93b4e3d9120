package viewport

// Event is delivered to listeners by an EventTarget.
type Event struct {
	Type string
}

// Listener wraps an event callback. Targets compare listeners by pointer,
// so the same *Listener must be passed to RemoveEventListener that was
// passed to AddEventListener.
type Listener struct {
	Handle  func(Event)
	Passive bool
}

// NewListener returns a passive listener calling fn.
func NewListener(fn func(Event)) *Listener {
	return &Listener{Handle: fn, Passive: true}
}

// EventTarget is anything listeners can be attached to. Removing a listener
// that is not registered must be a no-op.
type EventTarget interface {
	AddEventListener(event string, l *Listener)
	RemoveEventListener(event string, l *Listener)
}

// VisualViewport is the visible portion of the page.
type VisualViewport interface {
	EventTarget
	Height() float64
}

// Window is the host's top-level browsing context.
type Window interface {
	EventTarget
	InnerHeight() float64
	// VisualViewport reports false when the host has no visual viewport API.
	VisualViewport() (VisualViewport, bool)
}

// StyleRoot is the style declaration of the document element.
type StyleRoot interface {
	SetProperty(name, value string)
}

// Environment gives access to the ambient host. Any capability may be
// missing, in which case the accessor reports false.
type Environment interface {
	// UserAgent returns the host's identifying string, "" if unknown.
	UserAgent() string
	Window() (Window, bool)
	DocumentElement() (StyleRoot, bool)
}

// Event names the orchestrator subscribes to.
const (
	EventResize            = "resize"
	EventOrientationChange = "orientationchange"
	EventFocusIn           = "focusin"
	EventFocusOut          = "focusout"
)

type noHost struct{}

func (noHost) UserAgent() string                  { return "" }
func (noHost) Window() (Window, bool)             { return nil, false }
func (noHost) DocumentElement() (StyleRoot, bool) { return nil, false }

// NoHost is an environment without a window or document, as seen when
// running outside a browser.
var NoHost Environment = noHost{}
