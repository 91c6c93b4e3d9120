// Package browser drives a real Chromium page through playwright and exposes
// it as a viewport.Environment, so the Go orchestrator can publish variables
// on a live page.
//
// Page events reach Go through an exposed binding. Callbacks are queued and
// run on a single dispatch goroutine, never on playwright's own goroutine,
// because listeners call back into the page.
package browser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"vhfix/pkg/viewport"
)

// Options configures the browser context.
type Options struct {
	UserAgent string
	Width     int
	Height    int
	Headless  bool
	// Install downloads the browser driver if it is missing.
	Install bool
}

const (
	targetWindow = "window"
	targetVisual = "visualViewport"
)

type pageEvent struct {
	target string
	event  string
}

// Page hooks live in window[binding+"_hooks"] keyed by "target:event", so
// the handler that forwards to Go can be removed again.
const (
	installHook = `([target, event, fn]) => {
		const t = target === "visualViewport" ? window.visualViewport : window;
		if (!t) return;
		const hooks = window[fn + "_hooks"] || (window[fn + "_hooks"] = {});
		const key = target + ":" + event;
		if (hooks[key]) return;
		hooks[key] = () => window[fn](target, event);
		t.addEventListener(event, hooks[key], { passive: true });
	}`
	removeHook = `([target, event, fn]) => {
		const hooks = window[fn + "_hooks"];
		const key = target + ":" + event;
		if (!hooks || !hooks[key]) return;
		const t = target === "visualViewport" ? window.visualViewport : window;
		if (t) t.removeEventListener(event, hooks[key]);
		delete hooks[key];
	}`
)

type evalFunc func(expr string, arg ...interface{}) (interface{}, error)

// Host is a live page.
type Host struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	ua      string
	eval    evalFunc

	binding string
	events  chan pageEvent
	done    chan struct{}
	wg      sync.WaitGroup

	// hookMu orders page hook installs and removals; mu guards the maps
	// and is never held across a page call.
	hookMu    sync.Mutex
	mu        sync.Mutex
	listeners map[pageEvent][]*viewport.Listener
	installed mapset.Set[pageEvent]
	closeOnce sync.Once
}

var _ viewport.Environment = (*Host)(nil)

// Launch starts Chromium with a mobile context sized to opts.
func Launch(opts Options) (*Host, error) {
	if opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("installing playwright: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		IsMobile: playwright.Bool(true),
		HasTouch: playwright.Bool(true),
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.Width > 0 && opts.Height > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: opts.Width, Height: opts.Height}
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("opening page: %w", err)
	}

	h := newHost(opts.UserAgent)
	h.pw, h.browser, h.page = pw, browser, page
	h.eval = page.Evaluate
	if err := page.ExposeFunction(h.binding, h.receive); err != nil {
		h.Close()
		return nil, fmt.Errorf("exposing %s: %w", h.binding, err)
	}
	return h, nil
}

func newHost(ua string) *Host {
	h := &Host{
		ua:        ua,
		binding:   "__vhfix_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		events:    make(chan pageEvent, 64),
		done:      make(chan struct{}),
		listeners: make(map[pageEvent][]*viewport.Listener),
		installed: mapset.NewSet[pageEvent](),
	}
	h.wg.Add(1)
	go h.loop()
	return h
}

// Goto navigates and waits for load. Listeners installed before a
// navigation do not survive it.
func (h *Host) Goto(url string) error {
	if _, err := h.page.Goto(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	h.mu.Lock()
	h.installed.Clear()
	h.mu.Unlock()
	return nil
}

// SetViewportSize resizes the page, which fires resize events in it.
func (h *Host) SetViewportSize(width, height int) error {
	return h.page.SetViewportSize(width, height)
}

// Property reads a property from the root element's inline style.
func (h *Host) Property(name string) (string, error) {
	v, err := h.eval(`(n) => document.documentElement.style.getPropertyValue(n)`, name)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

// Screenshot writes a PNG of the viewport to path.
func (h *Host) Screenshot(path string) error {
	_, err := h.page.Screenshot(playwright.PageScreenshotOptions{Path: playwright.String(path)})
	return err
}

// Close stops dispatch and shuts the browser down.
func (h *Host) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
		if h.browser != nil {
			err = h.browser.Close()
		}
		if h.pw != nil {
			if stopErr := h.pw.Stop(); err == nil {
				err = stopErr
			}
		}
	})
	return err
}

// UserAgent returns the configured user agent, or navigator.userAgent.
func (h *Host) UserAgent() string {
	if h.ua != "" {
		return h.ua
	}
	s, _ := h.evaluate(`() => navigator.userAgent || window.opera || ""`).(string)
	return s
}

// Window returns the page's window.
func (h *Host) Window() (viewport.Window, bool) {
	return &window{target{h, targetWindow}}, true
}

// DocumentElement returns the page's <html> element.
func (h *Host) DocumentElement() (viewport.StyleRoot, bool) {
	return root{h}, true
}

// receive runs on playwright's goroutine and only queues.
func (h *Host) receive(args ...interface{}) interface{} {
	if len(args) != 2 {
		return nil
	}
	t, _ := args[0].(string)
	ev, _ := args[1].(string)
	select {
	case h.events <- pageEvent{t, ev}:
	case <-h.done:
	}
	return nil
}

func (h *Host) loop() {
	defer h.wg.Done()
	for {
		select {
		case pe := <-h.events:
			h.mu.Lock()
			ls := append([]*viewport.Listener(nil), h.listeners[pe]...)
			h.mu.Unlock()
			log.Debug("page event", "target", pe.target, "event", pe.event, "listeners", len(ls))
			for _, l := range ls {
				l.Handle(viewport.Event{Type: pe.event})
			}
		case <-h.done:
			return
		}
	}
}

func (h *Host) evaluate(expr string, arg ...interface{}) interface{} {
	if h.eval == nil {
		return nil
	}
	v, err := h.eval(expr, arg...)
	if err != nil {
		log.Warn("page evaluate failed", "err", err)
		return nil
	}
	return v
}

func (h *Host) addListener(pe pageEvent, l *viewport.Listener) {
	if l == nil {
		return
	}
	h.hookMu.Lock()
	defer h.hookMu.Unlock()

	h.mu.Lock()
	for _, existing := range h.listeners[pe] {
		if existing == l {
			h.mu.Unlock()
			return
		}
	}
	h.listeners[pe] = append(h.listeners[pe], l)
	install := h.installed.Add(pe)
	h.mu.Unlock()

	if install {
		h.evaluate(installHook, []interface{}{pe.target, pe.event, h.binding})
	}
}

// removeListener drops l and, once no Go listener is left for pe, removes
// the page hook as well.
func (h *Host) removeListener(pe pageEvent, l *viewport.Listener) {
	h.hookMu.Lock()
	defer h.hookMu.Unlock()

	h.mu.Lock()
	ls := h.listeners[pe]
	removed := false
	for i, existing := range ls {
		if existing == l {
			h.listeners[pe] = append(ls[:i:i], ls[i+1:]...)
			removed = true
			break
		}
	}
	uninstall := removed && len(h.listeners[pe]) == 0 && h.installed.Contains(pe)
	if removed && len(h.listeners[pe]) == 0 {
		delete(h.listeners, pe)
		h.installed.Remove(pe)
	}
	h.mu.Unlock()

	if uninstall {
		h.evaluate(removeHook, []interface{}{pe.target, pe.event, h.binding})
	}
}

// ListenerCount reports Go listeners registered for event on target
// ("window" or "visualViewport").
func (h *Host) ListenerCount(target, event string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[pageEvent{target, event}])
}

type target struct {
	h    *Host
	name string
}

func (t target) AddEventListener(event string, l *viewport.Listener) {
	t.h.addListener(pageEvent{t.name, event}, l)
}

func (t target) RemoveEventListener(event string, l *viewport.Listener) {
	t.h.removeListener(pageEvent{t.name, event}, l)
}

type window struct{ target }

func (w *window) InnerHeight() float64 {
	return toFloat(w.h.evaluate(`() => window.innerHeight`))
}

func (w *window) VisualViewport() (viewport.VisualViewport, bool) {
	ok, _ := w.h.evaluate(`() => !!window.visualViewport`).(bool)
	if !ok {
		return nil, false
	}
	return &visual{target{w.h, targetVisual}}, true
}

type visual struct{ target }

func (v *visual) Height() float64 {
	return toFloat(v.h.evaluate(`() => window.visualViewport ? window.visualViewport.height : 0`))
}

type root struct{ h *Host }

func (r root) SetProperty(name, value string) {
	r.h.evaluate(`([n, v]) => document.documentElement.style.setProperty(n, v)`, []interface{}{name, value})
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
