package main

import (
	"sync"

	"github.com/charmbracelet/log"

	"vhfix/internal/config"
	"vhfix/pkg/host"
	"vhfix/pkg/render"
	"vhfix/pkg/viewport"
)

type preset struct {
	name string
	ua   string
}

var presets = []preset{
	{"Instagram (iOS)", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Instagram 312.0"},
	{"iOS app WebView", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"},
	{"iOS Safari", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 Version/17.2 Mobile/15E148 Safari/604.1"},
	{"Android WebView", "Mozilla/5.0 (Linux; Android 13; Pixel 7; wv) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36"},
	{"Android Chrome", "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36"},
}

const (
	toolbarHeight  = 56
	keyboardHeight = 300
)

// viewer owns the simulated host and restarts the orchestrator when the
// device changes. The fyne layer only feeds it sizes and toggles.
type viewer struct {
	mu       sync.Mutex
	host     *host.Host
	opts     viewport.Options
	stop     viewport.Disposer
	force    bool
	toolbar  bool
	keyboard bool
	onFrame  func(render.Frame)
}

func newViewer(cfg *config.Config) (*viewer, error) {
	opts, err := cfg.ViewportOptions()
	if err != nil {
		return nil, err
	}
	v := &viewer{host: cfg.Host(), opts: opts}
	return v, nil
}

// restart disposes the current subscription and starts a new one for ua.
// mu is held until the new Disposer is stored so overlapping restarts
// cannot orphan a subscription.
func (v *viewer) restart(ua string, force bool) {
	v.mu.Lock()
	if v.stop != nil {
		v.stop()
	}
	v.host.SetUserAgent(ua)
	v.force = force
	opts := v.opts
	opts.ForceInApp = force
	user := v.opts.OnUpdate
	opts.OnUpdate = func(safe, large float64) {
		if user != nil {
			user(safe, large)
		}
		log.Debug("heights updated", "svh", safe, "lvh", large)
	}
	v.stop = viewport.New(v.host).Init(opts)
	v.mu.Unlock()

	v.publish()
}

// resize applies a new window size. The visible height loses the toolbar
// and keyboard when they are shown.
func (v *viewer) resize(width, height float64) {
	v.mu.Lock()
	visual := height
	if v.toolbar {
		visual -= toolbarHeight
	}
	if v.keyboard {
		visual -= keyboardHeight
	}
	v.mu.Unlock()
	v.host.Win().Resize(width, height, max(visual, 0))
	v.publish()
}

func (v *viewer) setToolbar(shown bool) {
	v.mu.Lock()
	v.toolbar = shown
	v.mu.Unlock()
	w := v.host.Win()
	v.resize(w.InnerWidth(), w.InnerHeight())
}

func (v *viewer) setKeyboard(shown bool) {
	v.mu.Lock()
	v.keyboard = shown
	v.mu.Unlock()
	w := v.host.Win()
	if shown {
		w.DispatchEvent(viewport.EventFocusIn)
	} else {
		w.DispatchEvent(viewport.EventFocusOut)
	}
	v.resize(w.InnerWidth(), w.InnerHeight())
}

func (v *viewer) frame() (render.Frame, error) {
	f, err := render.FrameFromHost(v.host, v.opts.VariableNames)
	if err != nil {
		return render.Frame{}, err
	}
	v.mu.Lock()
	force := v.force
	v.mu.Unlock()
	f.Label = viewport.Classify(v.host.UserAgent(), force, v.opts.Apps).String()
	return f, nil
}

func (v *viewer) publish() {
	if v.onFrame == nil {
		return
	}
	f, err := v.frame()
	if err != nil {
		log.Warn("no frame", "err", err)
		return
	}
	v.onFrame(f)
}

func (v *viewer) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stop != nil {
		v.stop()
		v.stop = nil
	}
}
