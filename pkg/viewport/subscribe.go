package viewport

// registration is one listener attached to one target.
type registration struct {
	target EventTarget
	event  string
}

// subscribe attaches a single listener to every change source of win and
// returns a Disposer detaching exactly those registrations.
func subscribe(win Window, onFocus bool, fn func(Event)) Disposer {
	l := NewListener(fn)

	regs := []registration{
		{win, EventResize},
		{win, EventOrientationChange},
	}
	if onFocus {
		regs = append(regs,
			registration{win, EventFocusIn},
			registration{win, EventFocusOut})
	}
	// The visual viewport is looked up once; a host that swaps it later keeps
	// the original subscription.
	if vv, ok := win.VisualViewport(); ok {
		regs = append(regs, registration{vv, EventResize})
	}

	for _, r := range regs {
		r.target.AddEventListener(r.event, l)
	}
	return func() {
		for _, r := range regs {
			r.target.RemoveEventListener(r.event, l)
		}
	}
}
