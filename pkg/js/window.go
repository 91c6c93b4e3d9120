package js

import (
	"github.com/dop251/goja"
)

func (e *Engine) registerNavigator() {
	nav := e.vm.NewObject()
	e.getter(nav, "userAgent", func() goja.Value {
		return e.vm.ToValue(e.host.UserAgent())
	})
	e.vm.Set("navigator", nav)
}

// registerWindow sets up `window` and its visualViewport. Hosts without a
// window leave the global undefined, as in server-side rendering.
func (e *Engine) registerWindow() {
	win := e.host.Win()
	if win == nil {
		return
	}

	obj := e.vm.NewObject()
	e.getter(obj, "innerHeight", func() goja.Value { return e.vm.ToValue(win.InnerHeight()) })
	e.getter(obj, "innerWidth", func() goja.Value { return e.vm.ToValue(win.InnerWidth()) })
	e.getter(obj, "opera", func() goja.Value {
		if s := win.Opera(); s != "" {
			return e.vm.ToValue(s)
		}
		return goja.Undefined()
	})
	e.eventTargetMethods(obj, win.EventTarget)

	if vv := win.Visual(); vv != nil {
		vvObj := e.vm.NewObject()
		e.getter(vvObj, "height", func() goja.Value { return e.vm.ToValue(vv.Height()) })
		e.getter(vvObj, "width", func() goja.Value { return e.vm.ToValue(win.InnerWidth()) })
		e.eventTargetMethods(vvObj, vv.EventTarget)
		obj.Set("visualViewport", vvObj)
	} else {
		obj.Set("visualViewport", goja.Null())
	}

	e.vm.Set("window", obj)
}
