// Package js runs page scripts against a simulated browser host. The
// runtime exposes window, navigator, document.documentElement.style, CSS,
// console and the viewportHeight library object.
//
// An Engine is not safe for concurrent use: scripts and host events that
// reach JS listeners must run on the same goroutine.
package js

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"

	"vhfix/pkg/host"
	"vhfix/pkg/viewport"
)

// Engine executes JavaScript against a host.
type Engine struct {
	vm      *goja.Runtime
	host    *host.Host
	binding *viewport.Binding
	logger  *log.Logger

	// listeners maps JS callbacks to the host listeners wrapping them.
	listeners map[listenerKey]*viewport.Listener
}

type listenerKey struct {
	target *host.EventTarget
	event  string
	fn     *goja.Object
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes console output and listener errors to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine bound to h with a fresh goja runtime.
func New(h *host.Host, opts ...Option) *Engine {
	e := &Engine{
		vm:        goja.New(),
		host:      h,
		binding:   viewport.New(h),
		listeners: make(map[listenerKey]*viewport.Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "js"})
	}

	e.registerConsole()
	e.registerNavigator()
	e.registerWindow()
	e.registerDocument()
	e.registerCSS()
	e.registerViewportHeight()
	return e
}

// Execute runs scripts in order and stops at the first error.
func (e *Engine) Execute(scripts []string) error {
	for i, script := range scripts {
		if _, err := e.vm.RunString(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	return nil
}

// callListener invokes a JS callback for a host event. Exceptions are
// logged rather than propagated, as browsers report them without aborting
// dispatch.
func (e *Engine) callListener(fn goja.Callable, ev viewport.Event) {
	obj := e.vm.NewObject()
	obj.Set("type", ev.Type)
	if _, err := fn(goja.Undefined(), obj); err != nil {
		e.logger.Error("listener failed", "event", ev.Type, "err", err)
	}
}

// addListener registers a JS callback on target. Adding the same callback
// twice for one event is ignored.
func (e *Engine) addListener(target *host.EventTarget, call goja.FunctionCall) goja.Value {
	if len(call.Arguments) < 2 {
		panic(e.vm.NewTypeError("Failed to execute 'addEventListener': 2 arguments required"))
	}
	event := call.Arguments[0].String()
	fn, ok := goja.AssertFunction(call.Arguments[1])
	if !ok {
		return goja.Undefined()
	}
	key := listenerKey{target: target, event: event, fn: call.Arguments[1].ToObject(e.vm)}
	if _, exists := e.listeners[key]; exists {
		return goja.Undefined()
	}
	l := viewport.NewListener(func(ev viewport.Event) { e.callListener(fn, ev) })
	e.listeners[key] = l
	target.AddEventListener(event, l)
	return goja.Undefined()
}

func (e *Engine) removeListener(target *host.EventTarget, call goja.FunctionCall) goja.Value {
	if len(call.Arguments) < 2 {
		return goja.Undefined()
	}
	arg := call.Arguments[1]
	if _, ok := goja.AssertFunction(arg); !ok {
		return goja.Undefined()
	}
	key := listenerKey{target: target, event: call.Arguments[0].String(), fn: arg.ToObject(e.vm)}
	if l, ok := e.listeners[key]; ok {
		target.RemoveEventListener(key.event, l)
		delete(e.listeners, key)
	}
	return goja.Undefined()
}

// dispatch fires an event named by a string or an object with a type.
func (e *Engine) dispatch(target *host.EventTarget, call goja.FunctionCall) goja.Value {
	if len(call.Arguments) == 0 {
		panic(e.vm.NewTypeError("Failed to execute 'dispatchEvent': 1 argument required"))
	}
	arg := call.Arguments[0]
	event := arg.String()
	if obj, ok := arg.(*goja.Object); ok {
		event = obj.Get("type").String()
	}
	target.DispatchEvent(event)
	return e.vm.ToValue(true)
}

// eventTargetMethods installs addEventListener, removeEventListener and
// dispatchEvent on obj.
func (e *Engine) eventTargetMethods(obj *goja.Object, target *host.EventTarget) {
	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		return e.addListener(target, call)
	})
	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		return e.removeListener(target, call)
	})
	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		return e.dispatch(target, call)
	})
}

// getter defines a read-only enumerable accessor property.
func (e *Engine) getter(obj *goja.Object, name string, fn func() goja.Value) {
	get := e.vm.ToValue(func(goja.FunctionCall) goja.Value { return fn() })
	if err := obj.DefineAccessorProperty(name, get, nil, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
		panic(err)
	}
}
