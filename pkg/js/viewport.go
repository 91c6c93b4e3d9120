package js

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/dop251/goja"

	"vhfix/pkg/viewport"
)

// registerViewportHeight installs the `viewportHeight` global with the
// library entry points.
func (e *Engine) registerViewportHeight() {
	lib := e.vm.NewObject()
	lib.Set("initViewportHeight", e.initViewportHeight)
	lib.Set("setViewportHeight", e.initViewportHeight)
	lib.Set("isInApp", e.isInApp)
	lib.Set("computeHeights", e.computeHeights)
	lib.Set("applyVars", e.applyVars)
	lib.Set("defaultApps", viewport.DefaultApps.String())
	e.vm.Set("viewportHeight", lib)
}

func (e *Engine) initViewportHeight(call goja.FunctionCall) goja.Value {
	raw := e.optionsFromJS(call.Argument(0))
	stop, err := e.binding.InitRaw(raw)
	if err != nil {
		panic(e.vm.NewTypeError(err.Error()))
	}
	return e.vm.ToValue(func(goja.FunctionCall) goja.Value {
		stop()
		return goja.Undefined()
	})
}

func (e *Engine) isInApp(call goja.FunctionCall) goja.Value {
	ua := call.Argument(0).String()
	force := call.Argument(1).ToBoolean()
	var apps *regexp2.Regexp
	if arg := call.Argument(2); !isNullish(arg) {
		re, ok := e.regexpFromJS(arg)
		if !ok {
			panic(e.vm.NewTypeError("isInApp: apps must be a RegExp"))
		}
		apps = re
	}
	return e.vm.ToValue(viewport.IsInApp(ua, force, apps))
}

func (e *Engine) computeHeights(call goja.FunctionCall) goja.Value {
	h := e.binding.ComputeHeights(call.Argument(0).String(), call.Argument(1).ToBoolean())
	obj := e.vm.NewObject()
	obj.Set("svh", h.Safe)
	obj.Set("lvh", h.Large)
	return obj
}

func (e *Engine) applyVars(call goja.FunctionCall) goja.Value {
	var names viewport.VariableNames
	if arg := call.Argument(2); !isNullish(arg) {
		obj := arg.ToObject(e.vm)
		for _, f := range []struct {
			key string
			dst *string
		}{{"svh", &names.Safe}, {"lvh", &names.Large}} {
			v := obj.Get(f.key)
			if isNullish(v) {
				continue
			}
			s, ok := v.Export().(string)
			if !ok {
				panic(e.vm.NewTypeError("applyVars: variableNames.svh and .lvh must be strings when provided"))
			}
			*f.dst = s
		}
	}
	e.binding.ApplyVars(call.Argument(0).ToFloat(), call.Argument(1).ToFloat(), names)
	return goja.Undefined()
}

// optionsFromJS converts an options object into the loosely typed map
// viewport.DecodeOptions validates. Values that cannot be converted are
// passed through so validation reports them.
func (e *Engine) optionsFromJS(v goja.Value) map[string]any {
	if isNullish(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	raw := make(map[string]any)
	for _, key := range obj.Keys() {
		val := obj.Get(key)
		if isNullish(val) {
			continue
		}
		switch key {
		case "apps":
			if re, ok := e.regexpFromJS(val); ok {
				raw[key] = re
				continue
			}
		case "onUpdate":
			if fn, ok := goja.AssertFunction(val); ok {
				raw[key] = viewport.UpdateFunc(func(safe, large float64) {
					if _, err := fn(goja.Undefined(), e.vm.ToValue(safe), e.vm.ToValue(large)); err != nil {
						e.logger.Error("onUpdate failed", "err", err)
					}
				})
				continue
			}
		case "variableNames":
			if names, ok := val.(*goja.Object); ok && names.ClassName() == "Object" {
				m := make(map[string]any)
				for _, k := range []string{"svh", "lvh"} {
					if nv := names.Get(k); !isNullish(nv) {
						m[k] = nv.Export()
					}
				}
				raw[key] = m
				continue
			}
		}
		raw[key] = val.Export()
	}
	return raw
}

// regexpFlags maps RegExp flags onto regexp2 options. Flags that only
// affect iteration or match indices map to None.
var regexpFlags = map[rune]regexp2.RegexOptions{
	'g': regexp2.None,
	'd': regexp2.None,
	'i': regexp2.IgnoreCase,
	'm': regexp2.Multiline,
	's': regexp2.Singleline,
	'u': regexp2.Unicode,
}

// regexpFromJS recompiles a JS RegExp with regexp2's ECMAScript dialect.
// Matching is case-insensitive whatever the flags say. Flags regexp2 cannot
// honor (y, v) throw a TypeError.
func (e *Engine) regexpFromJS(v goja.Value) (*regexp2.Regexp, bool) {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ClassName() != "RegExp" {
		return nil, false
	}
	src := obj.Get("source").String()
	opts := regexp2.RegexOptions(regexp2.ECMAScript | regexp2.IgnoreCase)
	for _, f := range obj.Get("flags").String() {
		o, ok := regexpFlags[f]
		if !ok {
			panic(e.vm.NewTypeError(fmt.Sprintf("unsupported RegExp flag %q in /%s/", f, src)))
		}
		opts |= o
	}
	re, err := regexp2.Compile(src, opts)
	if err != nil {
		panic(e.vm.NewTypeError("invalid RegExp /" + src + "/: " + err.Error()))
	}
	return re, true
}

func isNullish(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}
