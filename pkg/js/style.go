package js

import (
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"vhfix/pkg/css"
	"vhfix/pkg/host"
)

// registerDocument sets up `document` with a documentElement whose style
// writes through to the host root. Hosts without a document leave the
// global undefined.
func (e *Engine) registerDocument() {
	root := e.host.Root()
	if root == nil {
		return
	}
	el := e.vm.NewObject()
	el.Set("tagName", "HTML")
	el.Set("style", e.vm.NewDynamicObject(&styleAccessor{vm: e.vm, el: root}))

	doc := e.vm.NewObject()
	doc.Set("documentElement", el)
	e.vm.Set("document", doc)
}

func (e *Engine) registerCSS() {
	obj := e.vm.NewObject()
	obj.Set("supports", func(call goja.FunctionCall) goja.Value {
		args := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.String()
		}
		return e.vm.ToValue(css.Supports(args...))
	})
	e.vm.Set("CSS", obj)
}

// styleAccessor implements goja.DynamicObject as a CSSStyleDeclaration.
// camelCase properties map to kebab-case declarations; custom properties
// are reached through setProperty and getPropertyValue.
type styleAccessor struct {
	vm *goja.Runtime
	el *host.Element
}

func (s *styleAccessor) Get(key string) goja.Value {
	switch key {
	case "setProperty":
		return s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(s.vm.NewTypeError("Failed to execute 'setProperty' on 'CSSStyleDeclaration': 2 arguments required"))
			}
			s.el.SetProperty(call.Arguments[0].String(), valueString(call.Arguments[1]))
			return goja.Undefined()
		})
	case "getPropertyValue":
		return s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return s.vm.ToValue("")
			}
			return s.vm.ToValue(s.el.GetPropertyValue(call.Arguments[0].String()))
		})
	case "removeProperty":
		return s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return s.vm.ToValue("")
			}
			return s.vm.ToValue(s.el.RemoveProperty(call.Arguments[0].String()))
		})
	case "cssText":
		return s.vm.ToValue(s.el.CSSText())
	}
	return s.vm.ToValue(s.el.GetPropertyValue(camelToKebab(key)))
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	if key == "cssText" {
		s.el.SetCSSText(val.String())
		return true
	}
	s.el.SetProperty(camelToKebab(key), valueString(val))
	return true
}

func (s *styleAccessor) Has(key string) bool {
	return true
}

func (s *styleAccessor) Delete(key string) bool {
	s.el.RemoveProperty(camelToKebab(key))
	return true
}

func (s *styleAccessor) Keys() []string {
	decls := css.ParseInline(s.el.CSSText()).Declarations()
	keys := make([]string, 0, len(decls))
	for _, d := range decls {
		keys = append(keys, d.Name)
	}
	return keys
}

// valueString converts a JS value for a style write; null and undefined
// clear the property.
func valueString(v goja.Value) string {
	if v == nil || goja.IsNull(v) || goja.IsUndefined(v) {
		return ""
	}
	return v.String()
}

// camelToKebab converts a JS camelCase property name to CSS kebab-case.
// Custom properties pass through untouched.
func camelToKebab(s string) string {
	if css.IsCustomProperty(s) {
		return s
	}
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
