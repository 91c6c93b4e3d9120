package js

import (
	"strings"

	"github.com/dop251/goja"
)

// registerConsole binds console.log, info, debug, warn and error to the
// engine logger.
func (e *Engine) registerConsole() {
	console := e.vm.NewObject()
	console.Set("log", e.consoleFn(e.logger.Info))
	console.Set("info", e.consoleFn(e.logger.Info))
	console.Set("debug", e.consoleFn(e.logger.Debug))
	console.Set("warn", e.consoleFn(e.logger.Warn))
	console.Set("error", e.consoleFn(e.logger.Error))
	e.vm.Set("console", console)
}

func (e *Engine) consoleFn(emit func(msg interface{}, keyvals ...interface{})) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		emit(formatArgs(call.Arguments))
		return goja.Undefined()
	}
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
