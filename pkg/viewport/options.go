package viewport

import (
	"errors"
	"fmt"

	"github.com/dlclark/regexp2"
)

// Default custom property names.
const (
	DefaultSafeName  = "--svh"
	DefaultLargeName = "--lvh"
)

// UpdateFunc receives the published heights after every compensated update.
type UpdateFunc func(safe, large float64)

// VariableNames overrides the custom property names. Empty fields keep the
// defaults.
type VariableNames struct {
	Safe  string
	Large string
}

func (n VariableNames) safe() string {
	if n.Safe == "" {
		return DefaultSafeName
	}
	return n.Safe
}

func (n VariableNames) large() string {
	if n.Large == "" {
		return DefaultLargeName
	}
	return n.Large
}

// Resolved returns n with empty names replaced by the defaults.
func (n VariableNames) Resolved() VariableNames {
	return VariableNames{Safe: n.safe(), Large: n.large()}
}

// Options controls classification and publishing. The zero value is the
// documented default.
type Options struct {
	// ForceInApp takes the compensated branch regardless of the user agent.
	ForceInApp bool
	// UseMinOnIOS caps the large height on iOS at min(visual, inner).
	// nil means true.
	UseMinOnIOS   *bool
	VariableNames VariableNames
	// Apps replaces DefaultApps for app detection.
	Apps *regexp2.Regexp
	// UpdateOnFocus also recomputes on focusin and focusout, which fire when
	// on-screen keyboards open without a resize.
	UpdateOnFocus bool
	OnUpdate      UpdateFunc
}

// CapOnIOS reports whether the large height is capped on iOS.
func (o Options) CapOnIOS() bool {
	return o.UseMinOnIOS == nil || *o.UseMinOnIOS
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// ErrInvalidOptions is wrapped by every OptionError.
var ErrInvalidOptions = errors.New("invalid viewport options")

// OptionError reports an option whose value has the wrong type.
type OptionError struct {
	Field   string
	Message string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("initViewportHeight: options.%s %s", e.Field, e.Message)
}

func (e *OptionError) Unwrap() error {
	return ErrInvalidOptions
}

// DecodeOptions converts loosely typed options, as produced by script
// bindings or configuration files, into Options. Keys follow the original
// library: forceInApp, useMinOnIOS, variableNames{svh,lvh}, apps,
// updateOnFocus, onUpdate. Nil values count as absent; unknown keys are
// ignored.
func DecodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	if raw == nil {
		return opts, nil
	}

	var err error
	if opts.ForceInApp, err = decodeBool(raw, "forceInApp"); err != nil {
		return Options{}, err
	}
	if v, ok := raw["useMinOnIOS"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return Options{}, &OptionError{Field: "useMinOnIOS", Message: "must be a boolean"}
		}
		opts.UseMinOnIOS = Bool(b)
	}
	if v, ok := raw["variableNames"]; ok && v != nil {
		if opts.VariableNames, err = decodeNames(v); err != nil {
			return Options{}, err
		}
	}
	if v, ok := raw["apps"]; ok && v != nil {
		re, ok := v.(*regexp2.Regexp)
		if !ok {
			return Options{}, &OptionError{Field: "apps", Message: "must be a RegExp"}
		}
		opts.Apps = re
	}
	if opts.UpdateOnFocus, err = decodeBool(raw, "updateOnFocus"); err != nil {
		return Options{}, err
	}
	if v, ok := raw["onUpdate"]; ok && v != nil {
		switch fn := v.(type) {
		case UpdateFunc:
			opts.OnUpdate = fn
		case func(safe, large float64):
			opts.OnUpdate = fn
		default:
			return Options{}, &OptionError{Field: "onUpdate", Message: "must be a function"}
		}
	}
	return opts, nil
}

func decodeBool(raw map[string]any, key string) (bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &OptionError{Field: key, Message: "must be a boolean"}
	}
	return b, nil
}

func decodeNames(v any) (VariableNames, error) {
	switch n := v.(type) {
	case VariableNames:
		return n, nil
	case map[string]string:
		return VariableNames{Safe: n["svh"], Large: n["lvh"]}, nil
	case map[string]any:
		var names VariableNames
		fields := []struct {
			key string
			dst *string
		}{{"svh", &names.Safe}, {"lvh", &names.Large}}
		for _, f := range fields {
			key, dst := f.key, f.dst
			val, ok := n[key]
			if !ok || val == nil {
				continue
			}
			s, ok := val.(string)
			if !ok {
				return VariableNames{}, &OptionError{Field: "variableNames." + key, Message: "must be a string"}
			}
			*dst = s
		}
		return names, nil
	}
	return VariableNames{}, &OptionError{Field: "variableNames", Message: "must be an object"}
}

// CompileApps compiles a user supplied app pattern. Matching is always
// case-insensitive.
func CompileApps(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("compiling apps pattern %q: %w", pattern, err)
	}
	return re, nil
}
