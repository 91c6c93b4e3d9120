package cli

import (
	"fmt"
	"strconv"
	"strings"

	"vhfix/pkg/host"
	"vhfix/pkg/viewport"
)

// Step is one simulated host change replayed by run and snapshot.
type Step struct {
	Kind   string // resize, visual, keyboard, focus, blur, rotate
	Width  float64
	Inner  float64
	Visual float64
}

// ParseStep parses resize=W:H[:V], visual=H, keyboard=H, focus, blur or
// rotate.
func ParseStep(s string) (Step, error) {
	kind, arg, hasArg := strings.Cut(strings.TrimSpace(s), "=")
	switch kind {
	case "focus", "blur", "rotate":
		if hasArg {
			return Step{}, fmt.Errorf("step %q takes no value", kind)
		}
		return Step{Kind: kind}, nil
	case "keyboard", "visual":
		v, err := parseNumbers(arg, 1, 1)
		if err != nil {
			return Step{}, fmt.Errorf("step %q: %w", s, err)
		}
		return Step{Kind: kind, Visual: v[0]}, nil
	case "resize":
		v, err := parseNumbers(arg, 2, 3)
		if err != nil {
			return Step{}, fmt.Errorf("step %q: %w", s, err)
		}
		st := Step{Kind: kind, Width: v[0], Inner: v[1], Visual: v[1]}
		if len(v) == 3 {
			st.Visual = v[2]
		}
		return st, nil
	}
	return Step{}, fmt.Errorf("unknown step %q", s)
}

// ParseSteps parses every step, failing on the first bad one.
func ParseSteps(specs []string) ([]Step, error) {
	steps := make([]Step, 0, len(specs))
	for _, s := range specs {
		st, err := ParseStep(s)
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func parseNumbers(s string, minN, maxN int) ([]float64, error) {
	if s == "" {
		return nil, fmt.Errorf("missing value")
	}
	parts := strings.Split(s, ":")
	if len(parts) < minN || len(parts) > maxN {
		return nil, fmt.Errorf("want %d to %d values, got %d", minN, maxN, len(parts))
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		if f < 0 {
			return nil, fmt.Errorf("negative size %g", f)
		}
		out[i] = f
	}
	return out, nil
}

// Apply performs the step on w, firing the events a browser would.
func (s Step) Apply(w *host.Window) {
	switch s.Kind {
	case "resize":
		w.Resize(s.Width, s.Inner, s.Visual)
	case "keyboard":
		w.ShowKeyboard(s.Visual)
	case "visual":
		if vv := w.Visual(); vv != nil {
			vv.SetHeight(s.Visual)
		}
	case "blur":
		w.HideKeyboard()
	case "focus":
		w.DispatchEvent(viewport.EventFocusIn)
	case "rotate":
		w.Rotate()
	}
}

func (s Step) String() string {
	switch s.Kind {
	case "resize":
		return fmt.Sprintf("resize=%g:%g:%g", s.Width, s.Inner, s.Visual)
	case "keyboard", "visual":
		return fmt.Sprintf("%s=%g", s.Kind, s.Visual)
	}
	return s.Kind
}
