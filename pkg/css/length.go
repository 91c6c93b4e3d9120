package css

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"
)

// Viewport carries the sizes viewport-relative units resolve against.
// SmallHeight excludes dynamic toolbars, LargeHeight assumes they are
// retracted, DynamicHeight is the current value.
type Viewport struct {
	Width         float64
	SmallHeight   float64
	LargeHeight   float64
	DynamicHeight float64
}

// Length is a number with a unit. Unitless zero has an empty unit.
type Length struct {
	Value float64
	Unit  string
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit
}

// lengthUnits lists the units ParseLength accepts.
var lengthUnits = map[string]bool{
	"px": true, "vw": true, "vh": true,
	"svh": true, "lvh": true, "dvh": true,
	"svw": true, "lvw": true, "dvw": true,
	"vmin": true, "vmax": true,
}

// ParseLength parses a single length such as "780px", "100svh" or "0".
func ParseLength(s string) (Length, error) {
	var toks []*scanner.Token
	sc := scanner.New(strings.TrimSpace(s))
	for {
		tok := sc.Next()
		if tok.Type == scanner.TokenEOF {
			break
		}
		if tok.Type == scanner.TokenError {
			return Length{}, fmt.Errorf("invalid length %q", s)
		}
		if tok.Type == scanner.TokenS || tok.Type == scanner.TokenComment {
			continue
		}
		toks = append(toks, tok)
	}

	sign := 1.0
	if len(toks) == 2 && toks[0].Type == scanner.TokenChar && (toks[0].Value == "-" || toks[0].Value == "+") {
		if toks[0].Value == "-" {
			sign = -1
		}
		toks = toks[1:]
	}
	if len(toks) != 1 {
		return Length{}, fmt.Errorf("invalid length %q", s)
	}

	tok := toks[0]
	switch tok.Type {
	case scanner.TokenNumber:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil || v != 0 {
			return Length{}, fmt.Errorf("length %q needs a unit", s)
		}
		return Length{}, nil
	case scanner.TokenDimension:
		i := strings.IndexFunc(tok.Value, func(r rune) bool {
			return (r < '0' || r > '9') && r != '.'
		})
		v, err := strconv.ParseFloat(tok.Value[:i], 64)
		if err != nil {
			return Length{}, fmt.Errorf("invalid length %q: %w", s, err)
		}
		unit := strings.ToLower(tok.Value[i:])
		if !lengthUnits[unit] {
			return Length{}, fmt.Errorf("unknown unit %q in %q", unit, s)
		}
		return Length{Value: sign * v, Unit: unit}, nil
	}
	return Length{}, fmt.Errorf("invalid length %q", s)
}

// Pixels converts l to CSS pixels within vp.
func (l Length) Pixels(vp Viewport) float64 {
	pct := l.Value / 100
	switch l.Unit {
	case "", "px":
		return l.Value
	case "vw", "svw", "lvw", "dvw":
		return pct * vp.Width
	case "vh", "lvh":
		return pct * vp.LargeHeight
	case "svh":
		return pct * vp.SmallHeight
	case "dvh":
		return pct * vp.DynamicHeight
	case "vmin":
		return pct * min(vp.Width, vp.SmallHeight)
	case "vmax":
		return pct * max(vp.Width, vp.LargeHeight)
	}
	return 0
}

// ToPixels parses s and converts it to pixels within vp.
func ToPixels(s string, vp Viewport) (float64, error) {
	l, err := ParseLength(s)
	if err != nil {
		return 0, err
	}
	return l.Pixels(vp), nil
}
