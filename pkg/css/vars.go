package css

import (
	"errors"
	"fmt"
	"strings"
)

// maxVarDepth bounds nested var() substitution, which also stops cycles.
const maxVarDepth = 32

// ErrUnresolved is returned when a var() reference has neither a value nor
// a fallback.
var ErrUnresolved = errors.New("unresolved custom property")

// LookupFunc returns the value of a custom property.
type LookupFunc func(name string) (string, bool)

// Resolve substitutes every var(--name[, fallback]) in value.
func Resolve(value string, lookup LookupFunc) (string, error) {
	return resolve(value, lookup, 0)
}

func resolve(value string, lookup LookupFunc, depth int) (string, error) {
	if depth > maxVarDepth {
		return "", fmt.Errorf("var() nesting too deep in %q", value)
	}
	var sb strings.Builder
	rest := value
	for {
		i := strings.Index(rest, "var(")
		if i < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:i])
		body, tail, ok := matchParen(rest[i+len("var("):])
		if !ok {
			return "", fmt.Errorf("unbalanced var() in %q", value)
		}
		name, fallback, hasFallback := strings.Cut(body, ",")
		name = strings.TrimSpace(name)
		if !IsCustomProperty(name) {
			return "", fmt.Errorf("var() argument %q is not a custom property", name)
		}

		sub, found := lookup(name)
		if !found {
			if !hasFallback {
				return "", fmt.Errorf("%w: %s", ErrUnresolved, name)
			}
			sub = strings.TrimSpace(fallback)
		}
		resolved, err := resolve(sub, lookup, depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(resolved)
		rest = tail
	}
	return strings.TrimSpace(sb.String()), nil
}

// matchParen splits s at the parenthesis closing an already opened one.
func matchParen(s string) (body, tail string, ok bool) {
	depth := 1
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Supports answers a feature query the way CSS.supports does, either as a
// single "(prop: value)" condition or as a property and value pair. Only
// lengths and a few global keywords are understood; custom properties accept
// any value.
func Supports(args ...string) bool {
	var prop, value string
	switch len(args) {
	case 1:
		cond := strings.TrimSpace(args[0])
		cond = strings.TrimSuffix(strings.TrimPrefix(cond, "("), ")")
		decls := splitDeclarations(cond)
		if len(decls) != 1 {
			return false
		}
		prop, value = decls[0].Name, decls[0].Value
	case 2:
		prop, value = strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	default:
		return false
	}
	if prop == "" || value == "" {
		return false
	}
	if IsCustomProperty(prop) {
		return true
	}
	switch strings.ToLower(value) {
	case "auto", "inherit", "initial", "unset", "revert":
		return true
	}
	_, err := ParseLength(value)
	return err == nil
}
