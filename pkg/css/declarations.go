// Package css holds the small slice of CSS the viewport hosts need: inline
// style declarations, custom property substitution, viewport-relative
// lengths and feature queries.
package css

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// Declaration is one property: value pair.
type Declaration struct {
	Name  string
	Value string
}

// StyleDeclaration is an ordered inline style block, like an element's
// style attribute.
type StyleDeclaration struct {
	decls []Declaration
}

// ParseInline parses the contents of a style attribute. Malformed
// declarations are skipped.
func ParseInline(s string) *StyleDeclaration {
	sd := &StyleDeclaration{}
	for _, d := range splitDeclarations(s) {
		sd.SetProperty(d.Name, d.Value)
	}
	return sd
}

// IsCustomProperty reports whether name is a custom property (--foo).
func IsCustomProperty(name string) bool {
	return strings.HasPrefix(name, "--")
}

// normalizeName lowercases standard properties; custom properties are case
// sensitive.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if IsCustomProperty(name) {
		return name
	}
	return strings.ToLower(name)
}

// SetProperty sets name to value, keeping the original position of an
// existing declaration. An empty value removes the property.
func (sd *StyleDeclaration) SetProperty(name, value string) {
	name = normalizeName(name)
	value = strings.TrimSpace(value)
	if name == "" {
		return
	}
	if value == "" {
		sd.RemoveProperty(name)
		return
	}
	for i := range sd.decls {
		if sd.decls[i].Name == name {
			sd.decls[i].Value = value
			return
		}
	}
	sd.decls = append(sd.decls, Declaration{Name: name, Value: value})
}

// GetPropertyValue returns the value of name or "".
func (sd *StyleDeclaration) GetPropertyValue(name string) string {
	v, _ := sd.Lookup(name)
	return v
}

// Lookup returns the value of name and whether it is set.
func (sd *StyleDeclaration) Lookup(name string) (string, bool) {
	name = normalizeName(name)
	for _, d := range sd.decls {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

// RemoveProperty deletes name and returns its previous value.
func (sd *StyleDeclaration) RemoveProperty(name string) string {
	name = normalizeName(name)
	for i, d := range sd.decls {
		if d.Name == name {
			sd.decls = append(sd.decls[:i], sd.decls[i+1:]...)
			return d.Value
		}
	}
	return ""
}

// Declarations returns a copy of the declarations in order.
func (sd *StyleDeclaration) Declarations() []Declaration {
	out := make([]Declaration, len(sd.decls))
	copy(out, sd.decls)
	return out
}

// CSSText serializes the block as a style attribute value.
func (sd *StyleDeclaration) CSSText() string {
	parts := make([]string, 0, len(sd.decls))
	for _, d := range sd.decls {
		parts = append(parts, d.Name+": "+d.Value+";")
	}
	return strings.Join(parts, " ")
}

// splitDeclarations tokenizes a declaration block, splitting on top-level
// semicolons and the first top-level colon of each declaration.
func splitDeclarations(s string) []Declaration {
	var (
		out     []Declaration
		name    strings.Builder
		value   strings.Builder
		inValue bool
		depth   int
	)
	flush := func() {
		n := strings.TrimSpace(name.String())
		v := strings.TrimSpace(value.String())
		if inValue && n != "" && v != "" {
			out = append(out, Declaration{Name: n, Value: v})
		}
		name.Reset()
		value.Reset()
		inValue = false
	}

	sc := scanner.New(s)
	for {
		tok := sc.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		text := tok.Value
		switch tok.Type {
		case scanner.TokenComment:
			continue
		case scanner.TokenS:
			text = " "
		case scanner.TokenFunction:
			depth++
		case scanner.TokenChar:
			switch text {
			case "(":
				depth++
			case ")":
				if depth > 0 {
					depth--
				}
			case ";":
				if depth == 0 {
					flush()
					continue
				}
			case ":":
				if depth == 0 && !inValue {
					inValue = true
					continue
				}
			}
		}
		if inValue {
			value.WriteString(text)
		} else {
			name.WriteString(text)
		}
	}
	flush()
	return out
}
