package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInline(t *testing.T) {
	sd := ParseInline(`color: red; --svh: 800px; /* note */ height: calc(var(--svh) - 10px);;broken`)
	assert.Len(t, sd.Declarations(), 3)
	assert.Equal(t, "red", sd.GetPropertyValue("color"))
	assert.Equal(t, "800px", sd.GetPropertyValue("--svh"))
	assert.Equal(t, "calc(var(--svh) - 10px)", sd.GetPropertyValue("height"))
}

func TestStyleDeclarationSetProperty(t *testing.T) {
	sd := &StyleDeclaration{}
	sd.SetProperty("--svh", "800px")
	sd.SetProperty("Color", "blue")
	sd.SetProperty("--svh", "700px")
	assert.Equal(t, "--svh: 700px; color: blue;", sd.CSSText())

	// Custom property names keep their case.
	sd.SetProperty("--SVH", "1px")
	assert.Equal(t, "700px", sd.GetPropertyValue("--svh"))
	assert.Equal(t, "1px", sd.GetPropertyValue("--SVH"))

	sd.SetProperty("color", "")
	_, ok := sd.Lookup("color")
	assert.False(t, ok)

	assert.Equal(t, "700px", sd.RemoveProperty("--svh"))
	assert.Equal(t, "", sd.RemoveProperty("--svh"))
	assert.Equal(t, []Declaration{{Name: "--SVH", Value: "1px"}}, sd.Declarations())
}

func TestParseLength(t *testing.T) {
	cases := map[string]Length{
		"800px":   {Value: 800, Unit: "px"},
		"780.5px": {Value: 780.5, Unit: "px"},
		"100svh":  {Value: 100, Unit: "svh"},
		"100LVH":  {Value: 100, Unit: "lvh"},
		" 50vh ":  {Value: 50, Unit: "vh"},
		"-4px":    {Value: -4, Unit: "px"},
		"0":       {},
	}
	for in, want := range cases {
		got, err := ParseLength(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "12", "10em", "auto", "10px 20px", "50%"} {
		_, err := ParseLength(bad)
		assert.Error(t, err, bad)
	}
}

func TestLengthPixels(t *testing.T) {
	vp := Viewport{Width: 390, SmallHeight: 700, LargeHeight: 800, DynamicHeight: 750}
	cases := map[string]float64{
		"780px":   780,
		"100svh":  700,
		"100lvh":  800,
		"50dvh":   375,
		"100vh":   800,
		"10vw":    39,
		"100vmin": 390,
		"0":       0,
	}
	for in, want := range cases {
		got, err := ToPixels(in, vp)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	assert.Equal(t, "780.5px", Length{Value: 780.5, Unit: "px"}.String())
}

func TestResolve(t *testing.T) {
	props := map[string]string{
		"--svh":   "800px",
		"--alias": "var(--svh)",
		"--loop":  "var(--loop)",
	}
	lookup := func(name string) (string, bool) {
		v, ok := props[name]
		return v, ok
	}

	got, err := Resolve("var(--svh)", lookup)
	require.NoError(t, err)
	assert.Equal(t, "800px", got)

	got, err = Resolve("calc(var(--alias) - var(--missing, 20px))", lookup)
	require.NoError(t, err)
	assert.Equal(t, "calc(800px - 20px)", got)

	got, err = Resolve("var(--missing, var(--svh))", lookup)
	require.NoError(t, err)
	assert.Equal(t, "800px", got)

	_, err = Resolve("var(--missing)", lookup)
	assert.ErrorIs(t, err, ErrUnresolved)

	_, err = Resolve("var(--loop)", lookup)
	assert.Error(t, err)

	_, err = Resolve("var(--svh", lookup)
	assert.Error(t, err)

	_, err = Resolve("var(color)", lookup)
	assert.Error(t, err)
}

func TestSupports(t *testing.T) {
	assert.True(t, Supports("height: 100svh"))
	assert.True(t, Supports("(height: 100lvh)"))
	assert.True(t, Supports("height", "100dvh"))
	assert.True(t, Supports("--anything", "whatever"))
	assert.True(t, Supports("height: auto"))

	assert.False(t, Supports("height: 100qvh"))
	assert.False(t, Supports("height"))
	assert.False(t, Supports())
	assert.False(t, Supports("a", "b", "c"))
}
