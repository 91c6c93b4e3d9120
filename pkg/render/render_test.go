package render

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vhfix/pkg/host"
	"vhfix/pkg/viewport"
)

func TestFrameFromHostPixels(t *testing.T) {
	h := host.New(host.Config{UserAgent: "iPhone", Width: 390, InnerHeight: 800, VisualHeight: 780})
	viewport.New(h).Init(viewport.Options{ForceInApp: true})

	f, err := FrameFromHost(h, viewport.VariableNames{})
	require.NoError(t, err)
	assert.Equal(t, 800.0, f.Safe)
	assert.Equal(t, 780.0, f.Large)
	assert.Equal(t, "780px", f.LargeValue)
	assert.Equal(t, 780.0, f.VisualHeight)
}

func TestFrameFromHostNativeUnits(t *testing.T) {
	h := host.New(host.Config{UserAgent: "Desktop", Width: 390, InnerHeight: 800, VisualHeight: 700})
	viewport.New(h).Init(viewport.Options{VariableNames: viewport.VariableNames{Large: "--big"}})

	f, err := FrameFromHost(h, viewport.VariableNames{Large: "--big"})
	require.NoError(t, err)
	assert.Equal(t, "100svh", f.SafeValue)
	assert.Equal(t, 700.0, f.Safe)
	assert.Equal(t, 800.0, f.Large)
}

func TestFrameFromHostErrors(t *testing.T) {
	_, err := FrameFromHost(host.New(host.Config{NoDocument: true}), viewport.VariableNames{})
	assert.Error(t, err)

	_, err = FrameFromHost(host.New(host.Config{InnerHeight: 10}), viewport.VariableNames{})
	assert.ErrorContains(t, err, "--svh is not set")
}

func TestRender(t *testing.T) {
	f := Frame{Width: 100, InnerHeight: 200, VisualHeight: 150, Safe: 200, Large: 150, SafeValue: "200px", LargeValue: "150px"}
	r := NewRenderer(f)
	r.Render(f)

	img := r.Image()
	assert.Equal(t, 100+2*margin+160, img.Bounds().Dx())
	assert.Equal(t, 200+2*margin+24, img.Bounds().Dy())

	// Hidden strip below the visual viewport is shaded darker than the page.
	page := color.RGBAModel.Convert(img.At(margin+50, margin+50)).(color.RGBA)
	hidden := color.RGBAModel.Convert(img.At(margin+50, margin+175)).(color.RGBA)
	assert.Less(t, hidden.R, page.R)

	out := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, r.SavePNG(out))
}

func TestCompare(t *testing.T) {
	f := Frame{Width: 100, InnerHeight: 200, VisualHeight: 150, Safe: 200, Large: 150, SafeValue: "200px", LargeValue: "150px"}
	a := NewRenderer(f)
	a.Render(f)
	ref := filepath.Join(t.TempDir(), "ref.png")
	require.NoError(t, a.SavePNG(ref))

	same := NewRenderer(f)
	same.Render(f)
	d, err := same.CompareFile(ref, 0)
	require.NoError(t, err)
	assert.True(t, d.Match)
	assert.Zero(t, d.DifferentPixels)

	g := f
	g.VisualHeight, g.Large, g.LargeValue = 120, 120, "120px"
	moved := NewRenderer(g)
	moved.Render(g)
	d, err = moved.CompareFile(ref, 2)
	require.NoError(t, err)
	assert.False(t, d.Match)
	assert.Greater(t, d.DifferentPixels, 0)
	assert.Equal(t, d.TotalPixels, moved.Image().Bounds().Dx()*moved.Image().Bounds().Dy())

	tall := f
	tall.InnerHeight = 300
	other := NewRenderer(tall)
	_, err = Compare(other.Image(), a.Image(), 0)
	assert.ErrorContains(t, err, "sizes differ")

	_, err = same.CompareFile(filepath.Join(t.TempDir(), "missing.png"), 0)
	assert.Error(t, err)
}
