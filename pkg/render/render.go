// Package render draws a phone-sized diagram of the viewport: the layout
// viewport, the visible area, and the two published heights.
package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"vhfix/pkg/css"
	"vhfix/pkg/host"
	"vhfix/pkg/viewport"
)

// Frame is what gets drawn, in CSS pixels.
type Frame struct {
	Width        float64
	InnerHeight  float64
	VisualHeight float64
	Safe         float64
	Large        float64
	SafeValue    string // as published, e.g. "800px" or "100svh"
	LargeValue   string
	Label        string
}

// FrameFromHost reads the published variables from h's root style and
// resolves them against the current window sizes, so native keyword values
// and pixel values draw the same way.
func FrameFromHost(h *host.Host, names viewport.VariableNames) (Frame, error) {
	win, root := h.Win(), h.Root()
	if win == nil || root == nil {
		return Frame{}, fmt.Errorf("host has no window or document")
	}
	vp := win.Viewport()
	f := Frame{
		Width:        vp.Width,
		InnerHeight:  win.InnerHeight(),
		VisualHeight: vp.DynamicHeight,
		Label:        h.UserAgent(),
	}

	names = names.Resolved()
	var err error
	if f.SafeValue, f.Safe, err = resolveVar(root, names.Safe, vp); err != nil {
		return Frame{}, err
	}
	if f.LargeValue, f.Large, err = resolveVar(root, names.Large, vp); err != nil {
		return Frame{}, err
	}
	return f, nil
}

func resolveVar(root *host.Element, name string, vp css.Viewport) (string, float64, error) {
	raw := root.GetPropertyValue(name)
	if raw == "" {
		return "", 0, fmt.Errorf("%s is not set", name)
	}
	resolved, err := root.Resolve(raw)
	if err != nil {
		return "", 0, fmt.Errorf("resolving %s: %w", name, err)
	}
	px, err := css.ToPixels(resolved, vp)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", name, err)
	}
	return raw, px, nil
}

const margin = 24

type Renderer struct {
	context *gg.Context
}

// NewRenderer sizes the canvas to fit the frame plus margins.
func NewRenderer(f Frame) *Renderer {
	h := max(f.InnerHeight, f.Large, f.Safe)
	w := int(f.Width) + 2*margin + 160
	return &Renderer{context: gg.NewContext(max(w, 1), int(h)+2*margin+24)}
}

func (r *Renderer) Render(f Frame) {
	dc := r.context
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	x0, y0 := float64(margin), float64(margin)

	// Layout viewport.
	dc.SetRGB(0.93, 0.93, 0.95)
	dc.DrawRectangle(x0, y0, f.Width, f.InnerHeight)
	dc.Fill()

	// Whatever the visual viewport hides (toolbars, keyboard).
	if f.VisualHeight < f.InnerHeight {
		dc.SetRGB(0.75, 0.75, 0.78)
		dc.DrawRectangle(x0, y0+f.VisualHeight, f.Width, f.InnerHeight-f.VisualHeight)
		dc.Fill()
	}

	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(2)
	dc.DrawRectangle(x0, y0, f.Width, f.InnerHeight)
	dc.Stroke()

	r.drawMarker(x0, y0+f.Safe, f.Width, "--svh "+f.SafeValue, 0.1, 0.4, 0.9)
	r.drawMarker(x0, y0+f.Large, f.Width, "--lvh "+f.LargeValue, 0.85, 0.2, 0.2)

	dc.SetRGB(0.3, 0.3, 0.3)
	dc.DrawString(f.Label, x0, y0+max(f.InnerHeight, f.Large, f.Safe)+18)
}

func (r *Renderer) drawMarker(x, y, width float64, label string, red, green, blue float64) {
	dc := r.context
	dc.SetRGB(red, green, blue)
	dc.SetLineWidth(2)
	dc.SetDash(6, 4)
	dc.DrawLine(x, y, x+width, y)
	dc.Stroke()
	dc.SetDash()
	dc.DrawString(label, x+width+8, y+4)
}

// Image returns the rendered canvas.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}
