// Command vhview is a desktop simulator of an in-app browser. Resizing the
// window, switching the user agent and toggling the app toolbar or the
// on-screen keyboard drive the orchestrator live, and the published
// heights are drawn over the viewport.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"vhfix/internal/config"
	"vhfix/pkg/render"
)

// sizeReporter lays out a single object to fill the space and reports the
// size it was given.
type sizeReporter struct {
	onResize func(fyne.Size)
	last     fyne.Size
}

func (r *sizeReporter) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, o := range objects {
		o.Resize(size)
		o.Move(fyne.NewPos(0, 0))
	}
	if size != r.last {
		r.last = size
		r.onResize(size)
	}
}

func (r *sizeReporter) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(200, 300)
}

func main() {
	configPath := flag.String("c", "", "device and options YAML file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	config.LoadEnv(".env")
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	v, err := newViewer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer v.close()

	a := app.New()
	w := a.NewWindow("vhview")
	w.Resize(fyne.NewSize(float32(cfg.Width)+40, float32(cfg.InnerHeight)+120))

	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillContain
	status := widget.NewLabel("")

	v.onFrame = func(f render.Frame) {
		r := render.NewRenderer(f)
		r.Render(f)
		fyne.Do(func() {
			img.Image = r.Image()
			img.Refresh()
			status.SetText(fmt.Sprintf("%s   svh %s (%gpx)   lvh %s (%gpx)",
				f.Label, f.SafeValue, f.Safe, f.LargeValue, f.Large))
		})
	}

	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.name
	}
	force := widget.NewCheck("Force in-app", nil)
	uaSelect := widget.NewSelect(names, nil)
	current := func() string {
		for _, p := range presets {
			if p.name == uaSelect.Selected {
				return p.ua
			}
		}
		return cfg.UserAgent
	}
	uaSelect.OnChanged = func(string) { v.restart(current(), force.Checked) }
	force.OnChanged = func(on bool) { v.restart(current(), on) }

	toolbar := widget.NewCheck("App toolbar", v.setToolbar)
	keyboard := widget.NewCheck("Keyboard", v.setKeyboard)

	viewportArea := container.New(&sizeReporter{onResize: func(s fyne.Size) {
		v.resize(float64(s.Width), float64(s.Height))
	}}, img)

	controls := container.NewHBox(uaSelect, force, toolbar, keyboard)
	w.SetContent(container.NewBorder(controls, status, nil, nil, viewportArea))

	v.restart(cfg.UserAgent, false)
	w.ShowAndRun()
}
