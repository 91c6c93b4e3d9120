package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Diff summarizes a pixel comparison between two snapshots.
type Diff struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest 8-bit channel difference seen
}

// Compare reports the pixels of actual that differ from expected by more
// than tolerance in any channel. Snapshots of different sizes never match.
func Compare(actual, expected image.Image, tolerance int) (Diff, error) {
	ab, eb := actual.Bounds(), expected.Bounds()
	if ab.Size() != eb.Size() {
		return Diff{}, fmt.Errorf("snapshot sizes differ: %v vs %v", ab.Size(), eb.Size())
	}
	d := Diff{Match: true, TotalPixels: ab.Dx() * ab.Dy()}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			diff := pixelDiff(actual.At(ab.Min.X+x, ab.Min.Y+y), expected.At(eb.Min.X+x, eb.Min.Y+y))
			d.MaxDifference = max(d.MaxDifference, diff)
			if diff > tolerance {
				d.Match = false
				d.DifferentPixels++
			}
		}
	}
	return d, nil
}

func pixelDiff(a, b color.Color) int {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return max(
		absDiff(ar>>8, br>>8),
		absDiff(ag>>8, bg>>8),
		absDiff(ab>>8, bb>>8),
		absDiff(aa>>8, ba>>8),
	)
}

func absDiff(a, b uint32) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// CompareFile compares the rendered image with a reference PNG.
func (r *Renderer) CompareFile(path string, tolerance int) (Diff, error) {
	expected, err := gg.LoadPNG(path)
	if err != nil {
		return Diff{}, fmt.Errorf("loading reference %s: %w", path, err)
	}
	return Compare(r.Image(), expected, tolerance)
}
