package engine

// Canvas is a slide size in EMU (English Metric Units, 914400 per inch).
type Canvas struct {
	Width  int64
	Height int64
}

var (
	// CanvasWide is the 16:9 slide size.
	CanvasWide = Canvas{Width: 12192000, Height: 6858000}
	// CanvasStandard is the 4:3 slide size.
	CanvasStandard = Canvas{Width: 9144000, Height: 6858000}
)

// CanvasFor maps a configured slide size ("16:9" or "4:3") to a Canvas.
// Anything else yields the wide canvas.
func CanvasFor(size string) Canvas {
	if size == "4:3" {
		return CanvasStandard
	}
	return CanvasWide
}

// Placement is the position and size of an image on a canvas.
type Placement struct {
	Left   int64
	Top    int64
	Width  int64
	Height int64
}

// Fit scales an image of imgW x imgH to fill the canvas along one axis while
// keeping its aspect ratio, then centers it. The result never exceeds the
// canvas. A degenerate image size yields the full canvas.
func Fit(c Canvas, imgW, imgH int) Placement {
	if imgW <= 0 || imgH <= 0 || c.Width <= 0 || c.Height <= 0 {
		return Placement{Width: c.Width, Height: c.Height}
	}
	imgRatio := float64(imgW) / float64(imgH)
	canvasRatio := float64(c.Width) / float64(c.Height)

	var w, h int64
	if imgRatio > canvasRatio {
		w = c.Width
		h = int64(float64(w) / imgRatio)
	} else {
		h = c.Height
		w = int64(float64(h) * imgRatio)
	}
	if w > c.Width {
		w = c.Width
	}
	if h > c.Height {
		h = c.Height
	}
	return Placement{
		Left:   (c.Width - w) / 2,
		Top:    (c.Height - h) / 2,
		Width:  w,
		Height: h,
	}
}
