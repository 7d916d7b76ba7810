package converter

import (
	"log/slog"

	"github.com/stackvity/converty/pkg/converter/engine"
)

// NewResolver wires the three backends from opts: go-fitz rasterization for
// RasterToDeck, the presentation application for automation and the headless
// office binary run through opts.ProcessRunner.
func NewResolver(opts Options, loggerHandler slog.Handler) *engine.Resolver {
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	launcher := opts.AppLauncher
	if launcher == nil {
		launcher = engine.DefaultLauncher()
	}
	return &engine.Resolver{
		Raster:     engine.NewRasterBackend(engine.FitzPageSource{DPI: dpi}, engine.CanvasFor(opts.SlideSize), loggerHandler),
		Automation: engine.NewAutomationBackend(launcher, loggerHandler),
		Headless: engine.NewHeadlessBackend(opts.ProcessRunner, engine.HeadlessOptions{
			Binary: opts.SofficePath,
			Slots:  opts.Concurrency,
		}, loggerHandler),
	}
}
