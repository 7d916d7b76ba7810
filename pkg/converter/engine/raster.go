package engine

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/stackvity/converty/pkg/converter/deck"
)

// DefaultDPI is the resolution PDF pages are rendered at.
const DefaultDPI float64 = 200

// Document is an opened page-image source.
type Document interface {
	NumPage() int
	Page(i int) (image.Image, error)
	Close() error
}

// PageSource opens a PDF as an ordered sequence of page images.
type PageSource interface {
	Open(path string) (Document, error)
}

// FitzPageSource renders PDF pages with MuPDF through go-fitz.
type FitzPageSource struct {
	DPI float64
}

// Open implements PageSource.
func (s FitzPageSource) Open(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	dpi := s.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &fitzDocument{doc: doc, dpi: dpi}, nil
}

type fitzDocument struct {
	doc *fitz.Document
	dpi float64
}

func (d *fitzDocument) NumPage() int { return d.doc.NumPage() }

func (d *fitzDocument) Page(i int) (image.Image, error) {
	img, err := d.doc.ImageDPI(i, d.dpi)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (d *fitzDocument) Close() error { return d.doc.Close() }

// RasterBackend converts PDFs into decks with one picture slide per page.
type RasterBackend struct {
	source PageSource
	canvas Canvas
	logger *slog.Logger
}

// NewRasterBackend creates the RasterToDeck backend. A nil source uses
// FitzPageSource at DefaultDPI.
func NewRasterBackend(source PageSource, canvas Canvas, loggerHandler slog.Handler) *RasterBackend {
	if source == nil {
		source = FitzPageSource{DPI: DefaultDPI}
	}
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	if canvas.Width <= 0 || canvas.Height <= 0 {
		canvas = CanvasWide
	}
	return &RasterBackend{
		source: source,
		canvas: canvas,
		logger: slog.New(loggerHandler).With(slog.String("component", "rasterBackend")),
	}
}

// Name implements Backend.
func (b *RasterBackend) Name() string { return "raster" }

// Concurrent implements Backend.
func (b *RasterBackend) Concurrent() bool { return false }

// Open implements Backend. The raster backend holds nothing across files.
func (b *RasterBackend) Open(ctx context.Context) (Session, error) {
	return &rasterSession{b: b}, nil
}

type rasterSession struct {
	b *RasterBackend
}

func (s *rasterSession) Close() error { return nil }

// Convert renders every page of inputPath and writes the deck atomically.
func (s *rasterSession) Convert(ctx context.Context, inputPath, outputDir string) (string, error) {
	b := s.b
	doc, err := b.source.Open(inputPath)
	if err != nil {
		return "", WrapConversionError(err, "cannot open %s", filepath.Base(inputPath))
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return "", Errorf("%s has no pages", filepath.Base(inputPath))
	}

	outPath := OutputPath(inputPath, outputDir, ".pptx")
	tmp, err := os.CreateTemp(outputDir, ".converty-*.pptx")
	if err != nil {
		return "", WrapConversionError(err, "cannot create temporary deck in %s", outputDir)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	title := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	builder, err := deck.NewBuilder(tmp, deck.Size{Width: b.canvas.Width, Height: b.canvas.Height}, title)
	if err != nil {
		return "", WrapConversionError(err, "cannot start deck for %s", filepath.Base(inputPath))
	}

	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	var buf bytes.Buffer
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		img, err := doc.Page(i)
		if err != nil {
			return "", WrapConversionError(err, "cannot render page %d of %s", i+1, filepath.Base(inputPath))
		}
		buf.Reset()
		if err := enc.Encode(&buf, img); err != nil {
			return "", WrapConversionError(err, "cannot encode page %d of %s", i+1, filepath.Base(inputPath))
		}
		bounds := img.Bounds()
		p := Fit(b.canvas, bounds.Dx(), bounds.Dy())
		pic := deck.Picture{
			PNG:    buf.Bytes(),
			Left:   p.Left,
			Top:    p.Top,
			Width:  p.Width,
			Height: p.Height,
		}
		if err := builder.AddSlide(pic); err != nil {
			return "", WrapConversionError(err, "cannot add slide %d for %s", i+1, filepath.Base(inputPath))
		}
	}

	if err := builder.Close(); err != nil {
		return "", WrapConversionError(err, "cannot finish deck for %s", filepath.Base(inputPath))
	}
	if err := tmp.Close(); err != nil {
		return "", WrapConversionError(err, "cannot close temporary deck %s", tmpPath)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return "", WrapConversionError(err, "cannot move deck into place at %s", outPath)
	}
	committed = true

	b.logger.Debug("Deck written", slog.String("path", outPath), slog.Int("slides", pages))
	return outPath, nil
}
