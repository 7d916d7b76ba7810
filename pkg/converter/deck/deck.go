// Package deck writes minimal PresentationML (.pptx) packages whose slides each
// carry a single full-bleed picture.
package deck

import (
	"bytes"
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/klauspost/compress/zip"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ErrBuilderClosed is returned when a slide is added after Close.
var ErrBuilderClosed = errors.New("deck builder already closed")

// Size is the slide size in EMU.
type Size struct {
	Width  int64
	Height int64
}

// Picture is one slide: a PNG image and where it sits on the slide, in EMU.
type Picture struct {
	PNG    []byte
	Left   int64
	Top    int64
	Width  int64
	Height int64
}

type slideRef struct {
	Number int
	ID     int
	RelID  string
}

type slideData struct {
	Number int
	Left   int64
	Top    int64
	Width  int64
	Height int64
}

type packageData struct {
	Size    Size
	Slides  []slideRef
	Title   string
	Created string
}

var funcs = template.FuncMap{
	"xml": func(s string) (string, error) {
		var buf bytes.Buffer
		if err := xml.EscapeText(&buf, []byte(s)); err != nil {
			return "", err
		}
		return buf.String(), nil
	},
}

// loadTemplates parses the embedded package part templates.
func loadTemplates() (*template.Template, error) {
	tmpl, err := template.New("deck").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded deck templates: %w", err)
	}
	return tmpl, nil
}

// Builder streams slides into a .pptx package. Slide parts are written as
// they are added; the parts that list every slide are written by Close.
type Builder struct {
	zw     *zip.Writer
	tmpl   *template.Template
	size   Size
	title  string
	now    func() time.Time
	slides []slideRef
	closed bool
}

// NewBuilder starts a package on w. title ends up in the document properties.
func NewBuilder(w io.Writer, size Size, title string) (*Builder, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Builder{
		zw:    zip.NewWriter(w),
		tmpl:  tmpl,
		size:  size,
		title: title,
		now:   time.Now,
	}, nil
}

// Slides returns the number of slides added so far.
func (b *Builder) Slides() int { return len(b.slides) }

// AddSlide appends a slide showing pic.
func (b *Builder) AddSlide(pic Picture) error {
	if b.closed {
		return ErrBuilderClosed
	}
	n := len(b.slides) + 1
	// PNG data is already compressed.
	if err := b.writeRaw(fmt.Sprintf("ppt/media/image%d.png", n), pic.PNG, zip.Store); err != nil {
		return err
	}
	data := slideData{Number: n, Left: pic.Left, Top: pic.Top, Width: pic.Width, Height: pic.Height}
	if err := b.writePart(fmt.Sprintf("ppt/slides/slide%d.xml", n), "slide.xml.tmpl", data); err != nil {
		return err
	}
	if err := b.writePart(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), "slide.rels.tmpl", data); err != nil {
		return err
	}
	// Slide ids start at 256; rId1 and rId2 belong to the master and theme.
	b.slides = append(b.slides, slideRef{Number: n, ID: 255 + n, RelID: fmt.Sprintf("rId%d", n+2)})
	return nil
}

// Close writes the package-level parts and finishes the archive. It does not
// close the underlying writer.
func (b *Builder) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	data := packageData{
		Size:    b.size,
		Slides:  b.slides,
		Title:   b.title,
		Created: b.now().UTC().Format(time.RFC3339),
	}
	parts := []struct{ name, tmpl string }{
		{"[Content_Types].xml", "content_types.xml.tmpl"},
		{"_rels/.rels", "root.rels.tmpl"},
		{"docProps/core.xml", "core.xml.tmpl"},
		{"ppt/presentation.xml", "presentation.xml.tmpl"},
		{"ppt/_rels/presentation.xml.rels", "presentation.rels.tmpl"},
		{"ppt/slideMasters/slideMaster1.xml", "slide_master.xml.tmpl"},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "slide_master.rels.tmpl"},
		{"ppt/slideLayouts/slideLayout1.xml", "slide_layout.xml.tmpl"},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", "slide_layout.rels.tmpl"},
		{"ppt/theme/theme1.xml", "theme.xml.tmpl"},
	}
	for _, p := range parts {
		if err := b.writePart(p.name, p.tmpl, data); err != nil {
			_ = b.zw.Close()
			return err
		}
	}
	if err := b.zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize deck archive: %w", err)
	}
	return nil
}

func (b *Builder) writePart(name, tmplName string, data interface{}) error {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, tmplName, data); err != nil {
		return fmt.Errorf("template execution failed for %q: %w", tmplName, err)
	}
	return b.writeRaw(name, bytes.TrimSpace(buf.Bytes()), zip.Deflate)
}

func (b *Builder) writeRaw(name string, content []byte, method uint16) error {
	w, err := b.zw.CreateHeader(&zip.FileHeader{Name: name, Method: method, Modified: b.now()})
	if err != nil {
		return fmt.Errorf("failed to add %s to deck: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
