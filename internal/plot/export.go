package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// ErrUnsupportedFormat is returned by Export for file extensions it cannot produce.
var ErrUnsupportedFormat = errors.New("unsupported export format")

const (
	DefaultExportWidth  = 1200
	DefaultExportHeight = 700
	DefaultJPEGQuality  = 98

	pdfMargin = 10.0 // mm
)

// ExportOptions controls the size and quality of exported files.
type ExportOptions struct {
	Width       int // pixels; 0 uses DefaultExportWidth
	Height      int // pixels; 0 uses DefaultExportHeight
	JPEGQuality int // 1-100; 0 uses DefaultJPEGQuality
}

func (o ExportOptions) withDefaults() ExportOptions {
	if o.Width <= 0 {
		o.Width = DefaultExportWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultExportHeight
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	return o
}

// SupportedExtensions lists the file extensions Export understands.
func SupportedExtensions() []string {
	return []string{".png", ".svg", ".jpg", ".jpeg", ".pdf"}
}

// Export renders the plot into the file at path. The format follows the file
// extension: PNG, SVG, JPEG or PDF (the PNG rendering on a landscape A4 page).
func Export(p *Plot, path string, opts ExportOptions) error {
	opts = opts.withDefaults()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return writeFile(path, func(buf *bytes.Buffer) error {
			_, err := Render(p, buf, FormatPNG, opts.Width, opts.Height)
			return err
		})

	case ".svg":
		return writeFile(path, func(buf *bytes.Buffer) error {
			_, err := Render(p, buf, FormatSVG, opts.Width, opts.Height)
			return err
		})

	case ".jpg", ".jpeg":
		return writeFile(path, func(buf *bytes.Buffer) error {
			img, _, err := RenderImage(p, opts.Width, opts.Height)
			if err != nil {
				return err
			}
			if err = jpeg.Encode(buf, img, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
				return fmt.Errorf("encoding jpeg: %w", err)
			}
			return nil
		})

	case ".pdf":
		return exportPDF(p, path, opts)

	default:
		return fmt.Errorf("exporting to %q: %w", path, ErrUnsupportedFormat)
	}
}

func exportPDF(p *Plot, path string, opts ExportOptions) error {
	var buf bytes.Buffer
	frame, err := Render(p, &buf, FormatPNG, opts.Width, opts.Height)
	if err != nil {
		return err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(p.Title(), true)
	pdf.SetCreator("sweep-inspector", true)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	w, h := fitInto(float64(frame.Width), float64(frame.Height), pageW-2*pdfMargin, pageH-2*pdfMargin)

	const name = "plot"
	imgOpts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, imgOpts, &buf)
	pdf.ImageOptions(name, (pageW-w)/2, (pageH-h)/2, w, h, false, imgOpts, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing pdf %q: %w", path, err)
	}
	return nil
}

// fitInto scales (w, h) to the largest size fitting (maxW, maxH) with the same aspect ratio.
func fitInto(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := min(maxW/w, maxH/h)
	return w * scale, h * scale
}

// writeFile renders into memory and creates path only once rendering succeeded.
func writeFile(path string, render func(*bytes.Buffer) error) (err error) {
	var buf bytes.Buffer
	if err = render(&buf); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	defer closeWithError(f, &err)

	if _, err = buf.WriteTo(f); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	return nil
}

func closeWithError(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing %q: %w", f.Name(), cerr)
	}
}
