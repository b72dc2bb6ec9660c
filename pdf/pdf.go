// Package pdf assembles captured frame images into a single PDF document,
// one frame per page.
package pdf

import (
	"fmt"
	"image"
	_ "image/jpeg" // frame decoding for page sizing
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// defaultDPI is used when Assemble is called with a non-positive DPI.
const defaultDPI = 300

// Assembler renders ordered images into a PDF, sizing each page so the
// image prints at the requested DPI. Higher DPI yields physically smaller,
// denser pages for the same pixel dimensions.
type Assembler struct{}

// NewAssembler creates a stateless PDF assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble renders imagePaths, in the order given, into a PDF at pdfPath
// with one image per page at the given DPI (300 if non-positive). Images
// that cannot be read are skipped; assembling zero readable images is an
// error.
func (a *Assembler) Assemble(imagePaths []string, pdfPath string, dpi int) error {
	if len(imagePaths) == 0 {
		return fmt.Errorf("no images to assemble")
	}

	doc := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "in"})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	pages := 0
	for _, path := range imagePaths {
		width, height, err := imageSize(path)
		if err != nil {
			// Skip unreadable frames rather than losing the whole document.
			continue
		}

		pageW, pageH := PageSize(width, height, dpi)
		doc.AddPageFormat("P", gofpdf.SizeType{Wd: pageW, Ht: pageH})
		doc.ImageOptions(path, 0, 0, pageW, pageH, false, gofpdf.ImageOptions{
			ImageType: imageType(path),
		}, 0, "")
		pages++
	}

	if pages == 0 {
		return fmt.Errorf("no readable images to assemble")
	}
	if doc.Err() {
		return fmt.Errorf("render pdf: %s", doc.Error())
	}

	if err := doc.OutputFileAndClose(pdfPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PageSize converts image pixel dimensions to page dimensions in inches at
// the given DPI.
func PageSize(pixelWidth, pixelHeight, dpi int) (w, h float64) {
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return float64(pixelWidth) / float64(dpi), float64(pixelHeight) / float64(dpi)
}

// imageSize returns the pixel dimensions of the image at path.
func imageSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return cfg.Width, cfg.Height, nil
}

// imageType maps a file extension to gofpdf's image type string.
func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	default:
		return ""
	}
}
