package pdf

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestPageSize(t *testing.T) {
	tests := []struct {
		name   string
		pxW    int
		pxH    int
		dpi    int
		wantW  float64
		wantH  float64
	}{
		{name: "1920x1080 at 300dpi", pxW: 1920, pxH: 1080, dpi: 300, wantW: 6.4, wantH: 3.6},
		{name: "600x600 at 150dpi", pxW: 600, pxH: 600, dpi: 150, wantW: 4, wantH: 4},
		{name: "zero dpi falls back to 300", pxW: 300, pxH: 600, dpi: 0, wantW: 1, wantH: 2},
		{name: "negative dpi falls back to 300", pxW: 300, pxH: 300, dpi: -1, wantW: 1, wantH: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := PageSize(tt.pxW, tt.pxH, tt.dpi)
			assert.InDelta(t, tt.wantW, w, 1e-9)
			assert.InDelta(t, tt.wantH, h, 1e-9)
		})
	}
}

func TestImageType(t *testing.T) {
	assert.Equal(t, "PNG", imageType("frame.png"))
	assert.Equal(t, "JPG", imageType("frame.jpg"))
	assert.Equal(t, "JPG", imageType("frame.JPEG"))
	assert.Equal(t, "", imageType("frame.gif"))
}

func TestAssemble(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "000s.png", 40, 30, color.White)
	b := writePNG(t, dir, "010s.png", 40, 30, color.Black)
	pdfPath := filepath.Join(dir, "out.pdf")

	err := NewAssembler().Assemble([]string{a, b}, pdfPath, 300)
	require.NoError(t, err)

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestAssemble_SkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "000s.png", 20, 20, color.White)
	missing := filepath.Join(dir, "missing.png")
	pdfPath := filepath.Join(dir, "out.pdf")

	err := NewAssembler().Assemble([]string{missing, good}, pdfPath, 300)
	require.NoError(t, err)

	_, statErr := os.Stat(pdfPath)
	assert.NoError(t, statErr)
}

func TestAssemble_NoImages(t *testing.T) {
	dir := t.TempDir()

	err := NewAssembler().Assemble(nil, filepath.Join(dir, "out.pdf"), 300)
	assert.Error(t, err)
}

func TestAssemble_NoReadableImages(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "not-an-image.png")
	require.NoError(t, os.WriteFile(bogus, []byte("junk"), 0644))

	err := NewAssembler().Assemble([]string{bogus}, filepath.Join(dir, "out.pdf"), 300)
	assert.Error(t, err)
}
