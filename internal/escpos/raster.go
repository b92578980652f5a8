// Package escpos converts rendered ticket images into ESC/POS print jobs
// for raw-socket thermal printers.
package escpos

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Job frames a rendered PNG as one complete ESC/POS print job: initialize,
// raster image at the head width, feed, partial cut.
func Job(pngBytes []byte, widthDots int) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("decode ticket image: %w", err)
	}
	raster, err := Raster(resizeToWidth(img, widthDots))
	if err != nil {
		return nil, err
	}

	var job []byte
	job = append(job, 0x1B, 0x40) // ESC @ initialize
	job = append(job, raster...)
	job = append(job, 0x1B, 0x64, 0x03)       // ESC d 3 feed
	job = append(job, 0x1D, 0x56, 0x41, 0x00) // GS V A 0 partial cut
	return job, nil
}

// GS v 0 carries the row count in two bytes.
const maxRasterHeight = 0xFFFF

// Raster converts an image to the GS v 0 raster command with 1-bit
// thresholding. The width is clipped down to a multiple of 8.
func Raster(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width%8 != 0 {
		width = width - (width % 8)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image too small to rasterize: %dx%d", bounds.Dx(), height)
	}
	if height > maxRasterHeight {
		return nil, fmt.Errorf("image too tall to rasterize: %d rows (max %d)", height, maxRasterHeight)
	}

	rowBytes := width / 8
	raster := make([]byte, rowBytes*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			gray := (r + g + b) / 3
			if gray < 0x8000 {
				raster[y*rowBytes+x/8] |= 1 << (7 - uint(x%8))
			}
		}
	}

	header := []byte{
		0x1D, 0x76, 0x30, 0x00,
		byte(rowBytes), byte(rowBytes >> 8),
		byte(height), byte(height >> 8),
	}
	return append(header, raster...), nil
}

// resizeToWidth scales with nearest-neighbor sampling; thermal raster output
// is 1-bit anyway, so interpolation buys nothing.
func resizeToWidth(src image.Image, targetWidth int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == targetWidth || w == 0 {
		return src
	}

	scale := float64(targetWidth) / float64(w)
	newHeight := int(float64(h) * scale)
	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, newHeight))

	for y := 0; y < newHeight; y++ {
		for x := 0; x < targetWidth; x++ {
			sx := bounds.Min.X + int(float64(x)/scale)
			sy := bounds.Min.Y + int(float64(y)/scale)
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
