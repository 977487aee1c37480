// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/depp/unrez/pict"
)

// writePNG writes an unpacked raster as a PNG file. 8-bit pixels become a
// paletted image, 32-bit R G B 0 pixels become an opaque RGBA image.
func writePNG(name string, pix *pict.PixData) error {
	height := int(pix.Bounds.Bottom) - int(pix.Bounds.Top)
	width := int(pix.Bounds.Right) - int(pix.Bounds.Left)

	var img image.Image
	switch pix.DataPixelSize {
	case 8:
		if len(pix.CTTable) == 0 {
			return fmt.Errorf("missing palette for 8-bit image")
		}
		palette := make(color.Palette, len(pix.CTTable))
		for i, c := range pix.CTTable {
			palette[i] = color.RGBA{
				R: uint8(c.R >> 8),
				G: uint8(c.G >> 8),
				B: uint8(c.B >> 8),
				A: 0xff,
			}
		}
		p := image.NewPaletted(image.Rect(0, 0, width, height), palette)
		for y := 0; y < height; y++ {
			copy(p.Pix[y*p.Stride:], pix.Data[y*pix.RowBytes:][:width])
		}
		img = p
	case 32:
		p := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			src := pix.Data[y*pix.RowBytes:]
			dst := p.Pix[y*p.Stride:]
			for x := 0; x < width; x++ {
				dst[x*4+0] = src[x*4+0]
				dst[x*4+1] = src[x*4+1]
				dst[x*4+2] = src[x*4+2]
				dst[x*4+3] = 0xff
			}
		}
		img = p
	default:
		return fmt.Errorf("unknown pixel size: %d", pix.DataPixelSize)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
