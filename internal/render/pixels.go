package render

import (
	"image/color"

	"halo-life/pkg/grid"
)

// fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func fillBinaryRGBA(buf []byte, cells []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}

// fillOwnerRGBA paints live cells with the palette entry of the participant
// owning them, cycling through the palette, and dead cells with off.
func fillOwnerRGBA(buf []byte, cells []uint8, owners []int, palette []color.RGBA, off color.RGBA) {
	for i, c := range cells {
		base := i * 4
		col := off
		if c != 0 && len(palette) > 0 {
			col = palette[owners[i]%len(palette)]
		}
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// OwnerMap returns, for every cell of a w*h grid, the index of the partition
// containing it.
func OwnerMap(parts []grid.Partition, w, h int) []int {
	owners := make([]int, w*h)
	for _, p := range parts {
		for y := p.OffsetY; y < p.OffsetY+p.Height && y < h; y++ {
			for x := p.OffsetX; x < p.OffsetX+p.Width && x < w; x++ {
				owners[y*w+x] = p.Index
			}
		}
	}
	return owners
}

// Palette is the default set of participant colors.
var Palette = []color.RGBA{
	{R: 240, G: 240, B: 240, A: 255},
	{R: 120, G: 200, B: 255, A: 255},
	{R: 255, G: 170, B: 90, A: 255},
	{R: 140, G: 230, B: 140, A: 255},
	{R: 230, G: 130, B: 200, A: 255},
	{R: 250, G: 230, B: 110, A: 255},
}
