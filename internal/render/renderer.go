//go:build ebiten

package render

import (
	"image/color"

	"halo-life/pkg/grid"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter updates a single RGBA image based on binary cell data.
type GridPainter struct {
	w, h   int
	img    *ebiten.Image
	buf    []byte
	owners []int
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h)}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// ColorByOwner tints live cells by the participant owning them. A nil slice
// switches back to the plain on/off colors.
func (gp *GridPainter) ColorByOwner(parts []grid.Partition) {
	if parts == nil {
		gp.owners = nil
		return
	}
	gp.owners = OwnerMap(parts, gp.w, gp.h)
}

// Blit uploads the provided cells into the painter image and draws it.
func (gp *GridPainter) Blit(dst *ebiten.Image, cells []uint8, on, off color.Color, scale int) {
	if len(cells) != gp.w*gp.h {
		return
	}
	if gp.owners != nil {
		fillOwnerRGBA(gp.buf, cells, gp.owners, Palette, color.RGBAModel.Convert(off).(color.RGBA))
	} else {
		fillBinaryRGBA(gp.buf, cells, on, off)
	}
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
