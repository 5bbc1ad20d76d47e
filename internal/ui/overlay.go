//go:build ebiten

package ui

import (
	"image/color"
	"math"
	"strconv"

	"halo-life/pkg/core"
	"halo-life/pkg/grid"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type partitionProvider interface {
	Partitions() []grid.Partition
}

// Overlay draws partition boundaries and participant indices on top of the
// board. G toggles the boundaries, L the labels.
type Overlay struct {
	sim        core.Sim
	scale      int
	showGrid   bool
	showLabels bool
	pixel      *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, showGrid: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles the overlay toggles.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		o.showGrid = !o.showGrid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		o.showLabels = !o.showLabels
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	provider, ok := o.sim.(partitionProvider)
	if !ok {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	parts := provider.Partitions()
	if o.showGrid {
		line := color.RGBA{R: 220, G: 60, B: 60, A: 200}
		for _, s := range partitionSegments(parts, o.sim.Size(), scale) {
			o.drawLine(screen, s.x1, s.y1, s.x2, s.y2, 1, line)
		}
	}
	if o.showLabels {
		face := basicfont.Face7x13
		for _, p := range parts {
			x := p.OffsetX*scale + 4
			y := p.OffsetY*scale + 14
			text.Draw(screen, strconv.Itoa(p.Index), face, x, y, color.RGBA{R: 255, G: 220, B: 80, A: 255})
		}
	}
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
