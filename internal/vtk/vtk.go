// Package vtk writes partition snapshots as VTK XML image data: one .vti
// file per participant and generation, plus a .pvti index written by the
// participant owning the origin.
package vtk

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"halo-life/pkg/grid"
)

// Writer implements driver.SnapshotWriter. It is safe for concurrent use by
// participants because every call writes distinct files.
type Writer struct {
	Dir    string
	Prefix string
	Grid   grid.GlobalGrid
}

// NewWriter creates dir if needed and returns a writer for pieces of g.
func NewWriter(dir string, g grid.GlobalGrid) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vtk: %w", err)
	}
	return &Writer{Dir: dir, Prefix: "gol", Grid: g}, nil
}

// PiecePath returns the file holding one participant's piece.
func (w *Writer) PiecePath(piece, generation int) string {
	return filepath.Join(w.Dir, w.pieceName(piece, generation))
}

// IndexPath returns the parallel index of a generation.
func (w *Writer) IndexPath(generation int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("parallel-%05d.pvti", generation))
}

func (w *Writer) pieceName(piece, generation int) string {
	return fmt.Sprintf("%s-%d-%05d.vti", w.Prefix, piece, generation)
}

// WriteSnapshot writes the piece at (offsetX, offsetY) and, for the piece at
// the origin, the index listing every piece.
func (w *Writer) WriteSnapshot(generation int, interior []uint8, offsetX, offsetY, width, height int) error {
	if width <= 0 || height <= 0 || len(interior) != width*height {
		return fmt.Errorf("vtk: piece %dx%d with %d cells", width, height, len(interior))
	}
	if w.Grid.Width%width != 0 || w.Grid.Height%height != 0 {
		return fmt.Errorf("vtk: piece %dx%d does not tile %dx%d", width, height, w.Grid.Width, w.Grid.Height)
	}
	dimX := w.Grid.Width / width
	piece := (offsetY/height)*dimX + offsetX/width
	if err := w.writePiece(piece, generation, interior, offsetX, offsetY, width, height); err != nil {
		return err
	}
	if piece == 0 {
		return w.writeIndex(generation, width, height)
	}
	return nil
}

func (w *Writer) writePiece(piece, generation int, interior []uint8, offX, offY, width, height int) error {
	f, err := os.Create(w.PiecePath(piece, generation))
	if err != nil {
		return fmt.Errorf("vtk: %w", err)
	}
	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "<?xml version=\"1.0\"?>\n")
	fmt.Fprintf(bw, "<VTKFile type=\"ImageData\" version=\"0.1\" byte_order=\"LittleEndian\" header_type=\"UInt64\">\n")
	fmt.Fprintf(bw, "<ImageData WholeExtent=\"%d %d %d %d 0 0\" Origin=\"0 0 0\" Spacing=\"1 1 0\">\n",
		offX, offX+width, offY, offY+height)
	fmt.Fprintf(bw, "<CellData Scalars=\"%s\">\n", w.Prefix)
	fmt.Fprintf(bw, "<DataArray type=\"Float32\" Name=\"%s\" format=\"appended\" offset=\"0\"/>\n", w.Prefix)
	fmt.Fprintf(bw, "</CellData>\n</ImageData>\n<AppendedData encoding=\"raw\">\n_")

	var word [8]byte
	binary.LittleEndian.PutUint64(word[:], uint64(len(interior)*4))
	bw.Write(word[:])
	for _, c := range interior {
		binary.LittleEndian.PutUint32(word[:4], math.Float32bits(float32(c)))
		bw.Write(word[:4])
	}
	fmt.Fprintf(bw, "\n</AppendedData>\n</VTKFile>\n")

	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("vtk: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("vtk: %w", err)
	}
	return nil
}

func (w *Writer) writeIndex(generation, width, height int) error {
	f, err := os.Create(w.IndexPath(generation))
	if err != nil {
		return fmt.Errorf("vtk: %w", err)
	}
	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "<?xml version=\"1.0\"?>\n")
	fmt.Fprintf(bw, "<VTKFile type=\"PImageData\" version=\"0.1\" byte_order=\"LittleEndian\" header_type=\"UInt64\">\n")
	fmt.Fprintf(bw, "<PImageData WholeExtent=\"0 %d 0 %d 0 0\" Origin=\"0 0 0\" Spacing=\"1 1 0\">\n", w.Grid.Width, w.Grid.Height)
	fmt.Fprintf(bw, "<PCellData Scalars=\"%s\">\n", w.Prefix)
	fmt.Fprintf(bw, "<PDataArray type=\"Float32\" Name=\"%s\" format=\"appended\" offset=\"0\"/>\n", w.Prefix)
	fmt.Fprintf(bw, "</PCellData>\n")
	dimX, dimY := w.Grid.Width/width, w.Grid.Height/height
	for i := 0; i < dimX*dimY; i++ {
		x, y := (i%dimX)*width, (i/dimX)*height
		fmt.Fprintf(bw, "<Piece Extent=\"%d %d %d %d 0 0\" Source=\"%s\"/>\n",
			x, x+width, y, y+height, w.pieceName(i, generation))
	}
	fmt.Fprintf(bw, "</PImageData>\n</VTKFile>\n")
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("vtk: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("vtk: %w", err)
	}
	return nil
}
