package pointcloud

import (
	"github.com/Faultbox/lidarview/pkg/las"
)

// FromLAS converts decoded LAS records to a chunk. Colors are reduced to
// 8 bits; a chunk whose components all fit in a byte is taken as already
// 8-bit, which some writers produce.
func FromLAS(h *las.Header, pts []las.Point) *Chunk {
	c := &Chunk{
		Points: make([]Point, len(pts)),
		Scale:  h.Scale,
		Offset: h.Offset,
	}

	color := h.HasColor()
	shift := 0
	if color {
		for _, p := range pts {
			if p.Red > 0xff || p.Green > 0xff || p.Blue > 0xff {
				shift = 8
				break
			}
		}
	}

	for i, p := range pts {
		cp := Point{
			Raw:            [3]float64{float64(p.X), float64(p.Y), float64(p.Z)},
			Intensity:      float64(p.Intensity),
			Classification: p.Classification,
			HasColor:       color,
		}
		if color {
			cp.Color = [3]uint8{uint8(p.Red >> shift), uint8(p.Green >> shift), uint8(p.Blue >> shift)}
		}
		c.Points[i] = cp
	}
	return c
}

// ReadChunk reads up to n records from r and converts them. It passes
// through io.EOF at the end of the file.
func ReadChunk(r *las.Reader, n int) (*Chunk, error) {
	pts, err := r.ReadPoints(n)
	if err != nil {
		return nil, err
	}
	return FromLAS(r.Header(), pts), nil
}
