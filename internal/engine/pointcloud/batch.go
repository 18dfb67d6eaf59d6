package pointcloud

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Batch holds one chunk as parallel vertex arrays plus its own statistics.
// It is immutable once built.
type Batch struct {
	ID uuid.UUID

	Positions      []float32 // 3 per point, world units
	Colors         []float32 // 3 per point, [0, 1]
	Intensity      []float32
	Classification []float32

	Stats Stats
}

// Len returns the number of points.
func (b *Batch) Len() int { return len(b.Intensity) }

// NewBatch converts a chunk to world space and computes its statistics in
// the same pass. Points without color count as black.
func NewBatch(c *Chunk) *Batch {
	n := len(c.Points)
	b := &Batch{
		ID:             uuid.New(),
		Positions:      make([]float32, 3*n),
		Colors:         make([]float32, 3*n),
		Intensity:      make([]float32, n),
		Classification: make([]float32, n),
	}

	var s Stats
	for i, p := range c.Points {
		w := mgl64.Vec3(c.World(i))

		var col mgl64.Vec3
		if p.HasColor {
			col = mgl64.Vec3{float64(p.Color[0]) / 255, float64(p.Color[1]) / 255, float64(p.Color[2]) / 255}
		}

		if i == 0 {
			s.Min, s.Max, s.Centroid = w, w, w
			s.ColorMin, s.ColorMax = col, col
			s.IntensityMin, s.IntensityMax = p.Intensity, p.Intensity
		} else {
			s.Min = minVec(s.Min, w)
			s.Max = maxVec(s.Max, w)
			// cumulative mean
			fi := float64(i)
			s.Centroid = s.Centroid.Mul(fi).Add(w).Mul(1 / (fi + 1))
			s.ColorMin = minVec(s.ColorMin, col)
			s.ColorMax = maxVec(s.ColorMax, col)
			s.IntensityMin = min(s.IntensityMin, p.Intensity)
			s.IntensityMax = max(s.IntensityMax, p.Intensity)
		}

		b.Positions[3*i] = float32(w[0])
		b.Positions[3*i+1] = float32(w[1])
		b.Positions[3*i+2] = float32(w[2])

		b.Colors[3*i] = float32(col[0])
		b.Colors[3*i+1] = float32(col[1])
		b.Colors[3*i+2] = float32(col[2])

		b.Intensity[i] = float32(p.Intensity)
		b.Classification[i] = float32(p.Classification)
	}
	s.Count = n
	b.Stats = s

	return b
}
