package pointcloud

import "github.com/go-gl/mathgl/mgl64"

// Stats summarizes a set of points. The zero value describes no points and is
// the identity for Merge.
type Stats struct {
	Min, Max           mgl64.Vec3
	Centroid           mgl64.Vec3
	ColorMin, ColorMax mgl64.Vec3 // channels in [0, 1]
	IntensityMin       float64
	IntensityMax       float64
	Count              int
}

// Empty reports whether the stats describe no points.
func (s Stats) Empty() bool { return s.Count == 0 }

// Range returns Max - Min.
func (s Stats) Range() mgl64.Vec3 { return s.Max.Sub(s.Min) }

// Merge combines two summaries. Bounds and ranges merge elementwise and the
// centroid is averaged weighted by point counts.
func (s Stats) Merge(o Stats) Stats {
	if o.Count == 0 {
		return s
	}
	if s.Count == 0 {
		return o
	}

	total := s.Count + o.Count
	ws := float64(s.Count) / float64(total)
	wo := float64(o.Count) / float64(total)

	return Stats{
		Min:          minVec(s.Min, o.Min),
		Max:          maxVec(s.Max, o.Max),
		Centroid:     s.Centroid.Mul(ws).Add(o.Centroid.Mul(wo)),
		ColorMin:     minVec(s.ColorMin, o.ColorMin),
		ColorMax:     maxVec(s.ColorMax, o.ColorMax),
		IntensityMin: min(s.IntensityMin, o.IntensityMin),
		IntensityMax: max(s.IntensityMax, o.IntensityMax),
		Count:        total,
	}
}

func minVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

func maxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}
