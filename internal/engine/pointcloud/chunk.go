// Package pointcloud turns loaded point chunks into render-ready batches and
// keeps the aggregate statistics the shading and camera setup depend on.
package pointcloud

// Point is one record of a chunk in source units.
type Point struct {
	Raw            [3]float64
	Color          [3]uint8
	HasColor       bool
	Intensity      float64
	Classification uint8
}

// Chunk is a run of points sharing one scale and offset.
// World position = Raw * Scale + Offset, per axis.
type Chunk struct {
	Points []Point
	Scale  [3]float64
	Offset [3]float64
}

// World returns the world position of point i.
func (c *Chunk) World(i int) [3]float64 {
	p := c.Points[i].Raw
	return [3]float64{
		p[0]*c.Scale[0] + c.Offset[0],
		p[1]*c.Scale[1] + c.Offset[1],
		p[2]*c.Scale[2] + c.Offset[2],
	}
}
