package scene

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/lidarview/internal/engine/picking"
	"github.com/Faultbox/lidarview/internal/engine/pointcloud"
	"github.com/Faultbox/lidarview/internal/engine/scene/shaders"
	"github.com/Faultbox/lidarview/internal/engine/shader"
	"github.com/Faultbox/lidarview/internal/engine/shading"
)

// pointBuffer is one uploaded batch. Attributes live in separate buffers in
// the same layout as the batch arrays.
type pointBuffer struct {
	vao   uint32
	vbos  [4]uint32
	count int32
}

// PointRenderer draws point batches with the shading program, or with a
// pick encoding program while an override material is set.
type PointRenderer struct {
	program *shader.Program
	pick    map[picking.Encoding]*shader.Program

	buffers map[uuid.UUID]*pointBuffer
	order   []uuid.UUID
}

// NewPointRenderer compiles the display program. Pick programs are compiled
// on first use.
func NewPointRenderer() (*PointRenderer, error) {
	prog, err := shader.NewProgram(shaders.PointVertexShader, shaders.PointFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("point shader: %w", err)
	}
	return &PointRenderer{
		program: prog,
		pick:    make(map[picking.Encoding]*shader.Program),
		buffers: make(map[uuid.UUID]*pointBuffer),
	}, nil
}

// Add uploads a batch. Adding the same batch twice is a no-op.
func (pr *PointRenderer) Add(b *pointcloud.Batch) {
	if _, ok := pr.buffers[b.ID]; ok || b.Len() == 0 {
		return
	}

	buf := &pointBuffer{count: int32(b.Len())}
	gl.GenVertexArrays(1, &buf.vao)
	gl.BindVertexArray(buf.vao)
	gl.GenBuffers(4, &buf.vbos[0])

	upload := func(loc uint32, data []float32, size int32) {
		gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbos[loc])
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
		gl.VertexAttribPointerWithOffset(loc, size, gl.FLOAT, false, size*4, 0)
		gl.EnableVertexAttribArray(loc)
	}
	upload(0, b.Positions, 3)
	upload(1, b.Colors, 3)
	upload(2, b.Intensity, 1)
	upload(3, b.Classification, 1)

	gl.BindVertexArray(0)

	pr.buffers[b.ID] = buf
	pr.order = append(pr.order, b.ID)
}

// Remove releases a batch's buffers.
func (pr *PointRenderer) Remove(b *pointcloud.Batch) {
	buf, ok := pr.buffers[b.ID]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &buf.vao)
	gl.DeleteBuffers(4, &buf.vbos[0])
	delete(pr.buffers, b.ID)

	for i, id := range pr.order {
		if id == b.ID {
			pr.order = append(pr.order[:i], pr.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of uploaded batches.
func (pr *PointRenderer) Len() int {
	return len(pr.order)
}

// Render draws every batch with the shading uniforms.
func (pr *PointRenderer) Render(view, proj mgl32.Mat4, u shading.Uniforms) {
	if len(pr.order) == 0 {
		return
	}

	p := pr.program
	p.Use()
	p.SetMat4("uView", view)
	p.SetMat4("uProjection", proj)
	p.SetFloat("uPointSize", u.PointSize)
	p.SetVec3("uScale", u.Scale)
	p.SetVec3("uOffsets", u.Offsets)
	p.SetVec2("uZRange", u.ZRange)
	p.SetFloat("uRGB", u.RGB)
	p.SetFloat("uClass", u.Class)
	p.SetFloat("uMap", u.Map)
	p.SetFloat("uIMap", u.IMap)
	p.SetFloat("uIntensity", u.Intensity)
	p.SetFloat("uHeight", u.Height)
	p.SetFloat("uIHeight", u.IHeight)
	p.SetFloat("uIntensityBlend", u.IntensityBlend)
	p.SetFloat("uMaxColorComponent", u.MaxColorComponent)
	p.SetFloat("uClampLower", u.ClampLower)
	p.SetFloat("uClampHigher", u.ClampHigher)
	p.SetFloat("uColorClampLower", u.ColorClampLower)
	p.SetFloat("uColorClampHigher", u.ColorClampHigher)

	pr.draw()
}

// RenderPick draws every batch with the encoding material.
func (pr *PointRenderer) RenderPick(view, proj mgl32.Mat4, m *picking.EncodingMaterial) error {
	if len(pr.order) == 0 {
		return nil
	}

	p, ok := pr.pick[m.Encoding]
	if !ok {
		var err error
		p, err = shader.NewProgram(picking.VertexShader, picking.FragmentShader(m.Encoding))
		if err != nil {
			return fmt.Errorf("pick shader (%s): %w", m.Encoding, err)
		}
		pr.pick[m.Encoding] = p
	}

	p.Use()
	p.SetMat4("uView", view)
	p.SetMat4("uProjection", proj)
	p.SetFloat("uPointSize", m.PointSize)
	p.SetVec3("uScale", m.Scale)
	p.SetVec3("uOffsets", m.Offsets)
	p.SetVec3("uAxis", m.Axis)

	pr.draw()
	return nil
}

func (pr *PointRenderer) draw() {
	for _, id := range pr.order {
		buf := pr.buffers[id]
		gl.BindVertexArray(buf.vao)
		gl.DrawArrays(gl.POINTS, 0, buf.count)
	}
	gl.BindVertexArray(0)
}

// Destroy releases all resources.
func (pr *PointRenderer) Destroy() {
	for _, buf := range pr.buffers {
		gl.DeleteVertexArrays(1, &buf.vao)
		gl.DeleteBuffers(4, &buf.vbos[0])
	}
	pr.buffers = nil
	pr.order = nil

	pr.program.Delete()
	for _, p := range pr.pick {
		p.Delete()
	}
}
