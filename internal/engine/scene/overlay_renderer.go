package scene

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lidarview/internal/engine/measure"
	"github.com/Faultbox/lidarview/internal/engine/scene/shaders"
	"github.com/Faultbox/lidarview/internal/engine/shader"
)

// OverlayRenderer draws measurement polylines and marker billboards.
type OverlayRenderer struct {
	lines   *shader.Program
	markers *shader.Program

	// Line vertices are rebuilt every draw.
	lineVAO uint32
	lineVBO uint32

	// Unit quad centered on the origin.
	quadVAO uint32
	quadVBO uint32
}

// NewOverlayRenderer creates a new overlay renderer.
func NewOverlayRenderer() (*OverlayRenderer, error) {
	ov := &OverlayRenderer{}

	var err error
	ov.lines, err = shader.NewProgram(shaders.LineVertexShader, shaders.LineFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("line shader: %w", err)
	}
	ov.markers, err = shader.NewProgram(shaders.MarkerVertexShader, shaders.MarkerFragmentShader)
	if err != nil {
		ov.lines.Delete()
		return nil, fmt.Errorf("marker shader: %w", err)
	}

	gl.GenVertexArrays(1, &ov.lineVAO)
	gl.BindVertexArray(ov.lineVAO)
	gl.GenBuffers(1, &ov.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, ov.lineVBO)
	// Position, Color
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 6*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 6*4, 3*4)
	gl.EnableVertexAttribArray(1)

	ov.createQuad()
	gl.BindVertexArray(0)

	return ov, nil
}

func (ov *OverlayRenderer) createQuad() {
	vertices := []float32{
		-0.5, -0.5,
		0.5, -0.5,
		0.5, 0.5,
		-0.5, -0.5,
		0.5, 0.5,
		-0.5, 0.5,
	}

	gl.GenVertexArrays(1, &ov.quadVAO)
	gl.BindVertexArray(ov.quadVAO)

	gl.GenBuffers(1, &ov.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, ov.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)
}

// DrawLines draws segments without depth testing.
func (ov *OverlayRenderer) DrawLines(segs []measure.Segment, viewProj mgl32.Mat4) {
	if len(segs) == 0 {
		return
	}

	verts := make([]float32, 0, len(segs)*12)
	for _, s := range segs {
		verts = append(verts,
			s.From[0], s.From[1], s.From[2], s.Color[0], s.Color[1], s.Color[2],
			s.To[0], s.To[1], s.To[2], s.Color[0], s.Color[1], s.Color[2])
	}

	gl.Disable(gl.DEPTH_TEST)
	defer gl.Enable(gl.DEPTH_TEST)

	ov.lines.Use()
	ov.lines.SetMat4("uViewProj", viewProj)

	gl.BindVertexArray(ov.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, ov.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(segs)*2))
	gl.BindVertexArray(0)
}

// DrawMarkers draws a billboard per visible point at its overlay position.
func (ov *OverlayRenderer) DrawMarkers(points []measure.Point, size float32, viewProj mgl32.Mat4) {
	ov.markers.Use()
	ov.markers.SetMat4("uViewProj", viewProj)
	ov.markers.SetFloat("uSize", size)

	gl.BindVertexArray(ov.quadVAO)
	for _, p := range points {
		if !p.Visible {
			continue
		}
		ov.markers.SetVec3("uCenter", p.Overlay)
		ov.markers.SetVec3("uColor", p.Color)
		gl.DrawArrays(gl.TRIANGLES, 0, 6)
	}
	gl.BindVertexArray(0)
}

// Destroy releases all resources.
func (ov *OverlayRenderer) Destroy() {
	if ov.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &ov.lineVAO)
		gl.DeleteBuffers(1, &ov.lineVBO)
		ov.lineVAO = 0
	}
	if ov.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &ov.quadVAO)
		gl.DeleteBuffers(1, &ov.quadVBO)
		ov.quadVAO = 0
	}
	ov.lines.Delete()
	ov.markers.Delete()
}
