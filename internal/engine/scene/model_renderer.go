package scene

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/lidarview/internal/assets"
	"github.com/Faultbox/lidarview/internal/engine/scene/shaders"
	"github.com/Faultbox/lidarview/internal/engine/shader"
)

// meshBuffer is the GPU copy of one model, shared by its placements.
type meshBuffer struct {
	vao    uint32
	vbo    [2]uint32
	count  int32
	colors []mgl32.Vec3
}

// ModelInstance is one placement of a model.
type ModelInstance struct {
	ID       uuid.UUID
	URL      string
	Position mgl32.Vec3 // display space
	Scale    float32
	Visible  bool
}

// ModelRenderer draws placed STL models with a single directional light.
type ModelRenderer struct {
	program *shader.Program

	meshes    map[string]*meshBuffer
	instances []*ModelInstance

	LightDir mgl32.Vec3
	Ambient  mgl32.Vec3
}

// sourceToDisplay maps model axes (z up) to display axes, matching the point
// transform: display = (-x, z, y).
var sourceToDisplay = mgl32.Mat4{
	-1, 0, 0, 0,
	0, 0, 1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}

// NewModelRenderer creates a new model renderer.
func NewModelRenderer() (*ModelRenderer, error) {
	prog, err := shader.NewProgram(shaders.ModelVertexShader, shaders.ModelFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("model shader: %w", err)
	}
	return &ModelRenderer{
		program:  prog,
		meshes:   make(map[string]*meshBuffer),
		LightDir: mgl32.Vec3{0.5, 0.866, 0.0},
		Ambient:  mgl32.Vec3{0.3, 0.3, 0.3},
	}, nil
}

// Place adds an instance of m at pos. The mesh is uploaded on first use.
func (mr *ModelRenderer) Place(m *assets.Model, pos mgl32.Vec3, scale float32) *ModelInstance {
	if _, ok := mr.meshes[m.URL]; !ok {
		mr.meshes[m.URL] = mr.upload(m)
	}
	inst := &ModelInstance{
		ID:       uuid.New(),
		URL:      m.URL,
		Position: pos,
		Scale:    scale,
		Visible:  true,
	}
	mr.instances = append(mr.instances, inst)
	return inst
}

func (mr *ModelRenderer) upload(m *assets.Model) *meshBuffer {
	g := &m.Geometry
	mb := &meshBuffer{count: int32(g.VertexCount())}
	for _, mat := range m.Materials {
		mb.colors = append(mb.colors, mat.Color)
	}
	if mb.count == 0 {
		return mb
	}

	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)
	gl.GenBuffers(2, &mb.vbo[0])

	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo[0])
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Positions)*4, unsafe.Pointer(&g.Positions[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo[1])
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Normals)*4, unsafe.Pointer(&g.Normals[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return mb
}

// Instances returns the placed models.
func (mr *ModelRenderer) Instances() []*ModelInstance {
	return mr.instances
}

// SetScale rescales every placed instance.
func (mr *ModelRenderer) SetScale(scale float32) {
	for _, inst := range mr.instances {
		inst.Scale = scale
	}
}

// Clear removes every instance. Uploaded meshes stay for later placements.
func (mr *ModelRenderer) Clear() {
	mr.instances = nil
}

// Render draws every visible instance.
func (mr *ModelRenderer) Render(viewProj mgl32.Mat4) {
	if len(mr.instances) == 0 {
		return
	}

	p := mr.program
	p.Use()
	p.SetVec3("uLightDir", mr.LightDir)
	p.SetVec3("uAmbient", mr.Ambient)

	for _, inst := range mr.instances {
		mb := mr.meshes[inst.URL]
		if !inst.Visible || mb == nil || mb.vao == 0 {
			continue
		}

		model := buildModelMatrix(inst)
		mvp := viewProj.Mul4(model)
		p.SetMat4("uMVP", mvp)
		p.SetMat4("uModel", model)

		color := mgl32.Vec3{1, 1, 1}
		if len(mb.colors) > 0 {
			color = mb.colors[0]
		}
		p.SetVec3("uColor", color)

		gl.BindVertexArray(mb.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, mb.count)
	}
	gl.BindVertexArray(0)
}

func buildModelMatrix(inst *ModelInstance) mgl32.Mat4 {
	t := mgl32.Translate3D(inst.Position[0], inst.Position[1], inst.Position[2])
	s := mgl32.Scale3D(inst.Scale, inst.Scale, inst.Scale)
	return t.Mul4(s).Mul4(sourceToDisplay)
}

// Destroy releases all resources.
func (mr *ModelRenderer) Destroy() {
	for _, mb := range mr.meshes {
		if mb.vao != 0 {
			gl.DeleteVertexArrays(1, &mb.vao)
			gl.DeleteBuffers(2, &mb.vbo[0])
		}
	}
	mr.meshes = nil
	mr.instances = nil
	mr.program.Delete()
}
