// Package scene is the OpenGL backend of the viewer: point batches, placed
// models and the measurement overlay.
package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/assets"
	"github.com/Faultbox/lidarview/internal/engine/camera"
	"github.com/Faultbox/lidarview/internal/engine/framebuffer"
	"github.com/Faultbox/lidarview/internal/engine/measure"
	"github.com/Faultbox/lidarview/internal/engine/picking"
	"github.com/Faultbox/lidarview/internal/engine/pointcloud"
	"github.com/Faultbox/lidarview/internal/engine/shading"
	"github.com/Faultbox/lidarview/internal/logger"
)

// Scene renders to the default framebuffer, or to an off-screen target for
// picking. It must be used from the thread owning the GL context.
type Scene struct {
	points  *PointRenderer
	models  *ModelRenderer
	overlay *OverlayRenderer

	override picking.Material
	shading  *shading.State

	width, height int32

	// Background is the clear color of the display pass.
	Background mgl32.Vec3

	log *zap.Logger
}

// New creates the renderers. A GL context must be current.
// Points are drawn with default shading until SetShading is called.
func New(width, height int32) (*Scene, error) {
	s := &Scene{
		shading:    shading.New(shading.DefaultSettings()),
		width:      width,
		height:     height,
		Background: mgl32.Vec3{0.05, 0.05, 0.08},
		log:        logger.Named("scene"),
	}

	var err error
	s.points, err = NewPointRenderer()
	if err != nil {
		return nil, fmt.Errorf("creating point renderer: %w", err)
	}

	s.models, err = NewModelRenderer()
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating model renderer: %w", err)
	}

	s.overlay, err = NewOverlayRenderer()
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating overlay renderer: %w", err)
	}

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	return s, nil
}

// SetShading makes st the source of the point display uniforms.
func (s *Scene) SetShading(st *shading.State) {
	s.shading = st
}

// SetModelLight sets the direction towards the light placed models are lit by.
func (s *Scene) SetModelLight(dir mgl32.Vec3) {
	s.models.LightDir = dir
}

// AddBatch implements pointcloud.Graph.
func (s *Scene) AddBatch(b *pointcloud.Batch) {
	s.points.Add(b)
}

// RemoveBatch implements pointcloud.Graph.
func (s *Scene) RemoveBatch(b *pointcloud.Batch) {
	s.points.Remove(b)
}

// PlaceModel adds an instance of m at a display-space position.
func (s *Scene) PlaceModel(m *assets.Model, pos mgl32.Vec3, scale float32) {
	inst := s.models.Place(m, pos, scale)
	s.log.Debug("model placed",
		zap.Stringer("id", inst.ID),
		zap.String("url", m.URL),
		zap.Float32s("position", pos[:]))
}

// ClearModels removes every placed model.
func (s *Scene) ClearModels() {
	s.models.Clear()
}

// ScaleModels rescales every placed model.
func (s *Scene) ScaleModels(scale float32) {
	s.models.SetScale(scale)
}

// Ready implements picking.Scene.
func (s *Scene) Ready() bool {
	return s.points.Len() > 0
}

// OverrideMaterial implements picking.Scene.
func (s *Scene) OverrideMaterial() picking.Material {
	return s.override
}

// SetOverrideMaterial implements picking.Scene.
func (s *Scene) SetOverrideMaterial(m picking.Material) {
	s.override = m
}

// RenderTo implements picking.Scene. While an encoding material is set only
// point batches are drawn.
func (s *Scene) RenderTo(cam camera.Camera, target picking.Target) {
	fb, ok := target.(*framebuffer.Framebuffer)
	if !ok {
		s.log.Error("unsupported render target", zap.String("type", fmt.Sprintf("%T", target)))
		return
	}

	restore := fb.BindWithViewport()
	defer restore()

	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.BLEND)

	view, proj := cam.View(), cam.Projection()
	if m, ok := s.override.(*picking.EncodingMaterial); ok {
		if err := s.points.RenderPick(view, proj, m); err != nil {
			s.log.Error("pick pass failed", zap.Error(err))
		}
		return
	}
	s.draw(view, proj)
}

// Render draws points and models to the default framebuffer.
func (s *Scene) Render(cam camera.Camera) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, s.width, s.height)
	gl.ClearColor(s.Background[0], s.Background[1], s.Background[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	s.draw(cam.View(), cam.Projection())
}

func (s *Scene) draw(view, proj mgl32.Mat4) {
	s.points.Render(view, proj, s.shading.Uniforms())
	s.models.Render(proj.Mul4(view))
}

// DrawLines implements measure.Overlay.
func (s *Scene) DrawLines(segs []measure.Segment, cam camera.Camera) {
	s.overlay.DrawLines(segs, camera.ViewProjection(cam))
}

// ClearDepth implements measure.Overlay.
func (s *Scene) ClearDepth() {
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

// DrawMarkers implements measure.Overlay.
func (s *Scene) DrawMarkers(points []measure.Point, size float32, cam camera.Camera) {
	s.overlay.DrawMarkers(points, size, camera.ViewProjection(cam))
}

// Resize updates the display viewport.
func (s *Scene) Resize(width, height int) {
	s.width, s.height = int32(width), int32(height)
}

// Destroy releases all resources.
func (s *Scene) Destroy() {
	if s.points != nil {
		s.points.Destroy()
	}
	if s.models != nil {
		s.models.Destroy()
	}
	if s.overlay != nil {
		s.overlay.Destroy()
	}
}
