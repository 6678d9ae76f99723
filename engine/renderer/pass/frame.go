package pass

import (
	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/model"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Instance is one draw of a mesh with a model matrix and albedo.
type Instance struct {
	Drawable    model.Drawable
	Model       mgl32.Mat4
	Albedo      mgl32.Vec4
	CastsShadow bool
}

// Frame is everything a single RenderFrame call reads. It replaces per-pass global state: the caller
// fills one Frame per frame and the sequencer never keeps a reference to it.
type Frame struct {
	ViewProjection  mgl32.Mat4
	EyePosition     mgl32.Vec3
	LightView       mgl32.Mat4
	LightProjection mgl32.Mat4

	Light      light.Directional
	Shadow     light.Shadow
	Material   material.Material
	Aberration postfx.ChromaticAberration

	PointLights   []light.PointLight
	Instances     []Instance
	ShowLightOrbs bool
}

// LightViewProjection returns LightProjection * LightView.
func (f *Frame) LightViewProjection() mgl32.Mat4 {
	return f.LightProjection.Mul4(f.LightView)
}
