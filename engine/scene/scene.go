package scene

import (
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/Carmen-Shannon/oxy-passes/engine/camera"
	"github.com/Carmen-Shannon/oxy-passes/engine/game_object"
	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/model"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/postfx"
	"github.com/Carmen-Shannon/oxy-passes/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Parameters are the values the settings controls edit between frames. Frame copies them, so edits
// made through the pointer from Scene.Parameters take effect on the next frame.
type Parameters struct {
	Light         light.Directional
	Shadow        light.Shadow
	Material      material.Material
	Aberration    postfx.ChromaticAberration
	ShowLightOrbs bool
}

// DefaultParameters returns the starting values shared by every demo.
func DefaultParameters() Parameters {
	return Parameters{
		Light:         light.NewDirectional(),
		Shadow:        light.NewShadow(),
		Material:      material.NewMaterial(),
		Aberration:    postfx.NewChromaticAberration(),
		ShowLightOrbs: true,
	}
}

// rigBinding draws every node of a rig subtree with one model.
type rigBinding struct {
	rig    rig.Rig
	root   rig.NodeID
	model  model.Model
	albedo mgl32.Vec4
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	name        string
	demo        Demo
	camera      camera.Camera
	lightCamera light.LightCamera
	params      Parameters
	pointLights []light.PointLight

	nextID   uint64
	registry map[uint64]game_object.GameObject
	rig      *rigBinding
	released bool
}

// Scene holds everything one demo draws: placed objects, an optional animated rig, the main and light
// cameras, point lights and the editable lighting parameters. It turns that state into one pass.Frame
// per frame and never talks to the renderer itself.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Demo returns the demo configuration the scene was built for.
	Demo() Demo

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// LightCamera returns the camera the shadow pass renders from.
	LightCamera() light.LightCamera

	// Parameters returns the editable lighting, material and post-process values.
	Parameters() *Parameters

	// PointLights returns a copy of the scene's point lights.
	PointLights() []light.PointLight

	// SetPointLights replaces the point lights.
	SetPointLights(lights []light.PointLight)

	// Add registers a GameObject and returns its ID. Objects without an ID are assigned one.
	//
	// Parameters:
	//   - obj: the GameObject to add; it must carry a Model
	//
	// Returns:
	//   - uint64: the assigned object ID
	//   - error: an error if the object has no Model
	Add(obj game_object.GameObject) (uint64, error)

	// Get retrieves a GameObject by its ID, or nil if not found.
	Get(id uint64) game_object.GameObject

	// Remove removes a GameObject by ID. Its model stays uploaded.
	Remove(id uint64)

	// Objects returns the registered objects ordered by ID.
	Objects() []game_object.GameObject

	// Count returns the number of registered objects.
	Count() int

	// BindRig draws every node under root with mdl on each frame, after the registered objects.
	//
	// Parameters:
	//   - r: the rig to draw
	//   - root: the subtree root
	//   - mdl: the model drawn at each node's global transform
	//   - albedo: the color of every node
	//
	// Returns:
	//   - error: rig.ErrUnknownNode if root is not live
	BindRig(r rig.Rig, root rig.NodeID, mdl model.Model, albedo mgl32.Vec4) error

	// Rig returns the bound rig and its root, or nil and rig.NoNode.
	Rig() (rig.Rig, rig.NodeID)

	// Models returns each distinct model the scene draws, including the rig model.
	Models() []model.Model

	// Upload creates GPU meshes for every model. Models already uploaded are skipped.
	//
	// Parameters:
	//   - ctx: the context to upload to
	//
	// Returns:
	//   - error: the first upload error
	Upload(ctx gpu.Context) error

	// Update moves the light camera to follow the light direction, then advances and solves the rig.
	//
	// Parameters:
	//   - dt: frame time in seconds
	//
	// Returns:
	//   - error: a rig error
	Update(dt float32) error

	// Frame builds the per-frame state for the sequencer. The camera's aspect follows the viewport.
	//
	// Parameters:
	//   - viewport: the size the frame renders at
	//
	// Returns:
	//   - *pass.Frame: a new frame
	//   - error: a rig error
	Frame(viewport common.Viewport) (*pass.Frame, error)

	// Release tears the rig down and deletes every model's GPU mesh. Calling it twice is a no-op.
	//
	// Parameters:
	//   - ctx: the context the models were uploaded to
	//
	// Returns:
	//   - []rig.NodeID: the rig nodes in teardown order, or nil without a rig
	Release(ctx gpu.Context) []rig.NodeID
}

var _ Scene = &scene{}

// NewScene creates an empty forward scene with the default camera, light camera and parameters.
// Use NewDemoScene for the prepared demo layouts.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.Mutex{},
		name:     "scene",
		demo:     DemoForward,
		params:   DefaultParameters(),
		nextID:   1,
		registry: make(map[uint64]game_object.GameObject),
	}
	for _, option := range options {
		option(s)
	}
	if s.camera == nil {
		s.camera = camera.NewCamera(camera.WithController(camera.NewCameraController()))
	}
	if s.lightCamera == nil {
		s.lightCamera = light.NewLightCamera()
	}
	s.lightCamera.Follow(s.params.Light.Direction)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Demo() Demo {
	return s.demo
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = cam
}

func (s *scene) LightCamera() light.LightCamera {
	return s.lightCamera
}

func (s *scene) Parameters() *Parameters {
	return &s.params
}

func (s *scene) PointLights() []light.PointLight {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]light.PointLight, len(s.pointLights))
	copy(out, s.pointLights)
	return out
}

func (s *scene) SetPointLights(lights []light.PointLight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointLights = append([]light.PointLight(nil), lights...)
}

func (s *scene) Add(obj game_object.GameObject) (uint64, error) {
	if obj == nil || obj.Model() == nil {
		return 0, errors.New("scene: object has no model")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(obj), nil
}

func (s *scene) addLocked(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}
	s.registry[obj.ID()] = obj
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *scene) objectsLocked() []game_object.GameObject {
	out := make([]game_object.GameObject, 0, len(s.registry))
	for _, obj := range s.registry {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objectsLocked()
}

func (s *scene) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registry)
}

func (s *scene) BindRig(r rig.Rig, root rig.NodeID, mdl model.Model, albedo mgl32.Vec4) error {
	if !r.Contains(root) {
		return errors.Wrapf(rig.ErrUnknownNode, "scene: rig root %d", root)
	}
	if mdl == nil {
		return errors.New("scene: rig binding has no model")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rig = &rigBinding{rig: r, root: root, model: mdl, albedo: albedo}
	return nil
}

func (s *scene) Rig() (rig.Rig, rig.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rig == nil {
		return nil, rig.NoNode
	}
	return s.rig.rig, s.rig.root
}

func (s *scene) modelsLocked() []model.Model {
	seen := make(map[model.Model]bool)
	var out []model.Model
	for _, obj := range s.objectsLocked() {
		if m := obj.Model(); m != nil && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	if s.rig != nil && !seen[s.rig.model] {
		out = append(out, s.rig.model)
	}
	return out
}

func (s *scene) Models() []model.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelsLocked()
}

func (s *scene) Upload(ctx gpu.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.modelsLocked() {
		if err := m.Upload(ctx); err != nil {
			return errors.Wrapf(err, "scene %s", s.name)
		}
	}
	return nil
}

func (s *scene) Update(dt float32) error {
	s.lightCamera.Follow(s.params.Light.Direction)

	s.mu.Lock()
	binding := s.rig
	s.mu.Unlock()
	if binding == nil {
		return nil
	}
	if err := binding.rig.Update(binding.root, dt); err != nil {
		return errors.Wrap(err, "scene: rig update")
	}
	if err := binding.rig.Solve(binding.root); err != nil {
		return errors.Wrap(err, "scene: rig solve")
	}
	return nil
}

func (s *scene) Frame(viewport common.Viewport) (*pass.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !viewport.Empty() {
		s.camera.SetAspect(viewport.Aspect())
	}

	f := &pass.Frame{
		ViewProjection:  s.camera.ViewProjection(),
		EyePosition:     s.camera.Position(),
		LightView:       s.lightCamera.View(),
		LightProjection: s.lightCamera.Projection(),
		Light:           s.params.Light,
		Shadow:          s.params.Shadow,
		Material:        s.params.Material,
		Aberration:      s.params.Aberration,
		PointLights:     append([]light.PointLight(nil), s.pointLights...),
		ShowLightOrbs:   s.params.ShowLightOrbs,
	}

	for _, obj := range s.objectsLocked() {
		if !obj.Enabled() {
			continue
		}
		f.Instances = append(f.Instances, pass.Instance{
			Drawable:    obj.Model(),
			Model:       obj.Transform(),
			Albedo:      obj.Albedo(),
			CastsShadow: obj.CastsShadow(),
		})
	}

	if s.rig != nil {
		b := s.rig
		err := b.rig.Walk(b.root, func(_ rig.NodeID, global mgl32.Mat4) {
			f.Instances = append(f.Instances, pass.Instance{
				Drawable:    b.model,
				Model:       global,
				Albedo:      b.albedo,
				CastsShadow: true,
			})
		})
		if err != nil {
			return nil, errors.Wrap(err, "scene: rig walk")
		}
	}
	return f, nil
}

func (s *scene) Release(ctx gpu.Context) []rig.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true

	var order []rig.NodeID
	if s.rig != nil {
		// the root may already be gone if the caller tore it down
		order, _ = s.rig.rig.Teardown(s.rig.root)
	}
	for _, m := range s.modelsLocked() {
		m.Release(ctx)
	}
	return order
}
