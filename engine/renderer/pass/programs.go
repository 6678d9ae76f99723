package pass

import (
	"embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/shader"
	"github.com/pkg/errors"
)

//go:embed shaders/glsl/* shaders/wgsl/*
var shaderFS embed.FS

const glslHeader = "#version 430 core\n"

// ProgramID names one of the fixed programs the sequencer draws with.
type ProgramID int

const (
	ProgramShadow ProgramID = iota
	ProgramGeometry
	ProgramDeferredLighting
	ProgramForward
	ProgramLightOrb
	ProgramPost
	programCount
)

var programNames = [...]string{"shadow", "geometry", "deferred_lighting", "forward", "light_orb", "post"}

func (p ProgramID) String() string {
	if p >= 0 && p < programCount {
		return programNames[p]
	}
	return fmt.Sprintf("ProgramID(%d)", int(p))
}

var (
	frameBlock    = gpu.UniformBlock{Name: "FrameBlock", Slot: SlotFrame, Size: FrameBlockSize}
	objectBlock   = gpu.UniformBlock{Name: "ObjectBlock", Slot: SlotObject, Size: ObjectBlockSize}
	lightingBlock = gpu.UniformBlock{Name: "LightingBlock", Slot: SlotLighting, Size: LightingBlockSize}
	postBlock     = gpu.UniformBlock{Name: "PostBlock", Slot: SlotPost, Size: PostBlockSize}
)

// programLayout is the language-independent part of a program: blocks, textures and which shader
// files make it up.
type programLayout struct {
	blocks       []gpu.UniformBlock
	textures     []gpu.TextureBinding
	usesVertices bool

	glslVertex   string
	glslFragment string

	wgslFile     string
	wgslVertex   string
	wgslFragment string
}

var programLayouts = [programCount]programLayout{
	ProgramShadow: {
		blocks:       []gpu.UniformBlock{frameBlock, objectBlock},
		usesVertices: true,
		glslVertex:   "mesh.vert",
		glslFragment: "shadow.frag",
		wgslFile:     "shadow.wgsl",
		wgslVertex:   "vs_shadow",
	},
	ProgramGeometry: {
		blocks:       []gpu.UniformBlock{frameBlock, objectBlock},
		usesVertices: true,
		glslVertex:   "mesh.vert",
		glslFragment: "geometry.frag",
		wgslFile:     "geometry.wgsl",
		wgslVertex:   "vs_mesh",
		wgslFragment: "fs_geometry",
	},
	ProgramDeferredLighting: {
		blocks: []gpu.UniformBlock{frameBlock, lightingBlock},
		textures: []gpu.TextureBinding{
			{Name: "gPosition", Slot: 0, Kind: gpu.TextureUnfilterable},
			{Name: "gNormal", Slot: 1, Kind: gpu.TextureUnfilterable},
			{Name: "gAlbedo", Slot: 2, Kind: gpu.TextureUnfilterable},
			{Name: "shadowMap", Slot: 3, Kind: gpu.TextureDepth},
		},
		glslVertex:   "fullscreen.vert",
		glslFragment: "deferred.frag",
		wgslFile:     "deferred.wgsl",
		wgslVertex:   "vs_fullscreen",
		wgslFragment: "fs_deferred",
	},
	ProgramForward: {
		blocks:       []gpu.UniformBlock{frameBlock, objectBlock, lightingBlock},
		textures:     []gpu.TextureBinding{{Name: "shadowMap", Slot: 0, Kind: gpu.TextureDepth}},
		usesVertices: true,
		glslVertex:   "mesh.vert",
		glslFragment: "forward.frag",
		wgslFile:     "forward.wgsl",
		wgslVertex:   "vs_mesh",
		wgslFragment: "fs_forward",
	},
	ProgramLightOrb: {
		blocks:       []gpu.UniformBlock{frameBlock, objectBlock},
		usesVertices: true,
		glslVertex:   "mesh.vert",
		glslFragment: "orb.frag",
		wgslFile:     "orb.wgsl",
		wgslVertex:   "vs_mesh",
		wgslFragment: "fs_orb",
	},
	ProgramPost: {
		blocks:       []gpu.UniformBlock{postBlock},
		textures:     []gpu.TextureBinding{{Name: "composite", Slot: 0, Kind: gpu.TextureFloat}},
		glslVertex:   "fullscreen.vert",
		glslFragment: "post.frag",
		wgslFile:     "post.wgsl",
		wgslVertex:   "vs_fullscreen",
		wgslFragment: "fs_post",
	},
}

func readShader(lang, name string) (string, error) {
	src, err := shaderFS.ReadFile("shaders/" + lang + "/" + name)
	if err != nil {
		return "", errors.Wrapf(err, "pass: shader %s/%s", lang, name)
	}
	return string(src), nil
}

// loadShader reads an entry file and expands its @oxy:include lines from the same language's
// shared files.
func loadShader(lang, name string) (string, error) {
	src, err := readShader(lang, name)
	if err != nil {
		return "", err
	}
	pp := shader.NewPreProcessor(func(inc string) (string, error) {
		return readShader(lang, inc+"."+lang)
	})
	out, err := pp.Process(src)
	if err != nil {
		return "", errors.Wrapf(err, "pass: shader %s/%s", lang, name)
	}
	return out, nil
}

// ProgramDescriptor assembles the descriptor for id in the given shading language.
//
// Parameters:
//   - id: which program
//   - lang: GLSL or WGSL
//
// Returns:
//   - gpu.ProgramDescriptor: sources, entry points, blocks and texture bindings
//   - error: an unknown id or a missing shader file
func ProgramDescriptor(id ProgramID, lang gpu.ShadingLanguage) (gpu.ProgramDescriptor, error) {
	if id < 0 || id >= programCount {
		return gpu.ProgramDescriptor{}, errors.Errorf("pass: unknown program %d", int(id))
	}
	layout := programLayouts[id]
	desc := gpu.ProgramDescriptor{
		Label:         id.String(),
		UniformBlocks: layout.blocks,
		Textures:      layout.textures,
		UsesVertices:  layout.usesVertices,
	}

	switch lang {
	case gpu.GLSL:
		vs, err := loadShader("glsl", layout.glslVertex)
		if err != nil {
			return desc, err
		}
		fs, err := loadShader("glsl", layout.glslFragment)
		if err != nil {
			return desc, err
		}
		desc.VertexSource = glslHeader + vs
		desc.FragmentSource = glslHeader + fs
		desc.VertexEntry = "main"
		desc.FragmentEntry = "main"
	case gpu.WGSL:
		module, err := loadShader("wgsl", layout.wgslFile)
		if err != nil {
			return desc, err
		}
		desc.VertexSource = module
		desc.VertexEntry = layout.wgslVertex
		if layout.wgslFragment != "" {
			desc.FragmentSource = module
			desc.FragmentEntry = layout.wgslFragment
		}
	default:
		return desc, errors.Errorf("pass: unsupported shading language %s", lang)
	}
	return desc, nil
}

// programSet holds one handle per ProgramID.
type programSet [programCount]gpu.ProgramHandle

// createPrograms compiles every program the mode needs. On error the programs created so far are
// deleted.
func createPrograms(ctx gpu.Context, ids []ProgramID) (programSet, error) {
	var set programSet
	for _, id := range ids {
		desc, err := ProgramDescriptor(id, ctx.ShadingLanguage())
		if err != nil {
			set.release(ctx)
			return programSet{}, err
		}
		h, err := ctx.CreateProgram(desc)
		if err != nil {
			set.release(ctx)
			return programSet{}, errors.Wrapf(err, "pass: program %s", id)
		}
		set[id] = h
	}
	return set, nil
}

func (s *programSet) release(ctx gpu.Context) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != 0 {
			ctx.DeleteProgram(s[i])
			s[i] = 0
		}
	}
}
