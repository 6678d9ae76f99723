package gl_backend

import (
	"log"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"
)

type program struct {
	id       uint32
	vertex   uint32
	fragment uint32
	desc     gpu.ProgramDescriptor
}

func (p *program) delete() {
	if p.vertex != 0 {
		gl.DetachShader(p.id, p.vertex)
		gl.DeleteShader(p.vertex)
	}
	if p.fragment != 0 {
		gl.DetachShader(p.id, p.fragment)
		gl.DeleteShader(p.fragment)
	}
	gl.DeleteProgram(p.id)
}

// compileShader compiles one stage and returns the driver's info log on failure.
func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logSize int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logSize)
		buf := make([]uint8, logSize+1)
		gl.GetShaderInfoLog(shader, int32(len(buf)), &logSize, &buf[0])
		gl.DeleteShader(shader)
		return 0, errors.New(string(buf[:logSize]))
	}
	return shader, nil
}

// linkProgram compiles and links desc, then binds its uniform blocks and samplers to their slots.
func linkProgram(desc gpu.ProgramDescriptor) (*program, error) {
	p := &program{desc: desc, id: gl.CreateProgram()}

	vs, err := compileShader(gl.VERTEX_SHADER, desc.VertexSource)
	if err != nil {
		log.Printf("[gl] %s vertex shader:\n%s", desc.Label, err)
		p.delete()
		return nil, errors.Wrapf(gpu.ErrShaderCompile, "%s vertex: %v", desc.Label, err)
	}
	p.vertex = vs
	gl.AttachShader(p.id, vs)

	if desc.FragmentSource != "" {
		fs, err := compileShader(gl.FRAGMENT_SHADER, desc.FragmentSource)
		if err != nil {
			log.Printf("[gl] %s fragment shader:\n%s", desc.Label, err)
			p.delete()
			return nil, errors.Wrapf(gpu.ErrShaderCompile, "%s fragment: %v", desc.Label, err)
		}
		p.fragment = fs
		gl.AttachShader(p.id, fs)
	}

	gl.LinkProgram(p.id)
	var linked int32
	gl.GetProgramiv(p.id, gl.LINK_STATUS, &linked)
	if linked == gl.FALSE {
		var logSize int32
		gl.GetProgramiv(p.id, gl.INFO_LOG_LENGTH, &logSize)
		buf := make([]uint8, logSize+1)
		gl.GetProgramInfoLog(p.id, int32(len(buf)), &logSize, &buf[0])
		errString := string(buf[:logSize])
		log.Printf("[gl] %s link:\n%s", desc.Label, errString)
		p.delete()
		return nil, errors.Wrapf(gpu.ErrShaderCompile, "%s link: %s", desc.Label, errString)
	}

	for _, b := range desc.UniformBlocks {
		index := gl.GetUniformBlockIndex(p.id, gl.Str(b.Name+"\x00"))
		if index == gl.INVALID_INDEX {
			// the linker drops blocks a program never reads
			continue
		}
		gl.UniformBlockBinding(p.id, index, uint32(b.Slot))
	}

	var current int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &current)
	gl.UseProgram(p.id)
	for _, t := range desc.Textures {
		loc := gl.GetUniformLocation(p.id, gl.Str(t.Name+"\x00"))
		if loc < 0 {
			continue
		}
		gl.Uniform1i(loc, int32(t.Slot))
	}
	gl.UseProgram(uint32(current))

	return p, nil
}
