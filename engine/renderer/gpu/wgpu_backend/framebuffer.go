package wgpu_backend

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/pkg/errors"
)

// maxColorAttachments is the WebGPU default maxColorAttachments limit.
const maxColorAttachments = 8

// framebuffer is an off-screen target. WebGPU has no framebuffer object, so it is only the set of
// attachments a render pass is built from.
type framebuffer struct {
	label       string
	color       map[int]gpu.TextureHandle
	depth       gpu.TextureHandle
	drawBuffers []int
	readBuffer  int
}

func newFramebuffer(label string) *framebuffer {
	return &framebuffer{
		label:      label,
		color:      make(map[int]gpu.TextureHandle),
		readBuffer: gpu.NoBuffer,
	}
}

// colorOrder returns the attached color textures in draw buffer order. Without declared draw buffers
// every attachment is used in index order.
func (f *framebuffer) colorOrder() []gpu.TextureHandle {
	if f.drawBuffers != nil {
		out := make([]gpu.TextureHandle, 0, len(f.drawBuffers))
		for _, b := range f.drawBuffers {
			if tex, ok := f.color[b]; ok {
				out = append(out, tex)
			}
		}
		return out
	}
	indices := make([]int, 0, len(f.color))
	for i := range f.color {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	out := make([]gpu.TextureHandle, 0, len(indices))
	for _, i := range indices {
		out = append(out, f.color[i])
	}
	return out
}

// sizeFunc resolves a texture handle to its size.
type sizeFunc func(gpu.TextureHandle) (width, height int, ok bool)

// checkComplete applies the completeness rules a render pass needs: at least one attachment, every
// draw buffer backed by a texture and every attachment the same size.
func checkComplete(f *framebuffer, size sizeFunc) error {
	if len(f.color) == 0 && f.depth == 0 {
		return errors.Wrapf(gpu.ErrIncompleteFramebuffer, "%s: no attachments", f.label)
	}
	if len(f.drawBuffers) > maxColorAttachments {
		return errors.Wrapf(gpu.ErrIncompleteFramebuffer, "%s: %d draw buffers", f.label, len(f.drawBuffers))
	}
	for _, b := range f.drawBuffers {
		if _, ok := f.color[b]; !ok {
			return errors.Wrapf(gpu.ErrIncompleteFramebuffer, "%s: draw buffer %d has no attachment", f.label, b)
		}
	}
	if f.readBuffer != gpu.NoBuffer {
		if _, ok := f.color[f.readBuffer]; !ok {
			return errors.Wrapf(gpu.ErrIncompleteFramebuffer, "%s: read buffer %d has no attachment", f.label, f.readBuffer)
		}
	}

	attached := f.colorOrder()
	if f.depth != 0 {
		attached = append(attached, f.depth)
	}
	w0, h0 := -1, -1
	for _, tex := range attached {
		w, h, ok := size(tex)
		if !ok {
			return errors.Wrapf(gpu.ErrIncompleteFramebuffer, "%s: texture %d was deleted", f.label, tex)
		}
		if w0 < 0 {
			w0, h0 = w, h
			continue
		}
		if w != w0 || h != h0 {
			return errors.Wrapf(gpu.ErrIncompleteFramebuffer, "%s: attachment sizes differ (%dx%d vs %dx%d)", f.label, w, h, w0, h0)
		}
	}
	return nil
}
