package wgpu_backend

import "sort"

// uniformAlignment is the WebGPU default minUniformBufferOffsetAlignment.
const uniformAlignment = 256

// arenaSlack is reserved past the last entry so a binding sized for the largest block never reads
// beyond the buffer.
const arenaSlack = 4096

// minArenaSize is the initial uniform buffer size.
const minArenaSize = 64 * 1024

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

type arenaEntry struct {
	offset uint32
	length int
}

// uniformArena stages every uniform write of a frame into one buffer addressed with dynamic offsets.
// Each write lands at a fresh aligned offset, so a draw keeps seeing the data that was current when it
// was recorded.
type uniformArena struct {
	staging []byte
	current map[int]arenaEntry
}

func newUniformArena() *uniformArena {
	return &uniformArena{current: make(map[int]arenaEntry)}
}

// write appends data for slot and makes it the slot's current entry.
func (a *uniformArena) write(slot int, data []byte) uint32 {
	off := len(a.staging)
	size := alignUp(max(len(data), 1), uniformAlignment)
	a.staging = append(a.staging, make([]byte, size)...)
	copy(a.staging[off:], data)
	a.current[slot] = arenaEntry{offset: uint32(off), length: len(data)}
	return uint32(off)
}

// offset returns the current entry of slot, or 0 when the slot was never written.
func (a *uniformArena) offset(slot int) uint32 {
	return a.current[slot].offset
}

// required is the buffer size needed to hold the staged entries.
func (a *uniformArena) required() int {
	return max(alignUp(len(a.staging)+arenaSlack, uniformAlignment), minArenaSize)
}

// reset starts a new frame. Uniform state is sticky, so the current entry of every slot is carried
// over to the front of the new frame.
func (a *uniformArena) reset() {
	prev := a.staging
	entries := a.current
	a.staging = nil
	a.current = make(map[int]arenaEntry, len(entries))

	slots := make([]int, 0, len(entries))
	for slot := range entries {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	for _, slot := range slots {
		e := entries[slot]
		a.write(slot, prev[e.offset:int(e.offset)+e.length])
	}
}
