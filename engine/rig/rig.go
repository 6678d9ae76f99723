package rig

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/engine/animator"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// NodeID addresses a node in a Rig's arena. IDs of torn-down nodes are reused by later inserts.
type NodeID int

// NoNode is the parent of a root node.
const NoNode NodeID = -1

var (
	// ErrUnknownNode is returned for IDs that were never allocated or have been torn down.
	ErrUnknownNode = errors.New("rig: unknown node")
	// ErrEmptyClip is returned when an animated node is added with a clip that has no keyframes.
	ErrEmptyClip = errors.New("rig: clip has no keyframes")
)

// node is one arena slot. Children are kept in insertion order.
type node struct {
	alive    bool
	parent   NodeID
	children []NodeID
	clip     animator.Clip
	local    mgl32.Mat4
	global   mgl32.Mat4
}

// rig is the implementation of the Rig interface.
type rig struct {
	mu *sync.Mutex

	nodes []node
	free  []NodeID
	count int
}

// Rig is a forward-kinematics hierarchy stored as an arena of nodes linked by index.
//
// Each node has a local transform, either driven by an animation clip or fixed, and a global transform
// that Solve derives as parent.global * local walking down from a root. Any number of roots may coexist.
type Rig interface {
	// AddNode inserts an animated node under parent. Its local transform starts at the clip's first keyframe.
	//
	// Parameters:
	//   - parent: the parent node, or NoNode for a new root
	//   - clip: the clip driving the node; must hold at least one keyframe
	//
	// Returns:
	//   - NodeID: the new node's ID
	//   - error: ErrUnknownNode for a bad parent, ErrEmptyClip for an empty clip
	AddNode(parent NodeID, clip animator.Clip) (NodeID, error)

	// AddStaticNode inserts a node whose local transform is fixed to pose and ignored by Update.
	//
	// Parameters:
	//   - parent: the parent node, or NoNode for a new root
	//   - pose: the fixed local pose
	//
	// Returns:
	//   - NodeID: the new node's ID
	//   - error: ErrUnknownNode for a bad parent
	AddStaticNode(parent NodeID, pose animator.Pose) (NodeID, error)

	// Update advances every clip-driven node in root's subtree by dt, in pre-order, replacing its local
	// transform with the clip's evaluation. Static nodes are left untouched.
	Update(root NodeID, dt float32) error

	// Solve recomputes global transforms for root's subtree in pre-order. A node without a parent takes
	// its local as its global; every other node's global is parent.global * local, so solving from a
	// non-root node composes with its parent's current global.
	Solve(root NodeID) error

	// Walk visits root's subtree in pre-order with each node's current global transform.
	Walk(root NodeID, fn func(id NodeID, global mgl32.Mat4)) error

	// Teardown releases root's subtree in post-order, detaches root from its parent, and returns the
	// visit order. Released IDs become available for reuse.
	//
	// Parameters:
	//   - root: the subtree root to release
	//
	// Returns:
	//   - []NodeID: node IDs in the order they were released
	//   - error: ErrUnknownNode if root is not live
	Teardown(root NodeID) ([]NodeID, error)

	// Local returns a node's local transform.
	Local(id NodeID) (mgl32.Mat4, error)

	// SetLocal overwrites a node's local transform. Clip-driven nodes are overwritten again on the next Update.
	SetLocal(id NodeID, local mgl32.Mat4) error

	// Global returns a node's global transform as of the last Solve.
	Global(id NodeID) (mgl32.Mat4, error)

	// Parent returns a node's parent, or NoNode for roots and unknown IDs.
	Parent(id NodeID) NodeID

	// Children returns a copy of a node's children in insertion order.
	Children(id NodeID) []NodeID

	// Clip returns the clip driving a node, or nil for static nodes and unknown IDs.
	Clip(id NodeID) animator.Clip

	// Contains reports whether id addresses a live node.
	Contains(id NodeID) bool

	// Len returns the number of live nodes.
	Len() int
}

var _ Rig = &rig{}

// NewRig creates an empty Rig.
//
// Parameters:
//   - options: functional options to configure the rig
//
// Returns:
//   - Rig: the newly created rig
func NewRig(options ...RigBuilderOption) Rig {
	r := &rig{
		mu: &sync.Mutex{},
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *rig) AddNode(parent NodeID, clip animator.Clip) (NodeID, error) {
	if clip == nil || clip.Len() == 0 {
		return NoNode, ErrEmptyClip
	}
	local := clip.Keyframes()[0].Pose().Matrix()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(parent, clip, local)
}

func (r *rig) AddStaticNode(parent NodeID, pose animator.Pose) (NodeID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(parent, nil, pose.Matrix())
}

// insert places a node in a free slot, or appends one. Caller must hold the mutex.
func (r *rig) insert(parent NodeID, clip animator.Clip, local mgl32.Mat4) (NodeID, error) {
	if parent != NoNode && !r.live(parent) {
		return NoNode, errors.Wrapf(ErrUnknownNode, "parent %d", parent)
	}

	n := node{
		alive:  true,
		parent: parent,
		clip:   clip,
		local:  local,
		global: local,
	}

	var id NodeID
	if last := len(r.free) - 1; last >= 0 {
		id = r.free[last]
		r.free = r.free[:last]
		r.nodes[id] = n
	} else {
		id = NodeID(len(r.nodes))
		r.nodes = append(r.nodes, n)
	}

	if parent != NoNode {
		r.nodes[parent].children = append(r.nodes[parent].children, id)
	}
	r.count++
	return id, nil
}

// live reports whether id is an allocated slot. Caller must hold the mutex.
func (r *rig) live(id NodeID) bool {
	return id >= 0 && int(id) < len(r.nodes) && r.nodes[id].alive
}

// preOrder lists root's subtree parents-first, children in insertion order. Caller must hold the mutex.
func (r *rig) preOrder(root NodeID) []NodeID {
	order := make([]NodeID, 0, 8)
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, id)

		children := r.nodes[id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return order
}

// postOrder lists root's subtree children-first. Caller must hold the mutex.
func (r *rig) postOrder(root NodeID, order []NodeID) []NodeID {
	for _, child := range r.nodes[root].children {
		order = r.postOrder(child, order)
	}
	return append(order, root)
}

func (r *rig) Update(root NodeID, dt float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(root) {
		return errors.Wrapf(ErrUnknownNode, "update root %d", root)
	}

	for _, id := range r.preOrder(root) {
		n := &r.nodes[id]
		if n.clip == nil || n.clip.Len() == 0 {
			continue
		}
		n.local = n.clip.Evaluate(dt)
	}
	return nil
}

func (r *rig) Solve(root NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(root) {
		return errors.Wrapf(ErrUnknownNode, "solve root %d", root)
	}

	for _, id := range r.preOrder(root) {
		n := &r.nodes[id]
		if n.parent == NoNode {
			n.global = n.local
			continue
		}
		n.global = r.nodes[n.parent].global.Mul4(n.local)
	}
	return nil
}

func (r *rig) Walk(root NodeID, fn func(id NodeID, global mgl32.Mat4)) error {
	r.mu.Lock()
	if !r.live(root) {
		r.mu.Unlock()
		return errors.Wrapf(ErrUnknownNode, "walk root %d", root)
	}
	order := r.preOrder(root)
	globals := make([]mgl32.Mat4, len(order))
	for i, id := range order {
		globals[i] = r.nodes[id].global
	}
	r.mu.Unlock()

	for i, id := range order {
		fn(id, globals[i])
	}
	return nil
}

func (r *rig) Teardown(root NodeID) ([]NodeID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(root) {
		return nil, errors.Wrapf(ErrUnknownNode, "teardown root %d", root)
	}

	if parent := r.nodes[root].parent; parent != NoNode {
		siblings := r.nodes[parent].children
		for i, id := range siblings {
			if id == root {
				r.nodes[parent].children = append(siblings[:i:i], siblings[i+1:]...)
				break
			}
		}
	}

	order := r.postOrder(root, nil)
	for _, id := range order {
		r.nodes[id] = node{parent: NoNode}
		r.free = append(r.free, id)
		r.count--
	}
	return order, nil
}

func (r *rig) Local(id NodeID) (mgl32.Mat4, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(id) {
		return mgl32.Mat4{}, errors.Wrapf(ErrUnknownNode, "node %d", id)
	}
	return r.nodes[id].local, nil
}

func (r *rig) SetLocal(id NodeID, local mgl32.Mat4) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(id) {
		return errors.Wrapf(ErrUnknownNode, "node %d", id)
	}
	r.nodes[id].local = local
	return nil
}

func (r *rig) Global(id NodeID) (mgl32.Mat4, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(id) {
		return mgl32.Mat4{}, errors.Wrapf(ErrUnknownNode, "node %d", id)
	}
	return r.nodes[id].global, nil
}

func (r *rig) Parent(id NodeID) NodeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(id) {
		return NoNode
	}
	return r.nodes[id].parent
}

func (r *rig) Children(id NodeID) []NodeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(id) {
		return nil
	}
	out := make([]NodeID, len(r.nodes[id].children))
	copy(out, r.nodes[id].children)
	return out
}

func (r *rig) Clip(id NodeID) animator.Clip {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live(id) {
		return nil
	}
	return r.nodes[id].clip
}

func (r *rig) Contains(id NodeID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live(id)
}

func (r *rig) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
