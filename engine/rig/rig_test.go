package rig

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-passes/engine/animator"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unit = mgl32.Vec3{1, 1, 1}

func staticPose(x, y, z float32) animator.Pose {
	return animator.Pose{Position: mgl32.Vec3{x, y, z}, Rotation: mgl32.QuatIdent(), Scale: unit}
}

func slidingClip(t *testing.T, to mgl32.Vec3) animator.Clip {
	t.Helper()
	c, err := animator.NewClip(
		animator.WithKeyframe(0, mgl32.Vec3{}, mgl32.QuatIdent(), unit),
		animator.WithKeyframe(1, to, mgl32.QuatIdent(), unit),
	)
	require.NoError(t, err)
	return c
}

func TestSolveComposesThreeLevels(t *testing.T) {
	r := NewRig()
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	root, err := r.AddStaticNode(NoNode, animator.Pose{Position: mgl32.Vec3{1, 0, 0}, Rotation: rot, Scale: unit})
	require.NoError(t, err)
	mid, err := r.AddStaticNode(root, animator.Pose{Position: mgl32.Vec3{0, 2, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{2, 2, 2}})
	require.NoError(t, err)
	leaf, err := r.AddStaticNode(mid, staticPose(0, 0, 1))
	require.NoError(t, err)

	require.NoError(t, r.Solve(root))

	rootL, _ := r.Local(root)
	midL, _ := r.Local(mid)
	leafL, _ := r.Local(leaf)
	want := rootL.Mul4(midL).Mul4(leafL)

	got, err := r.Global(leaf)
	require.NoError(t, err)
	assert.True(t, got.ApproxEqualThreshold(want, 1e-5))

	rootG, _ := r.Global(root)
	assert.Equal(t, rootL, rootG)

	// leaf origin: scaled by 2 to z=2, raised 2, then rotated +z onto +x and shifted 1 along x
	p := got.Col(3).Vec3()
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{3, 2, 0}, 1e-5), "got %v", p)
}

func TestSolveFromChildKeepsParentGlobal(t *testing.T) {
	r := NewRig()
	root, err := r.AddStaticNode(NoNode, staticPose(10, 0, 0))
	require.NoError(t, err)
	child, err := r.AddStaticNode(root, staticPose(1, 0, 0))
	require.NoError(t, err)

	require.NoError(t, r.Solve(root))
	g, err := r.Global(child)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, g.Col(3).X(), 1e-6)

	require.NoError(t, r.Solve(child))
	g, err = r.Global(child)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, g.Col(3).X(), 1e-6)
}

func TestAddNodeStartsAtFirstKeyframe(t *testing.T) {
	r := NewRig()
	c, err := animator.NewClip(
		animator.WithKeyframe(0, mgl32.Vec3{0, 1.3, 0}, mgl32.QuatIdent(), unit),
		animator.WithKeyframe(0.4, mgl32.Vec3{0, 5, 0}, mgl32.QuatIdent(), unit),
	)
	require.NoError(t, err)

	id, err := r.AddNode(NoNode, c)
	require.NoError(t, err)

	local, err := r.Local(id)
	require.NoError(t, err)
	assert.True(t, local.Col(3).Vec3().ApproxEqualThreshold(mgl32.Vec3{0, 1.3, 0}, 1e-6))
	assert.Equal(t, c, r.Clip(id))
}

func TestUpdateLeavesStaticNodesUntouched(t *testing.T) {
	r := NewRig()
	root, err := r.AddNode(NoNode, slidingClip(t, mgl32.Vec3{10, 0, 0}))
	require.NoError(t, err)
	fixed, err := r.AddStaticNode(root, staticPose(0, 3, 0))
	require.NoError(t, err)

	override := mgl32.Translate3D(7, 7, 7)
	require.NoError(t, r.SetLocal(fixed, override))

	require.NoError(t, r.Update(root, 0.5))

	rootL, _ := r.Local(root)
	assert.True(t, rootL.Col(3).Vec3().ApproxEqualThreshold(mgl32.Vec3{5, 0, 0}, 1e-5))

	fixedL, _ := r.Local(fixed)
	assert.Equal(t, override, fixedL)
	assert.Nil(t, r.Clip(fixed))
}

func TestUpdateThenSolveMovesDescendants(t *testing.T) {
	r := NewRig()
	root, _ := r.AddNode(NoNode, slidingClip(t, mgl32.Vec3{0, 4, 0}))
	child, _ := r.AddStaticNode(root, staticPose(1, 0, 0))

	require.NoError(t, r.Update(root, 0.25))
	require.NoError(t, r.Solve(root))

	g, _ := r.Global(child)
	assert.True(t, g.Col(3).Vec3().ApproxEqualThreshold(mgl32.Vec3{1, 1, 0}, 1e-5))
}

func TestWalkIsPreOrderInInsertionOrder(t *testing.T) {
	r := NewRig()
	root, _ := r.AddStaticNode(NoNode, staticPose(0, 0, 0))
	a, _ := r.AddStaticNode(root, staticPose(1, 0, 0))
	b, _ := r.AddStaticNode(root, staticPose(2, 0, 0))
	a1, _ := r.AddStaticNode(a, staticPose(0, 1, 0))
	b1, _ := r.AddStaticNode(b, staticPose(0, 1, 0))
	a2, _ := r.AddStaticNode(a, staticPose(0, 2, 0))

	var visited []NodeID
	require.NoError(t, r.Walk(root, func(id NodeID, _ mgl32.Mat4) {
		visited = append(visited, id)
	}))

	assert.Equal(t, []NodeID{root, a, a1, a2, b, b1}, visited)
}

func TestTeardownIsPostOrderAndReusesIDs(t *testing.T) {
	r := NewRig()
	root, _ := r.AddStaticNode(NoNode, staticPose(0, 0, 0))
	a, _ := r.AddStaticNode(root, staticPose(1, 0, 0))
	a1, _ := r.AddStaticNode(a, staticPose(0, 1, 0))
	a2, _ := r.AddStaticNode(a, staticPose(0, 2, 0))
	b, _ := r.AddStaticNode(root, staticPose(2, 0, 0))
	require.Equal(t, 5, r.Len())

	order, err := r.Teardown(a)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{a1, a2, a}, order)
	assert.Equal(t, []NodeID{b}, r.Children(root))
	assert.Equal(t, 2, r.Len())
	assert.False(t, r.Contains(a1))

	reused, err := r.AddStaticNode(b, staticPose(0, 0, 0))
	require.NoError(t, err)
	assert.Contains(t, []NodeID{a, a1, a2}, reused)
	assert.Equal(t, b, r.Parent(reused))

	order, err = r.Teardown(root)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{reused, b, root}, order)
	assert.Equal(t, 0, r.Len())
}

func TestUnknownNodesAreRejected(t *testing.T) {
	r := NewRig(WithCapacity(4))

	_, err := r.AddStaticNode(NodeID(3), staticPose(0, 0, 0))
	assert.True(t, errors.Is(err, ErrUnknownNode))

	root, _ := r.AddStaticNode(NoNode, staticPose(0, 0, 0))
	_, err = r.Teardown(root)
	require.NoError(t, err)

	_, err = r.AddStaticNode(root, staticPose(0, 0, 0))
	assert.True(t, errors.Is(err, ErrUnknownNode))
	assert.True(t, errors.Is(r.Solve(root), ErrUnknownNode))
	assert.True(t, errors.Is(r.Update(root, 0.1), ErrUnknownNode))
	_, err = r.Teardown(root)
	assert.True(t, errors.Is(err, ErrUnknownNode))
}

func TestAddNodeRejectsEmptyClip(t *testing.T) {
	r := NewRig()
	empty, err := animator.NewClip()
	require.NoError(t, err)

	_, err = r.AddNode(NoNode, empty)
	assert.True(t, errors.Is(err, ErrEmptyClip))
	_, err = r.AddNode(NoNode, nil)
	assert.True(t, errors.Is(err, ErrEmptyClip))
	assert.Equal(t, 0, r.Len())
}

func TestMultipleRootsSolveIndependently(t *testing.T) {
	r := NewRig()
	r1, _ := r.AddStaticNode(NoNode, staticPose(1, 0, 0))
	r2, _ := r.AddStaticNode(NoNode, staticPose(0, 0, 9))
	c2, _ := r.AddStaticNode(r2, staticPose(0, 1, 0))

	require.NoError(t, r.Solve(r1))
	g, _ := r.Global(c2)
	// c2 was never solved, so its global is still its local
	assert.True(t, g.Col(3).Vec3().ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6))

	require.NoError(t, r.Solve(r2))
	g, _ = r.Global(c2)
	assert.True(t, g.Col(3).Vec3().ApproxEqualThreshold(mgl32.Vec3{0, 1, 9}, 1e-6))
}
