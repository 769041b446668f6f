package terrain

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glr/internal/engine/glw"
	"github.com/Faultbox/glr/pkg/math"
)

// nodeState is the lifecycle of a chunk node.
//
//	pending -> active <-> inactive -> released
//	pending -> cancelled -> released
type nodeState int32

const (
	statePending nodeState = iota // reserved, mesh not yet uploaded
	stateActive
	stateInactive
	stateCancelled // dropped before its upload ran
	stateReleased
)

// SceneNode is the renderable for one chunk coordinate.
type SceneNode struct {
	id    ID
	coord math.IVec3
	name  atomic.Pointer[string]
	state atomic.Int32

	// Written before the node is handed to the render thread.
	shader    glw.ShaderProgram
	transform mgl32.Mat4

	model *Model // render thread only
}

func newSceneNode(id ID, coord math.IVec3) *SceneNode {
	n := &SceneNode{id: id, coord: coord, transform: mgl32.Ident4()}
	n.state.Store(int32(statePending))
	return n
}

func (n *SceneNode) ID() ID            { return n.id }
func (n *SceneNode) Coord() math.IVec3 { return n.coord }

// Name is empty until the node's mesh has been uploaded.
func (n *SceneNode) Name() string {
	if p := n.name.Load(); p != nil {
		return *p
	}
	return ""
}

func (n *SceneNode) SetName(name string) {
	n.name.Store(&name)
}

// IsActive reports whether the node is drawn.
func (n *SceneNode) IsActive() bool {
	return n.loadState() == stateActive
}

func (n *SceneNode) loadState() nodeState {
	return nodeState(n.state.Load())
}

func (n *SceneNode) transition(from, to nodeState) bool {
	return n.state.CompareAndSwap(int32(from), int32(to))
}

func (n *SceneNode) Attach(shader glw.ShaderProgram) {
	n.shader = shader
}

func (n *SceneNode) AttachModel(model *Model) {
	n.model = model
}

// Translate moves the node by offset in its local frame.
func (n *SceneNode) Translate(offset mgl32.Vec3) {
	n.transform = n.transform.Mul4(mgl32.Translate3D(offset.X(), offset.Y(), offset.Z()))
}

func (n *SceneNode) Transform() mgl32.Mat4 {
	return n.transform
}

// Render draws the node with the currently bound program.
func (n *SceneNode) Render() {
	if n.model == nil {
		return
	}
	if n.shader != nil {
		n.shader.SetMat4("model", n.transform)
	}
	n.model.Render()
}

// FreeVideoMemory releases the node's own GPU buffers. Shared textures and
// materials stay alive.
func (n *SceneNode) FreeVideoMemory() {
	if n.model != nil {
		n.model.FreeVideoMemory()
	}
}
