package terrain

import "github.com/Faultbox/glr/pkg/math"

// EventListener is notified on the render thread as chunks come and go.
type EventListener interface {
	// ChunkVisible is called once a chunk's mesh is uploaded and drawn.
	ChunkVisible(node *SceneNode)
	// ChunkReleased is called after a chunk's GPU buffers are freed.
	ChunkReleased(coord math.IVec3)
}

func (m *Manager) AddEventListener(l EventListener) {
	m.listenersMu.Lock()
	m.listeners = append(m.listeners, l)
	m.listenersMu.Unlock()
}

func (m *Manager) RemoveEventListener(l EventListener) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	for i, existing := range m.listeners {
		if existing == l {
			m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
			return
		}
	}
}

func (m *Manager) snapshotListeners() []EventListener {
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	return m.listeners
}

func (m *Manager) notifyVisible(n *SceneNode) {
	for _, l := range m.snapshotListeners() {
		l.ChunkVisible(n)
	}
}

func (m *Manager) notifyReleased(n *SceneNode) {
	for _, l := range m.snapshotListeners() {
		l.ChunkReleased(n.coord)
	}
}
