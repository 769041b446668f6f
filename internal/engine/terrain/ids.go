package terrain

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// ID identifies a scene node.
type ID string

// IdManager issues unique node ids.
type IdManager struct {
	issued atomic.Uint64
}

// CreateID returns a new id. Safe for concurrent use.
func (m *IdManager) CreateID() ID {
	m.issued.Add(1)
	return ID(uuid.NewString())
}

// Issued returns the number of ids created since the last Reset.
func (m *IdManager) Issued() uint64 {
	return m.issued.Load()
}

// Reset starts a new generation of ids.
func (m *IdManager) Reset() {
	m.issued.Store(0)
}
