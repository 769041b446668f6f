package viewer

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glr/internal/engine/picking"
	"github.com/Faultbox/glr/internal/engine/terrain"
	"github.com/Faultbox/glr/internal/engine/voxel"
	"github.com/Faultbox/glr/pkg/math"
)

// aimStep is the march step for the crosshair ray, in world units.
const aimStep = 0.5

// hud keeps the numbers shown in the window title. It listens to chunk
// events, which arrive on the render thread.
type hud struct {
	terrain *terrain.Manager
	field   voxel.FieldFunction

	visible  atomic.Int64
	released atomic.Int64

	frames     int
	lastReport time.Time
}

func newHUD(m *terrain.Manager, field voxel.FieldFunction) *hud {
	return &hud{terrain: m, field: field}
}

func (h *hud) ChunkVisible(*terrain.SceneNode) { h.visible.Add(1) }
func (h *hud) ChunkReleased(math.IVec3)        { h.released.Add(1) }

func (h *hud) cell(pos mgl32.Vec3) math.IVec3 {
	return h.terrain.GridLocation(pos)
}

// aim describes the terrain point under the crosshair.
func (h *hud) aim(pos, forward mgl32.Vec3) string {
	s := h.terrain.Settings()
	p, ok := picking.MarchField(picking.Ray{Origin: pos, Direction: forward}, h.field, s.IsoLevel, aimStep, s.MaxViewDistance)
	if !ok {
		return "aim -"
	}
	c := math.FloorToGrid(p, float32(s.ChunkSize))
	return fmt.Sprintf("aim %.1f,%.1f,%.1f chunk %v %s", p.X(), p.Y(), p.Z(), c, h.terrain.LevelOfDetail(c))
}

// frame counts a frame and returns a status line once per second.
func (h *hud) frame(now time.Time, pos, forward mgl32.Vec3) (string, bool) {
	h.frames++
	if h.lastReport.IsZero() {
		h.lastReport = now
		h.frames = 0
		return "", false
	}
	elapsed := now.Sub(h.lastReport)
	if elapsed < time.Second {
		return "", false
	}
	fps := float64(h.frames) / elapsed.Seconds()
	h.frames = 0
	h.lastReport = now

	return fmt.Sprintf("%.0f fps | cell %v | chunks %d (+%d -%d) | queue %d | %s",
		fps,
		h.cell(pos),
		len(h.terrain.ActiveChunks()),
		h.visible.Load(),
		h.released.Load(),
		h.terrain.PendingWork(),
		h.aim(pos, forward),
	), true
}
