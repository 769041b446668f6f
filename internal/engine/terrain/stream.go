package terrain

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Stream calls Tick every interval until ctx is done. It returns nil when the
// context ends and the tick error otherwise. Run it on its own goroutine
// while the render thread calls Update and Render.
func (m *Manager) Stream(ctx context.Context, interval time.Duration) error {
	m.log.Info("terrain streaming started", zap.Duration("interval", interval))
	defer m.log.Info("terrain streaming stopped")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.Tick(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
