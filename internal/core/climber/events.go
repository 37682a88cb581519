package climber

import (
	"github.com/zeusync/climber/internal/core/events/bus"
	"github.com/zeusync/climber/internal/core/observability/log"
)

// Event types published by a climber. The payload is noted per type.
const (
	EventContactAcquired = "climber.contact.acquired" // mgl64.Vec3 normal
	EventContactLost     = "climber.contact.lost"     // mgl64.Vec3 last normal
	EventFacingChanged   = "climber.facing.changed"   // cube.Face
	EventPathObstructed  = "climber.path.obstructed"  // cube.Face
)

func (c *Climber) publish(eventType string, data any) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(bus.NewEvent(eventType, c.name, c.tick, data)); err != nil {
		c.logger.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
