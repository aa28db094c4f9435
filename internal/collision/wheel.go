package collision

import (
	"github.com/go-gl/mathgl/mgl64"

	"kartrush/internal/scene"
	"kartrush/internal/shared/types"
)

// ResolveWheelGround snaps one wheel onto the surface below its mount
// point and refreshes its dirt flag. It is the only writer of wheel state.
// With no surface within reach the wheel keeps its last height and leaves
// the dirt. The returned value is the wheel's new height.
func (p *Prober) ResolveWheelGround(sc *scene.Scene, mount mgl64.Vec3, wheel *types.WheelState) float64 {
	y, _ := p.ResolveWheelContact(sc, mount, wheel)
	return y
}

// ResolveWheelContact is ResolveWheelGround that also reports whether the
// wheel found a surface.
func (p *Prober) ResolveWheelContact(sc *scene.Scene, mount mgl64.Vec3, wheel *types.WheelState) (float64, bool) {
	p.query.Set(mount, down, p.cfg.WheelRayFar)
	p.query.FirstHitOnly = true
	p.hits = sc.Intersect(p.query, p.hits)
	if len(p.hits) == 0 {
		wheel.OnDirt = false
		return wheel.Y, false
	}

	h := p.hits[0]
	groundY := h.Point.Y()
	wheel.Y = groundY + p.cfg.WheelClearance
	wheel.OnDirt = h.Object.Material == scene.MaterialDirt && groundY < p.cfg.DirtThresholdY
	return wheel.Y, true
}
