package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"kartrush/internal/scene"
)

var (
	up   = mgl64.Vec3{0, 1, 0}
	down = mgl64.Vec3{0, -1, 0}
)

// Prober runs the per-frame ray checks of one simulation. It owns the ray
// query and hit buffer it reuses between calls, so a Prober must not be
// shared between goroutines.
type Prober struct {
	cfg   Config
	query scene.Query
	hits  []scene.Hit
}

// NewProber returns a Prober using cfg.
func NewProber(cfg Config) *Prober {
	return &Prober{
		cfg:  cfg,
		hits: make([]scene.Hit, 0, 16),
	}
}

// Config returns the tuning the prober was built with.
func (p *Prober) Config() Config {
	return p.cfg
}

// cast runs a first-hit-only query and returns the nearest ground or wall
// hit.
func (p *Prober) cast(sc *scene.Scene, origin, dir mgl64.Vec3, far float64) (scene.Hit, bool) {
	p.query.Set(origin, dir, far)
	p.query.FirstHitOnly = true
	p.hits = sc.Intersect(p.query, p.hits)
	for _, h := range p.hits {
		if h.Object.Kind.IsBoundary() {
			return h, true
		}
	}
	return scene.Hit{}, false
}

// CheckBoundaryCollision probes ahead of the kart with the configured
// look-ahead distance.
func (p *Prober) CheckBoundaryCollision(sc *scene.Scene, position, velocity mgl64.Vec3) (Hit, bool) {
	return p.CheckBoundaryCollisionWithin(sc, position, velocity, p.cfg.LookAhead)
}

// CheckBoundaryCollisionWithin casts a ray along velocity from just above
// position. A ground or wall hit is returned as is. With nothing ahead a
// second ray looks down in front of the kart: ground there means the track
// continues, no ground means the kart is about to drive off a track edge.
func (p *Prober) CheckBoundaryCollisionWithin(sc *scene.Scene, position, velocity mgl64.Vec3, lookAhead float64) (Hit, bool) {
	speed := velocity.Len()
	if speed < p.cfg.MinProbeSpeed {
		return Hit{}, false
	}
	dir := velocity.Mul(1 / speed)

	origin := position.Add(up.Mul(p.cfg.ProbeLift))
	if h, ok := p.cast(sc, origin, dir, lookAhead); ok {
		normal := dir.Mul(-1)
		if h.HasNormal {
			normal = h.Normal
		}
		return Hit{
			Point:    h.Point,
			Normal:   normal,
			Distance: h.Distance,
			Kind:     hitKindFor(h.Object.Kind),
			Surface:  h.Object.Name,
		}, true
	}

	edgeOrigin := position.Add(dir.Mul(p.cfg.EdgeProbeAhead)).Add(up.Mul(p.cfg.EdgeProbeLift))
	if _, ok := p.cast(sc, edgeOrigin, down, p.cfg.EdgeProbeFar); ok {
		return Hit{}, false
	}
	return Hit{
		Point:    position.Add(dir.Mul(p.cfg.EdgeOffset)),
		Normal:   dir.Mul(-1),
		Distance: p.cfg.EdgeOffset,
		Kind:     HitTrackEdge,
	}, true
}

// CheckMultiDirectionalCollision probes forward, then rotated +45° and
// -45° about the vertical axis, and returns the first heading that hits.
func (p *Prober) CheckMultiDirectionalCollision(sc *scene.Scene, position, velocity mgl64.Vec3) (MultiHit, bool) {
	speed := velocity.Len()
	if speed < p.cfg.MinProbeSpeed {
		return MultiHit{}, false
	}
	dir := velocity.Mul(1 / speed)
	angle := mgl64.DegToRad(p.cfg.MultiProbeDegree)
	headings := [3]mgl64.Vec3{
		dir,
		mgl64.Rotate3DY(angle).Mul3x1(dir),
		mgl64.Rotate3DY(-angle).Mul3x1(dir),
	}
	for i, h := range headings {
		if hit, ok := p.CheckBoundaryCollision(sc, position, h.Mul(speed)); ok {
			return MultiHit{Hit: hit, DirectionIndex: i}, true
		}
	}
	return MultiHit{}, false
}

// IsPositionOnTrack is IsPositionOnTrackWithin with the configured
// distance.
func (p *Prober) IsPositionOnTrack(sc *scene.Scene, position mgl64.Vec3) bool {
	return p.IsPositionOnTrackWithin(sc, position, p.cfg.OnTrackDistance)
}

// IsPositionOnTrackWithin reports whether a ground or wall surface lies
// below position no further than maxDistance away vertically.
func (p *Prober) IsPositionOnTrackWithin(sc *scene.Scene, position mgl64.Vec3, maxDistance float64) bool {
	origin := position.Add(up.Mul(p.cfg.OnTrackLift))
	h, ok := p.cast(sc, origin, down, maxDistance+p.cfg.OnTrackLift)
	if !ok {
		return false
	}
	return math.Abs(position.Y()-h.Point.Y()) <= maxDistance
}

// CalculateBounceResponse is CalculateBounceResponse with the configured
// strength and minimum speed.
func (p *Prober) CalculateBounceResponse(hitPoint, hitNormal, velocity mgl64.Vec3) BounceResponse {
	return CalculateBounceResponse(hitPoint, hitNormal, velocity, p.cfg.BounceStrength, p.cfg.MinBounceSpeed)
}
