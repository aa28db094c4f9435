package scene

import "github.com/go-gl/mathgl/mgl64"

// Query is a reusable ray description. Callers keep one per probing
// component and overwrite it with Set before every cast.
type Query struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
	Far       float64
	// FirstHitOnly keeps only the nearest hit of each object.
	FirstHitOnly bool
}

// Set points the query along direction, normalizing it. A zero direction
// leaves Direction zero and the query will report no hits.
func (q *Query) Set(origin, direction mgl64.Vec3, far float64) {
	q.Origin = origin
	q.Far = far
	if l := direction.Len(); l > 0 {
		q.Direction = direction.Mul(1 / l)
	} else {
		q.Direction = mgl64.Vec3{}
	}
}

// End is the far point of the ray.
func (q Query) End() mgl64.Vec3 {
	return q.Origin.Add(q.Direction.Mul(q.Far))
}

// Hit is one ray/object intersection.
type Hit struct {
	Point     mgl64.Vec3
	Normal    mgl64.Vec3
	HasNormal bool
	Distance  float64
	Object    *Object

	seq uint64
}
