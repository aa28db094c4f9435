package collision

import "github.com/go-gl/mathgl/mgl64"

// BounceResponse is the velocity a kart leaves a wall with. Force is the
// magnitude of Velocity and Direction its unit vector.
type BounceResponse struct {
	Velocity  mgl64.Vec3 `json:"velocity"`
	Force     float64    `json:"force"`
	Direction mgl64.Vec3 `json:"direction"`
}

// CalculateBounceResponse reflects velocity about hitNormal, which must be
// unit length, and damps it by strength. Results slower than minSpeed are
// raised to minSpeed along the same direction so a kart never sticks to a
// wall. A kart with no velocity is pushed out along hitNormal.
func CalculateBounceResponse(hitPoint, hitNormal, velocity mgl64.Vec3, strength, minSpeed float64) BounceResponse {
	reflected := velocity.Sub(hitNormal.Mul(2 * velocity.Dot(hitNormal))).Mul(strength)
	force := reflected.Len()

	var dir mgl64.Vec3
	if force > 0 {
		dir = reflected.Mul(1 / force)
	} else {
		dir = hitNormal
	}
	if force < minSpeed {
		reflected = dir.Mul(minSpeed)
		force = minSpeed
	}
	return BounceResponse{
		Velocity:  reflected,
		Force:     force,
		Direction: dir,
	}
}
