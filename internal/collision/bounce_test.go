package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func assertConsistent(t *testing.T, r BounceResponse) {
	t.Helper()
	assert.InDelta(t, r.Force, r.Velocity.Len(), 1e-9)
	assert.InDelta(t, 1.0, r.Direction.Len(), 1e-9)
	assert.True(t, r.Direction.Mul(r.Force).ApproxEqualThreshold(r.Velocity, 1e-9))
}

func TestBounceReflectsAndDamps(t *testing.T) {
	r := CalculateBounceResponse(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{10, 0, 0}, 0.8, 2)
	assert.InDelta(t, -8, r.Velocity.X(), 1e-9)
	assert.InDelta(t, 0, r.Velocity.Z(), 1e-9)
	assert.InDelta(t, 8, r.Force, 1e-9)
	assertConsistent(t, r)
}

func TestBounceKeepsTangentialComponent(t *testing.T) {
	r := CalculateBounceResponse(mgl64.Vec3{}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{6, 0, 8}, 1, 2)
	assert.InDelta(t, -6, r.Velocity.X(), 1e-9)
	assert.InDelta(t, 8, r.Velocity.Z(), 1e-9)
	assert.InDelta(t, 10, r.Force, 1e-9)
	assertConsistent(t, r)
}

func TestBounceEnforcesMinimumSpeed(t *testing.T) {
	tests := []struct {
		name     string
		normal   mgl64.Vec3
		velocity mgl64.Vec3
	}{
		{"grazing hit", mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0.1, 0, 1}},
		{"slow head-on", mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, -1.5}},
		{"diagonal wall", mgl64.Vec3{-1, 0, -1}.Normalize(), mgl64.Vec3{0.3, 0, 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.velocity
			want := v.Sub(tt.normal.Mul(2 * v.Dot(tt.normal))).Normalize()

			r := CalculateBounceResponse(mgl64.Vec3{}, tt.normal, v, 0.8, 2)
			assert.InDelta(t, 2.0, r.Force, 1e-12)
			assert.InDelta(t, 2.0, r.Velocity.Len(), 1e-9)
			assert.True(t, r.Direction.ApproxEqualThreshold(want, 1e-9), "direction %v want %v", r.Direction, want)
			assertConsistent(t, r)
		})
	}
}

func TestBounceFromRestPushesAlongNormal(t *testing.T) {
	r := CalculateBounceResponse(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{}, 0.8, 2)
	assert.Equal(t, 2.0, r.Force)
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, r.Direction)
	assert.InDelta(t, -2, r.Velocity.Z(), 1e-12)
}

func TestProberBounceUsesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BounceStrength = 0.5
	cfg.MinBounceSpeed = 1
	p := NewProber(cfg)

	r := p.CalculateBounceResponse(mgl64.Vec3{}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{4, 0, 0})
	assert.InDelta(t, 2, r.Force, 1e-9)

	r = p.CalculateBounceResponse(mgl64.Vec3{}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 1, r.Force, 1e-12)
}
