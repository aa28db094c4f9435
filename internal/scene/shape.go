package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const rayEpsilon = 1e-9

// Shape is a piece of static geometry a ray can be cast against.
type Shape interface {
	Bounds() (min, max mgl64.Vec3)
	// Raycast returns the distance along dir to the entry point and the
	// surface normal there. dir must be unit length.
	Raycast(origin, dir mgl64.Vec3, far float64) (dist float64, normal mgl64.Vec3, ok bool)
	validate() error
}

// Box is an axis-aligned solid. Rays starting inside it do not hit it.
type Box struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (b Box) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	return b.Min, b.Max
}

func (b Box) validate() error {
	for i := 0; i < 3; i++ {
		if b.Min[i] > b.Max[i] {
			return errors.Errorf("box min %v exceeds max %v on axis %d", b.Min, b.Max, i)
		}
	}
	return nil
}

// Raycast uses the slab method, keeping the axis of the entry plane so the
// hit can report a face normal.
func (b Box) Raycast(origin, dir mgl64.Vec3, far float64) (float64, mgl64.Vec3, bool) {
	tEnter := math.Inf(-1)
	tExit := math.Inf(1)
	enterAxis := -1

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < rayEpsilon {
			if origin[axis] < b.Min[axis] || origin[axis] > b.Max[axis] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		t1 := (b.Min[axis] - origin[axis]) / dir[axis]
		t2 := (b.Max[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tEnter {
			tEnter = t1
			enterAxis = axis
		}
		if t2 < tExit {
			tExit = t2
		}
		if tEnter > tExit {
			return 0, mgl64.Vec3{}, false
		}
	}

	if enterAxis < 0 || tEnter < 0 || tEnter > far {
		return 0, mgl64.Vec3{}, false
	}

	var normal mgl64.Vec3
	if dir[enterAxis] > 0 {
		normal[enterAxis] = -1
	} else {
		normal[enterAxis] = 1
	}
	return tEnter, normal, true
}

// Triangle is a double-sided face. Its reported normal always faces the
// incoming ray.
type Triangle struct {
	A, B, C mgl64.Vec3
}

func (t Triangle) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	min := mgl64.Vec3{
		math.Min(t.A[0], math.Min(t.B[0], t.C[0])),
		math.Min(t.A[1], math.Min(t.B[1], t.C[1])),
		math.Min(t.A[2], math.Min(t.B[2], t.C[2])),
	}
	max := mgl64.Vec3{
		math.Max(t.A[0], math.Max(t.B[0], t.C[0])),
		math.Max(t.A[1], math.Max(t.B[1], t.C[1])),
		math.Max(t.A[2], math.Max(t.B[2], t.C[2])),
	}
	return min, max
}

func (t Triangle) validate() error {
	if t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Len() < rayEpsilon {
		return errors.Errorf("degenerate triangle %v %v %v", t.A, t.B, t.C)
	}
	return nil
}

// Raycast is Möller–Trumbore.
func (t Triangle) Raycast(origin, dir mgl64.Vec3, far float64) (float64, mgl64.Vec3, bool) {
	e1 := t.B.Sub(t.A)
	e2 := t.C.Sub(t.A)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < rayEpsilon {
		return 0, mgl64.Vec3{}, false
	}
	inv := 1 / det

	s := origin.Sub(t.A)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, mgl64.Vec3{}, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, mgl64.Vec3{}, false
	}
	dist := e2.Dot(q) * inv
	if dist < 0 || dist > far {
		return 0, mgl64.Vec3{}, false
	}

	normal := e1.Cross(e2).Normalize()
	if normal.Dot(dir) > 0 {
		normal = normal.Mul(-1)
	}
	return dist, normal, true
}

// Quad splits the planar quad a-b-c-d into two triangles.
func Quad(a, b, c, d mgl64.Vec3) []Shape {
	return []Shape{Triangle{A: a, B: b, C: c}, Triangle{A: a, B: c, C: d}}
}
