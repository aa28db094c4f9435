package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Object is a named piece of scene geometry.
type Object struct {
	ID   string
	Name string
	// Kind and Material are filled in by Scene.Add from the name.
	Kind     SurfaceKind
	Material Material
	// Intersectable objects are considered by ray queries.
	Intersectable bool
	// NoFaceNormals marks geometry imported without face data. Hits on it
	// carry no normal.
	NoFaceNormals bool
	// Destructible walls may be removed while a race runs.
	Destructible bool
	Shapes       []Shape
}

// NewObject returns an intersectable object made of the given shapes.
func NewObject(name string, shapes ...Shape) *Object {
	return &Object{
		Name:          name,
		Intersectable: true,
		Shapes:        shapes,
	}
}

// Bounds is the union of the shape bounds.
func (o *Object) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	min := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, s := range o.Shapes {
		smin, smax := s.Bounds()
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], smin[i])
			max[i] = math.Max(max[i], smax[i])
		}
	}
	return min, max
}
