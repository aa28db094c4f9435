package scene

import "strings"

// SurfaceKind is the collision role of a scene object. It is derived from
// the object name once, when the object enters a scene.
type SurfaceKind int

const (
	SurfaceNone SurfaceKind = iota
	SurfaceGround
	SurfaceWall
)

var wallMarkers = []string{"wall", "barrier", "block"}

// Classify maps an object name to its surface kind. Matching is a
// case-sensitive substring test and "ground" takes priority over the wall
// markers.
func Classify(name string) SurfaceKind {
	if name == "" {
		return SurfaceNone
	}
	if strings.Contains(name, "ground") {
		return SurfaceGround
	}
	for _, m := range wallMarkers {
		if strings.Contains(name, m) {
			return SurfaceWall
		}
	}
	return SurfaceNone
}

// IsBoundary reports whether the kind takes part in boundary checks.
func (k SurfaceKind) IsBoundary() bool {
	return k == SurfaceGround || k == SurfaceWall
}

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceGround:
		return "ground"
	case SurfaceWall:
		return "wall"
	default:
		return "none"
	}
}

// Material refines a ground surface for grip purposes.
type Material int

const (
	MaterialDefault Material = iota
	MaterialDirt
)

// ClassifyMaterial tags dirt variants of ground, named "ground dirt".
func ClassifyMaterial(name string) Material {
	if strings.Contains(name, "ground dirt") {
		return MaterialDirt
	}
	return MaterialDefault
}
