package collision

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"kartrush/internal/scene"
)

// HitKind tags a probe result.
type HitKind int

const (
	HitTrackSurface HitKind = iota
	HitWall
	HitTrackEdge
)

var hitKindNames = [...]string{
	HitTrackSurface: "track_surface",
	HitWall:         "wall",
	HitTrackEdge:    "track_edge",
}

func (k HitKind) String() string {
	if k < 0 || int(k) >= len(hitKindNames) {
		return fmt.Sprintf("HitKind(%d)", int(k))
	}
	return hitKindNames[k]
}

// MarshalText writes the snake_case name used on the wire.
func (k HitKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(hitKindNames) {
		return nil, fmt.Errorf("unknown hit kind %d", int(k))
	}
	return []byte(hitKindNames[k]), nil
}

func (k *HitKind) UnmarshalText(b []byte) error {
	for i, name := range hitKindNames {
		if name == string(b) {
			*k = HitKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown hit kind %q", string(b))
}

// Hit is the result of one collision probe. It lives for a single frame.
type Hit struct {
	Point    mgl64.Vec3 `json:"point"`
	Normal   mgl64.Vec3 `json:"normal"`
	Distance float64    `json:"distance"`
	Kind     HitKind    `json:"kind"`
	// Surface is the name of the object hit; empty for a track edge.
	Surface string `json:"surface,omitempty"`
}

// MultiHit is a Hit found by the multi-directional probe together with the
// heading that found it: 0 forward, 1 rotated +45°, 2 rotated -45°.
type MultiHit struct {
	Hit
	DirectionIndex int `json:"direction_index"`
}

// BoundarySurface is a scene object taking part in boundary checks.
type BoundarySurface struct {
	Object *scene.Object
	Kind   scene.SurfaceKind
	Name   string
}

// GetTrackBoundaries lists the intersectable ground and wall objects of sc
// in scene order. The list reflects the scene as it is now and must not be kept
// across frames.
func GetTrackBoundaries(sc *scene.Scene) []BoundarySurface {
	var out []BoundarySurface
	for _, obj := range sc.Children() {
		if !obj.Intersectable || !obj.Kind.IsBoundary() {
			continue
		}
		out = append(out, BoundarySurface{Object: obj, Kind: obj.Kind, Name: obj.Name})
	}
	return out
}

func hitKindFor(kind scene.SurfaceKind) HitKind {
	if kind == scene.SurfaceGround {
		return HitTrackSurface
	}
	return HitWall
}
