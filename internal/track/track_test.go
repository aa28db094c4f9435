package track

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kartrush/internal/collision"
	"kartrush/internal/scene"
	"kartrush/internal/shared/types"
)

const sampleTrack = `{
  "name": "sample",
  "spawns": [{"position": {"x": 0, "y": 0.3, "z": 0}, "heading": 90}],
  "objects": [
    {"id": "g", "name": "ground", "box": {"min": {"x": -10, "y": -1, "z": -10}, "max": {"x": 10, "y": 0, "z": 10}}},
    {"name": "wall scan", "no_face_normals": true, "destructible": true, "triangles": [
      [{"x": 5, "y": -1, "z": -5}, {"x": 5, "y": 3, "z": 0}, {"x": 5, "y": -1, "z": 5}]
    ]},
    {"name": "ground ghost", "hidden": true, "box": {"min": {"x": -1, "y": 0, "z": -1}, "max": {"x": 1, "y": 1, "z": 1}}}
  ]
}`

func TestLoad(t *testing.T) {
	tr, err := Load(strings.NewReader(sampleTrack))
	require.NoError(t, err)

	assert.Equal(t, "sample", tr.Name)
	require.Len(t, tr.Spawns, 1)
	assert.Equal(t, 90.0, tr.Spawns[0].Heading)
	assert.Equal(t, mgl64.Vec3{0, 0.3, 0}, tr.Spawns[0].Position)

	children := tr.Scene.Children()
	require.Len(t, children, 3)
	assert.Equal(t, "g", children[0].ID)
	assert.Equal(t, scene.SurfaceGround, children[0].Kind)
	assert.Equal(t, scene.SurfaceWall, children[1].Kind)
	assert.True(t, children[1].NoFaceNormals)
	assert.True(t, children[1].Destructible)
	assert.False(t, children[0].Destructible)
	assert.False(t, children[2].Intersectable)
	assert.Len(t, collision.GetTrackBoundaries(tr.Scene), 2, "hidden ground is not a boundary")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{"name": `, "decode track"},
		{"unknown field", `{"name": "x", "laps": 3}`, "decode track"},
		{"no spawns", `{"name": "x", "objects": []}`, "no spawns"},
		{"empty object", `{"name": "x", "spawns": [{}], "objects": [{"name": "ground"}]}`, "object 0"},
		{"inverted box", `{"name": "x", "spawns": [{}], "objects": [
			{"name": "ground", "box": {"min": {"x": 1, "y": 0, "z": 0}, "max": {"x": 0, "y": 1, "z": 1}}}]}`, "object 0"},
		{"duplicate id", `{"name": "x", "spawns": [{}], "objects": [
			{"id": "a", "name": "ground", "box": {"max": {"x": 1, "y": 1, "z": 1}}},
			{"id": "a", "name": "wall", "box": {"max": {"x": 1, "y": 1, "z": 1}}}]}`, "object 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleTrack), 0o644))

	tr, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Scene.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSpawnWraps(t *testing.T) {
	tr := Default()
	n := len(tr.Spawns)
	assert.Equal(t, tr.Spawns[1], tr.Spawn(n+1))
}

func TestDefaultTrack(t *testing.T) {
	tr := Default()
	p := collision.NewProber(collision.DefaultConfig())

	bounds := collision.GetTrackBoundaries(tr.Scene)
	assert.Len(t, bounds, tr.Scene.Len()-1, "every object but the tree is a boundary")

	for i, s := range tr.Spawns {
		assert.True(t, p.IsPositionOnTrack(tr.Scene, s.Position), "spawn %d", i)
	}

	var w types.WheelState
	p.ResolveWheelGround(tr.Scene, mgl64.Vec3{-20, 1, -10}, &w)
	assert.True(t, w.OnDirt, "west dirt patch")
	assert.InDelta(t, 0.35, w.Y, 1e-9)

	hit, ok := p.CheckBoundaryCollision(tr.Scene, mgl64.Vec3{29, 0.3, 0}, mgl64.Vec3{5, 0, 0})
	require.True(t, ok)
	assert.Equal(t, collision.HitTrackEdge, hit.Kind, "east gap drops off")

	hit, ok = p.CheckBoundaryCollision(tr.Scene, mgl64.Vec3{29, 0.3, 10}, mgl64.Vec3{5, 0, 0})
	require.True(t, ok)
	assert.Equal(t, collision.HitWall, hit.Kind)
	assert.Equal(t, "wall east", hit.Surface)
}
