package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slab(name string, topY float64) *Object {
	return NewObject(name, Box{Min: mgl64.Vec3{-10, topY - 1, -10}, Max: mgl64.Vec3{10, topY, 10}})
}

func downQuery(origin mgl64.Vec3, far float64) Query {
	var q Query
	q.Set(origin, mgl64.Vec3{0, -1, 0}, far)
	q.FirstHitOnly = true
	return q
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want SurfaceKind
	}{
		{"ground", SurfaceGround},
		{"ground dirt", SurfaceGround},
		{"track wall north", SurfaceWall},
		{"barrier", SurfaceWall},
		{"tire block", SurfaceWall},
		{"ground wall", SurfaceGround},
		{"Ground", SurfaceNone},
		{"WALL", SurfaceNone},
		{"tree", SurfaceNone},
		{"", SurfaceNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestAddTagsKindAndKeepsOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(slab("ground main", 0)))
	require.NoError(t, s.Add(NewObject("wall east", Box{Min: mgl64.Vec3{10, 0, -10}, Max: mgl64.Vec3{11, 2, 10}})))
	require.NoError(t, s.Add(NewObject("tree", Box{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 3, 1}})))

	children := s.Children()
	require.Len(t, children, 3)
	assert.Equal(t, "ground main", children[0].Name)
	assert.Equal(t, SurfaceGround, children[0].Kind)
	assert.Equal(t, SurfaceWall, children[1].Kind)
	assert.Equal(t, SurfaceNone, children[2].Kind)
	assert.NotEmpty(t, children[0].ID)
}

func TestAddRejectsBadGeometry(t *testing.T) {
	s := New()
	assert.Error(t, s.Add(nil))
	assert.Error(t, s.Add(&Object{Name: "empty"}))
	assert.Error(t, s.Add(NewObject("inverted", Box{Min: mgl64.Vec3{1, 1, 1}, Max: mgl64.Vec3{0, 0, 0}})))
	assert.Error(t, s.Add(NewObject("flat", Triangle{A: mgl64.Vec3{0, 0, 0}, B: mgl64.Vec3{1, 0, 0}, C: mgl64.Vec3{2, 0, 0}})))

	obj := slab("ground", 0)
	obj.ID = "g1"
	require.NoError(t, s.Add(obj))
	dup := slab("ground copy", 0)
	dup.ID = "g1"
	assert.Error(t, s.Add(dup))
	assert.Equal(t, 1, s.Len())
}

func TestIntersectDownOntoBox(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(slab("ground", 2)))

	hits := s.Intersect(downQuery(mgl64.Vec3{0, 4, 0}, 3), nil)
	require.Len(t, hits, 1)
	assert.InDelta(t, 2.0, hits[0].Point.Y(), 1e-9)
	assert.InDelta(t, 2.0, hits[0].Distance, 1e-9)
	assert.True(t, hits[0].HasNormal)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, hits[0].Normal)
}

func TestIntersectRespectsFar(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(slab("ground", 0)))
	assert.Empty(t, s.Intersect(downQuery(mgl64.Vec3{0, 5, 0}, 3), nil))
}

func TestIntersectSortsNearestFirst(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(slab("ground low", 0)))
	require.NoError(t, s.Add(NewObject("ground high", Box{Min: mgl64.Vec3{-1, 0, -1}, Max: mgl64.Vec3{1, 1, 1}})))

	hits := s.Intersect(downQuery(mgl64.Vec3{0, 3, 0}, 10), nil)
	require.Len(t, hits, 2)
	assert.Equal(t, "ground high", hits[0].Object.Name)
	assert.Equal(t, "ground low", hits[1].Object.Name)
}

func TestIntersectFirstHitOnlyPerObject(t *testing.T) {
	s := New()
	stack := NewObject("ground stack",
		Triangle{A: mgl64.Vec3{-5, 1, -5}, B: mgl64.Vec3{5, 1, -5}, C: mgl64.Vec3{0, 1, 5}},
		Triangle{A: mgl64.Vec3{-5, 0, -5}, B: mgl64.Vec3{5, 0, -5}, C: mgl64.Vec3{0, 0, 5}},
	)
	require.NoError(t, s.Add(stack))

	q := downQuery(mgl64.Vec3{0, 3, 0}, 10)
	hits := s.Intersect(q, nil)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Point.Y(), 1e-9)

	q.FirstHitOnly = false
	assert.Len(t, s.Intersect(q, nil), 2)
}

func TestIntersectSkipsNonIntersectable(t *testing.T) {
	s := New()
	obj := slab("ground ghost", 0)
	obj.Intersectable = false
	require.NoError(t, s.Add(obj))
	assert.Empty(t, s.Intersect(downQuery(mgl64.Vec3{0, 1, 0}, 5), nil))
}

func TestIntersectWithoutFaceNormals(t *testing.T) {
	s := New()
	obj := slab("ground scan", 0)
	obj.NoFaceNormals = true
	require.NoError(t, s.Add(obj))

	hits := s.Intersect(downQuery(mgl64.Vec3{0, 1, 0}, 5), nil)
	require.Len(t, hits, 1)
	assert.False(t, hits[0].HasNormal)
	assert.Equal(t, mgl64.Vec3{}, hits[0].Normal)
}

func TestTriangleNormalFacesRay(t *testing.T) {
	s := New()
	// Wound so the geometric normal points away from a ray coming from -X.
	wall := NewObject("wall", Triangle{A: mgl64.Vec3{2, -1, -1}, B: mgl64.Vec3{2, 2, 0}, C: mgl64.Vec3{2, -1, 1}})
	require.NoError(t, s.Add(wall))

	var q Query
	q.Set(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{3, 0, 0}, 5)
	hits := s.Intersect(q, nil)
	require.Len(t, hits, 1)
	assert.InDelta(t, 2.0, hits[0].Distance, 1e-9)
	assert.InDelta(t, -1.0, hits[0].Normal.X(), 1e-9)
}

func TestRemove(t *testing.T) {
	s := New()
	barrier := NewObject("barrier", Box{Min: mgl64.Vec3{2, 0, -1}, Max: mgl64.Vec3{3, 1, 1}})
	require.NoError(t, s.Add(barrier))
	require.NoError(t, s.Add(slab("ground", 0)))

	var q Query
	q.Set(mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{1, 0, 0}, 5)
	q.FirstHitOnly = true
	require.Len(t, s.Intersect(q, nil), 1)

	assert.True(t, s.Remove(barrier.ID))
	assert.False(t, s.Remove(barrier.ID))
	assert.Empty(t, s.Intersect(q, nil))
	_, ok := s.Object(barrier.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestZeroDirectionReportsNothing(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(slab("ground", 0)))
	var q Query
	q.Set(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, 5)
	assert.Empty(t, s.Intersect(q, nil))
}
