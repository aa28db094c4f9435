package track

import "kartrush/internal/shared/types"

const (
	halfLength = 30.0
	halfWidth  = 20.0
	wallHeight = 1.5

	// The east wall has an opening between these z values with no ground
	// behind it.
	gapHalfWidth = 5.0
)

func box(id, name string, minX, minY, minZ, maxX, maxY, maxZ float64) ObjectDescription {
	return ObjectDescription{
		ID:   id,
		Name: name,
		Box: &BoxDescription{
			Min: types.Vec3{X: minX, Y: minY, Z: minZ},
			Max: types.Vec3{X: maxX, Y: maxY, Z: maxZ},
		},
	}
}

func destructible(od ObjectDescription) ObjectDescription {
	od.Destructible = true
	return od
}

// DefaultDescription is the built-in practice yard: a walled slab with
// two dirt patches, a ramp, barrier blocks, a tree and an open drop-off on
// the east side.
func DefaultDescription() Description {
	objects := []ObjectDescription{
		box("ground", "ground track", -halfLength, -1, -halfWidth, halfLength, 0, halfWidth),
		box("dirt-west", "ground dirt", -25, -0.5, -15, -15, 0.05, -5),
		box("dirt-east", "ground dirt", 15, -0.5, 5, 25, 0.05, 15),

		box("wall-north", "wall north", -halfLength-1, -1, halfWidth, halfLength+1, wallHeight, halfWidth+1),
		box("wall-south", "wall south", -halfLength-1, -1, -halfWidth-1, halfLength+1, wallHeight, -halfWidth),
		box("wall-west", "wall west", -halfLength-1, -1, -halfWidth, -halfLength, wallHeight, halfWidth),
		box("wall-east-n", "wall east", halfLength, -1, gapHalfWidth, halfLength+1, wallHeight, halfWidth),
		box("wall-east-s", "wall east", halfLength, -1, -halfWidth, halfLength+1, wallHeight, -gapHalfWidth),

		destructible(box("barrier-1", "barrier block", -1, 0, -1, 1, 1, 1)),
		destructible(box("barrier-2", "barrier block", 9, 0, 7, 11, 1, 9)),

		box("tree-1", "tree", -10.5, 0, 9.5, -9.5, 4, 10.5),
		{
			ID:   "ramp",
			Name: "ground ramp",
			Triangles: [][3]types.Vec3{
				{{X: -5, Y: 0.01, Z: -15}, {X: 5, Y: 1, Z: -15}, {X: 5, Y: 1, Z: -10}},
				{{X: -5, Y: 0.01, Z: -15}, {X: 5, Y: 1, Z: -10}, {X: -5, Y: 0.01, Z: -10}},
			},
			NoFaceNormals: true,
		},
	}

	spawns := []SpawnDescription{
		{Position: types.Vec3{X: -20, Y: 0.3, Z: 0}},
		{Position: types.Vec3{X: -20, Y: 0.3, Z: 3}},
		{Position: types.Vec3{X: -20, Y: 0.3, Z: -3}},
		{Position: types.Vec3{X: -23, Y: 0.3, Z: 1.5}},
		{Position: types.Vec3{X: -23, Y: 0.3, Z: -1.5}},
	}

	return Description{Name: "practice yard", Spawns: spawns, Objects: objects}
}

// Default builds the practice course.
func Default() *Track {
	t, err := Build(DefaultDescription())
	if err != nil {
		panic(err)
	}
	return t
}
