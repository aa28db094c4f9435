package track

import (
	"encoding/json"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"kartrush/internal/scene"
	"kartrush/internal/shared/types"
)

// Spawn is a starting grid slot.
type Spawn struct {
	Position mgl64.Vec3
	Heading  float64 // degrees about +Y
}

// Track is a loaded course: its collision scene and starting grid.
type Track struct {
	Name   string
	Spawns []Spawn
	Scene  *scene.Scene
}

// Description is the JSON form of a track file.
type Description struct {
	Name    string              `json:"name"`
	Spawns  []SpawnDescription  `json:"spawns"`
	Objects []ObjectDescription `json:"objects"`
}

type SpawnDescription struct {
	Position types.Vec3 `json:"position"`
	Heading  float64    `json:"heading"`
}

type BoxDescription struct {
	Min types.Vec3 `json:"min"`
	Max types.Vec3 `json:"max"`
}

// ObjectDescription holds either a box or a triangle list.
type ObjectDescription struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	Box           *BoxDescription `json:"box,omitempty"`
	Triangles     [][3]types.Vec3 `json:"triangles,omitempty"`
	NoFaceNormals bool            `json:"no_face_normals,omitempty"`
	Hidden        bool            `json:"hidden,omitempty"`
	Destructible  bool            `json:"destructible,omitempty"`
}

// LoadFile reads a JSON track description from path.
func LoadFile(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open track")
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "track file %s", path)
	}
	return t, nil
}

// Load decodes a JSON track description and builds it.
func Load(r io.Reader) (*Track, error) {
	var desc Description
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&desc); err != nil {
		return nil, errors.Wrap(err, "decode track")
	}
	return Build(desc)
}

// Build turns a description into a Track with a populated scene.
func Build(desc Description) (*Track, error) {
	if len(desc.Spawns) == 0 {
		return nil, errors.Errorf("track %q has no spawns", desc.Name)
	}

	sc := scene.New()
	for i, od := range desc.Objects {
		obj, err := od.object()
		if err != nil {
			return nil, errors.Wrapf(err, "track %q: object %d", desc.Name, i)
		}
		if err := sc.Add(obj); err != nil {
			return nil, errors.Wrapf(err, "track %q: object %d", desc.Name, i)
		}
	}

	spawns := make([]Spawn, len(desc.Spawns))
	for i, s := range desc.Spawns {
		spawns[i] = Spawn{Position: s.Position.Mgl(), Heading: s.Heading}
	}
	return &Track{Name: desc.Name, Spawns: spawns, Scene: sc}, nil
}

func (od ObjectDescription) object() (*scene.Object, error) {
	var shapes []scene.Shape
	if od.Box != nil {
		shapes = append(shapes, scene.Box{Min: od.Box.Min.Mgl(), Max: od.Box.Max.Mgl()})
	}
	for _, tri := range od.Triangles {
		shapes = append(shapes, scene.Triangle{A: tri[0].Mgl(), B: tri[1].Mgl(), C: tri[2].Mgl()})
	}
	if len(shapes) == 0 {
		return nil, errors.Errorf("%q has neither box nor triangles", od.Name)
	}

	obj := scene.NewObject(od.Name, shapes...)
	obj.ID = od.ID
	obj.NoFaceNormals = od.NoFaceNormals
	obj.Intersectable = !od.Hidden
	obj.Destructible = od.Destructible
	return obj, nil
}

// Spawn returns grid slot i, wrapping around when more karts than slots
// join.
func (t *Track) Spawn(i int) Spawn {
	return t.Spawns[i%len(t.Spawns)]
}
