package scene

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	treeMinChildren = 8
	treeMaxChildren = 16

	// rtreego rejects zero-length rect sides, so flat objects and axis
	// aligned rays get a small thickness.
	boundsPad = 1e-4
)

type entry struct {
	obj  *Object
	rect rtreego.Rect
	seq  uint64
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Scene is the static collision world. Objects keep their insertion order
// and a 3-D R-tree over object bounds narrows every ray query.
type Scene struct {
	objects []*entry
	byID    map[string]*entry
	tree    *rtreego.Rtree
	nextSeq uint64
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		byID: make(map[string]*entry),
		tree: rtreego.NewTree(3, treeMinChildren, treeMaxChildren),
	}
}

// Add validates obj, tags its surface kind and indexes it. An empty ID is
// replaced with a random one.
func (s *Scene) Add(obj *Object) error {
	if obj == nil {
		return errors.New("nil object")
	}
	if len(obj.Shapes) == 0 {
		return errors.Errorf("object %q has no shapes", obj.Name)
	}
	for i, sh := range obj.Shapes {
		if sh == nil {
			return errors.Errorf("object %q: shape %d is nil", obj.Name, i)
		}
		if err := sh.validate(); err != nil {
			return errors.Wrapf(err, "object %q: shape %d", obj.Name, i)
		}
	}
	if obj.ID == "" {
		obj.ID = uuid.NewString()
	}
	if _, ok := s.byID[obj.ID]; ok {
		return errors.Errorf("duplicate object id %q", obj.ID)
	}

	min, max := obj.Bounds()
	rect, err := paddedRect(min, max)
	if err != nil {
		return errors.Wrapf(err, "object %q bounds", obj.Name)
	}

	obj.Kind = Classify(obj.Name)
	obj.Material = ClassifyMaterial(obj.Name)
	e := &entry{obj: obj, rect: rect, seq: s.nextSeq}
	s.nextSeq++
	s.objects = append(s.objects, e)
	s.byID[obj.ID] = e
	s.tree.Insert(e)
	return nil
}

// Remove drops the object with the given id. It reports whether the
// object was present.
func (s *Scene) Remove(id string) bool {
	e, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	s.tree.Delete(e)
	for i, cur := range s.objects {
		if cur == e {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			break
		}
	}
	return true
}

// Object looks an object up by id.
func (s *Scene) Object(id string) (*Object, bool) {
	e, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return e.obj, true
}

// Children returns the objects in insertion order.
func (s *Scene) Children() []*Object {
	if s == nil {
		return nil
	}
	out := make([]*Object, len(s.objects))
	for i, e := range s.objects {
		out[i] = e.obj
	}
	return out
}

// Len is the number of objects in the scene.
func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.objects)
}

// Intersect casts q against every intersectable object and appends the
// hits to buf, nearest first. Equal distances keep scene order.
func (s *Scene) Intersect(q Query, buf []Hit) []Hit {
	buf = buf[:0]
	if s == nil || q.Far <= 0 || q.Direction.Len() == 0 {
		return buf
	}

	end := q.End()
	min := mgl64.Vec3{math.Min(q.Origin[0], end[0]), math.Min(q.Origin[1], end[1]), math.Min(q.Origin[2], end[2])}
	max := mgl64.Vec3{math.Max(q.Origin[0], end[0]), math.Max(q.Origin[1], end[1]), math.Max(q.Origin[2], end[2])}
	rayRect, err := paddedRect(min, max)
	if err != nil {
		return buf
	}

	for _, sp := range s.tree.SearchIntersect(rayRect) {
		e := sp.(*entry)
		if !e.obj.Intersectable {
			continue
		}
		buf = appendObjectHits(buf, e, q)
	}

	sort.SliceStable(buf, func(i, j int) bool {
		if buf[i].Distance != buf[j].Distance {
			return buf[i].Distance < buf[j].Distance
		}
		return buf[i].seq < buf[j].seq
	})
	return buf
}

func appendObjectHits(buf []Hit, e *entry, q Query) []Hit {
	nearest := -1
	for _, sh := range e.obj.Shapes {
		dist, normal, ok := sh.Raycast(q.Origin, q.Direction, q.Far)
		if !ok {
			continue
		}
		h := Hit{
			Point:     q.Origin.Add(q.Direction.Mul(dist)),
			Normal:    normal,
			HasNormal: !e.obj.NoFaceNormals,
			Distance:  dist,
			Object:    e.obj,
			seq:       e.seq,
		}
		if !h.HasNormal {
			h.Normal = mgl64.Vec3{}
		}
		if !q.FirstHitOnly {
			buf = append(buf, h)
			continue
		}
		if nearest < 0 {
			buf = append(buf, h)
			nearest = len(buf) - 1
		} else if dist < buf[nearest].Distance {
			buf[nearest] = h
		}
	}
	return buf
}

func paddedRect(min, max mgl64.Vec3) (rtreego.Rect, error) {
	p := rtreego.Point{min[0] - boundsPad, min[1] - boundsPad, min[2] - boundsPad}
	lengths := []float64{
		max[0] - min[0] + 2*boundsPad,
		max[1] - min[1] + 2*boundsPad,
		max[2] - min[2] + 2*boundsPad,
	}
	return rtreego.NewRect(p, lengths)
}
