package level

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/doom_map_browser/utils/gltfutils"
)

// map units are y-forward and z-up, gltf is y-up
func toGLTF(p mgl32.Vec2, height float32) [3]float32 {
	return [3]float32{p[0], height, -p[1]}
}

// BuildGLTF creates document with floors, ceilings and walls meshes.
// Sky ceilings are left open.
func (m *Map) BuildGLTF() *gltf.Document {
	doc := gltfutils.NewDocument()

	floors := &gltfutils.MeshBuilder{Name: m.Name + "_floors"}
	ceilings := &gltfutils.MeshBuilder{Name: m.Name + "_ceilings"}
	walls := &gltfutils.MeshBuilder{Name: m.Name + "_walls"}

	for i := range m.Subsectors {
		ss := &m.Subsectors[i]
		sector := &m.Sectors[ss.Sector]

		floor := make([][3]float32, len(ss.Segs))
		ceiling := make([][3]float32, len(ss.Segs))
		for j, seg := range ss.Segs {
			floor[j] = toGLTF(seg.Line.Point, sector.Interval.Min)
			ceiling[len(ss.Segs)-1-j] = toGLTF(seg.Line.Point, sector.Interval.Max)
		}
		floors.AddFan(floor)
		if !sector.Ceiling.IsSky() {
			ceilings.AddFan(ceiling)
		}
	}

	wall := func(l *Linedef, bottom, top float32) {
		if top <= bottom {
			return
		}
		a, b := l.Line.Point, l.Line.End()
		walls.AddQuad(toGLTF(a, bottom), toGLTF(b, bottom), toGLTF(b, top), toGLTF(a, top))
	}
	for i := range m.Linedefs {
		l := &m.Linedefs[i]
		front, back := l.Sidedefs[0], l.Sidedefs[1]
		switch {
		case front != nil && back != nil:
			fs, bs := &m.Sectors[front.Sector], &m.Sectors[back.Sector]
			wall(l, min(fs.Interval.Min, bs.Interval.Min), max(fs.Interval.Min, bs.Interval.Min))
			if !(front.Top.IsSky() && back.Top.IsSky()) {
				wall(l, min(fs.Interval.Max, bs.Interval.Max), max(fs.Interval.Max, bs.Interval.Max))
			}
		case front != nil:
			s := &m.Sectors[front.Sector]
			wall(l, s.Interval.Min, s.Interval.Max)
		case back != nil:
			s := &m.Sectors[back.Sector]
			wall(l, s.Interval.Min, s.Interval.Max)
		}
	}

	floors.Flush(doc)
	ceilings.Flush(doc)
	walls.Flush(doc)
	return doc
}

// ExportGLTF writes map geometry as binary gltf
func (m *Map) ExportGLTF(w io.Writer) error {
	return gltfutils.ExportBinary(w, m.BuildGLTF())
}
