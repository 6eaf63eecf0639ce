// Package lumptest encodes level records back to lump bytes for tests
package lumptest

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/doom_map_browser/geometry"
	"github.com/mogaika/doom_map_browser/lump"
	"github.com/mogaika/doom_map_browser/utils"
	"github.com/mogaika/doom_map_browser/vfs"
)

type writer struct {
	bytes.Buffer
}

func (w *writer) u16(v uint16) { binary.Write(&w.Buffer, binary.LittleEndian, v) }
func (w *writer) i16(v int16)  { binary.Write(&w.Buffer, binary.LittleEndian, v) }
func (w *writer) u32(v uint32) { binary.Write(&w.Buffer, binary.LittleEndian, v) }
func (w *writer) i32(v int32)  { binary.Write(&w.Buffer, binary.LittleEndian, v) }

func (w *writer) index(v int) {
	if v == lump.NONE {
		w.u16(lump.NO_INDEX)
	} else {
		w.u16(uint16(v))
	}
}

// name writes "-" placeholder for empty name
func (w *writer) name(s string) {
	if s == "" {
		s = "-"
	}
	n := utils.StringToName(s)
	w.Write(n[:])
}

func (w *writer) vec(v mgl32.Vec2) {
	w.i16(int16(v[0]))
	w.i16(int16(v[1]))
}

func encode[T any](items []T, fn func(w *writer, item T)) []byte {
	var w writer
	for _, item := range items {
		fn(&w, item)
	}
	return w.Bytes()
}

func Things(things []lump.Thing) []byte {
	return encode(things, func(w *writer, t lump.Thing) {
		w.vec(t.Position)
		w.u16(uint16(t.Angle))
		w.u16(t.DoomEdNum)
		w.u16(uint16(t.Flags))
	})
}

func Linedefs(linedefs []lump.Linedef) []byte {
	return encode(linedefs, func(w *writer, l lump.Linedef) {
		w.u16(uint16(l.Vertices[0]))
		w.u16(uint16(l.Vertices[1]))
		w.u16(uint16(l.Flags))
		w.u16(l.SpecialType)
		w.u16(l.SectorTag)
		w.index(l.Sidedefs[0])
		w.index(l.Sidedefs[1])
	})
}

func Sidedefs(sidedefs []lump.Sidedef) []byte {
	return encode(sidedefs, func(w *writer, s lump.Sidedef) {
		w.vec(s.TextureOffset)
		w.name(s.TopTexture)
		w.name(s.BottomTexture)
		w.name(s.MiddleTexture)
		w.u16(uint16(s.Sector))
	})
}

func Vertexes(vertexes []mgl32.Vec2) []byte {
	return encode(vertexes, (*writer).vec)
}

func Sectors(sectors []lump.Sector) []byte {
	return encode(sectors, func(w *writer, s lump.Sector) {
		w.i16(int16(s.FloorHeight))
		w.i16(int16(s.CeilingHeight))
		w.name(s.FloorFlat)
		w.name(s.CeilingFlat)
		w.u16(uint16(s.LightLevel*255 + 0.5))
		w.u16(s.SpecialType)
		w.u16(s.SectorTag)
	})
}

func GLVertexes(vertexes []mgl32.Vec2) []byte {
	return append(append([]byte(nil), lump.GL_VERT_MAGIC...), encode(vertexes, func(w *writer, v mgl32.Vec2) {
		w.i32(int32(v[0] * 65536))
		w.i32(int32(v[1] * 65536))
	})...)
}

func vertexRef(v lump.VertexRef) uint16 {
	if v.GL {
		return uint16(v.Index) | lump.GL_FLAG
	}
	return uint16(v.Index)
}

func GLSegs(segs []lump.GLSeg) []byte {
	return encode(segs, func(w *writer, s lump.GLSeg) {
		w.u16(vertexRef(s.Vertices[0]))
		w.u16(vertexRef(s.Vertices[1]))
		w.index(s.Linedef)
		if s.LinedefSide == geometry.SIDE_LEFT {
			w.u16(1)
		} else {
			w.u16(0)
		}
		w.index(s.Partner)
	})
}

func GLSubsectors(subsectors []lump.GLSubsector) []byte {
	return encode(subsectors, func(w *writer, s lump.GLSubsector) {
		w.u16(uint16(s.SegCount))
		w.u16(uint16(s.FirstSeg))
	})
}

func nodeChild(c lump.NodeChild) uint16 {
	if c.Leaf {
		return uint16(c.Index) | lump.GL_FLAG
	}
	return uint16(c.Index)
}

func GLNodes(nodes []lump.GLNode) []byte {
	return encode(nodes, func(w *writer, n lump.GLNode) {
		w.vec(n.PartitionPoint)
		w.vec(n.PartitionDir)
		for _, b := range n.ChildBoxes {
			w.i16(int16(b.Max[1]))
			w.i16(int16(b.Min[1]))
			w.i16(int16(b.Min[0]))
			w.i16(int16(b.Max[0]))
		}
		w.u16(nodeChild(n.Children[0]))
		w.u16(nodeChild(n.Children[1]))
	})
}

func PatchNames(names []string) []byte {
	var w writer
	w.u32(uint32(len(names)))
	for _, n := range names {
		w.name(n)
	}
	return w.Bytes()
}

func TextureDirectory(entries []lump.TextureEntry) []byte {
	var body writer
	offsets := make([]uint32, len(entries))
	base := 4 + 4*len(entries)
	for i, e := range entries {
		offsets[i] = uint32(base + body.Len())
		body.name(e.Name)
		body.u32(0)
		body.u16(uint16(e.Width))
		body.u16(uint16(e.Height))
		body.u32(0)
		body.u16(uint16(len(e.Patches)))
		for _, p := range e.Patches {
			body.i16(int16(p.Offset[0]))
			body.i16(int16(p.Offset[1]))
			body.u16(uint16(p.PatchIndex))
			body.u32(0)
		}
	}

	var w writer
	w.u32(uint32(len(entries)))
	for _, o := range offsets {
		w.u32(o)
	}
	w.Write(body.Bytes())
	return w.Bytes()
}

func Flat(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, lump.FLAT_SIZE)
}

// Level holds records of one level, see AddTo
type Level struct {
	Things       []lump.Thing
	Linedefs     []lump.Linedef
	Sidedefs     []lump.Sidedef
	Vertexes     []mgl32.Vec2
	Sectors      []lump.Sector
	GLVertexes   []mgl32.Vec2
	GLSegs       []lump.GLSeg
	GLSubsectors []lump.GLSubsector
	GLNodes      []lump.GLNode
}

// AddTo appends level and GL level lumps in wad order
func (l *Level) AddTo(src *vfs.MemorySource, name string) *vfs.MemorySource {
	src.Add(name, nil).
		Add(name+"_THINGS", Things(l.Things)).
		Add(name+"_LINEDEFS", Linedefs(l.Linedefs)).
		Add(name+"_SIDEDEFS", Sidedefs(l.Sidedefs)).
		Add(name+"_VERTEXES", Vertexes(l.Vertexes)).
		Add(name+"_SEGS", nil).
		Add(name+"_SSECTORS", nil).
		Add(name+"_NODES", nil).
		Add(name+"_SECTORS", Sectors(l.Sectors))

	gl := lump.GLMarker(name)
	return src.Add(gl, nil).
		Add(gl+"_VERT", GLVertexes(l.GLVertexes)).
		Add(gl+"_SEGS", GLSegs(l.GLSegs)).
		Add(gl+"_SSECT", GLSubsectors(l.GLSubsectors)).
		Add(gl+"_NODES", GLNodes(l.GLNodes))
}

// Square is one 64x64 sector with four one-sided walls and single subsector.
// Walls go clockwise, so right sides face inside.
func Square(floor, ceiling string) *Level {
	l := &Level{
		Vertexes: []mgl32.Vec2{{0, 0}, {0, 64}, {64, 64}, {64, 0}},
		Sectors: []lump.Sector{{
			FloorHeight: 0, CeilingHeight: 128,
			FloorFlat: floor, CeilingFlat: ceiling,
			LightLevel: 1,
		}},
		GLVertexes:   []mgl32.Vec2{},
		GLSubsectors: []lump.GLSubsector{{SegCount: 4, FirstSeg: 0}},
	}
	for i := 0; i < 4; i++ {
		l.Linedefs = append(l.Linedefs, lump.Linedef{
			Vertices: [2]int{i, (i + 1) % 4},
			Flags:    lump.LINEDEF_BLOCKING,
			Sidedefs: [2]int{i, lump.NONE},
		})
		l.Sidedefs = append(l.Sidedefs, lump.Sidedef{MiddleTexture: "WALL", Sector: 0})
		l.GLSegs = append(l.GLSegs, lump.GLSeg{
			Vertices: [2]lump.VertexRef{{Index: i}, {Index: (i + 1) % 4}},
			Linedef:  i,
			Partner:  lump.NONE,
		})
	}
	return l
}
