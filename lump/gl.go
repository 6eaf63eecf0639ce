package lump

import (
	"bytes"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/doom_map_browser/geometry"
	"github.com/mogaika/doom_map_browser/utils"
)

// GL_VERT_MAGIC prefixes glbsp v2 vertex lump
var GL_VERT_MAGIC = []byte("gNd2")

var ErrBadSignature = errors.New("Bad GL vertex lump signature")

// VertexRef points either into map vertexes or into GL vertexes
type VertexRef struct {
	GL    bool
	Index int
}

func decodeVertexRef(v uint16) VertexRef {
	if v&GL_FLAG != 0 {
		return VertexRef{GL: true, Index: int(v & GL_MASK)}
	}
	return VertexRef{Index: int(v)}
}

type GLSeg struct {
	Vertices    [2]VertexRef
	Linedef     int // NONE for minisegs
	LinedefSide geometry.Side
	Partner     int // NONE when seg has no partner
}

type GLSubsector struct {
	SegCount int
	FirstSeg int
}

// NodeChild is either subsector (Leaf) or another node
type NodeChild struct {
	Leaf  bool
	Index int
}

func decodeNodeChild(v uint16) NodeChild {
	if v&GL_FLAG != 0 {
		return NodeChild{Leaf: true, Index: int(v & GL_MASK)}
	}
	return NodeChild{Index: int(v)}
}

type GLNode struct {
	PartitionPoint mgl32.Vec2
	PartitionDir   mgl32.Vec2
	ChildBoxes     [2]geometry.AABB2
	Children       [2]NodeChild // right, left
}

// DecodeGLVertexes decodes 16.16 fixed point vertexes after magic
func DecodeGLVertexes(data []byte) ([]mgl32.Vec2, error) {
	if len(data) < len(GL_VERT_MAGIC) || !bytes.Equal(data[:len(GL_VERT_MAGIC)], GL_VERT_MAGIC) {
		return nil, ErrBadSignature
	}
	return decodeRecords("gl vertexes", data[len(GL_VERT_MAGIC):], GL_VERT_SIZE, func(bs *utils.BufStack) mgl32.Vec2 {
		return mgl32.Vec2{
			float32(bs.ReadL32()) / 65536.0,
			float32(bs.ReadL32()) / 65536.0,
		}
	})
}

func DecodeGLSegs(data []byte) ([]GLSeg, error) {
	return decodeRecords("gl segs", data, GL_SEG_SIZE, func(bs *utils.BufStack) GLSeg {
		var s GLSeg
		s.Vertices[0] = decodeVertexRef(bs.ReadLU16())
		s.Vertices[1] = decodeVertexRef(bs.ReadLU16())
		s.Linedef = readIndex(bs)
		if bs.ReadLU16() != 0 {
			s.LinedefSide = geometry.SIDE_LEFT
		}
		s.Partner = readIndex(bs)
		return s
	})
}

func DecodeGLSubsectors(data []byte) ([]GLSubsector, error) {
	return decodeRecords("gl subsectors", data, GL_SSECT_SIZE, func(bs *utils.BufStack) GLSubsector {
		return GLSubsector{
			SegCount: int(bs.ReadLU16()),
			FirstSeg: int(bs.ReadLU16()),
		}
	})
}

func readBox(bs *utils.BufStack) geometry.AABB2 {
	top := float32(bs.ReadL16())
	bottom := float32(bs.ReadL16())
	left := float32(bs.ReadL16())
	right := float32(bs.ReadL16())
	return geometry.AABB2FromExtents(top, bottom, left, right)
}

func DecodeGLNodes(data []byte) ([]GLNode, error) {
	return decodeRecords("gl nodes", data, GL_NODE_SIZE, func(bs *utils.BufStack) GLNode {
		var n GLNode
		n.PartitionPoint = mgl32.Vec2{float32(bs.ReadL16()), float32(bs.ReadL16())}
		n.PartitionDir = mgl32.Vec2{float32(bs.ReadL16()), float32(bs.ReadL16())}
		n.ChildBoxes[0] = readBox(bs)
		n.ChildBoxes[1] = readBox(bs)
		n.Children[0] = decodeNodeChild(bs.ReadLU16())
		n.Children[1] = decodeNodeChild(bs.ReadLU16())
		return n
	})
}
