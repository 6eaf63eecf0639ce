// Package level builds queryable map out of decoded level lumps
package level

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/geometry"
	"github.com/mogaika/doom_map_browser/lump"
	"github.com/mogaika/doom_map_browser/texture"
)

// SKY_FLAT is flat name that always means sky
const SKY_FLAT = "F_SKY1"

type TextureKind int

const (
	TEXTURE_NONE TextureKind = iota
	TEXTURE_SKY
	TEXTURE_NORMAL
)

var textureKindNames = [...]string{"none", "sky", "normal"}

func (k TextureKind) String() string {
	return textureKindNames[k]
}

// TextureRef is absent, sky or normal texture with handle
type TextureRef[T any] struct {
	Kind   TextureKind
	Name   string
	Handle assets.Handle[T]
}

func (t TextureRef[T]) IsSky() bool { return t.Kind == TEXTURE_SKY }

func (t TextureRef[T]) MarshalJSON() ([]byte, error) {
	if t.Kind == TEXTURE_NONE {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Kind   string
		Name   string
		Handle assets.Handle[T]
	}{t.Kind.String(), t.Name, t.Handle})
}

type (
	FlatRef = TextureRef[*texture.Flat]
	WallRef = TextureRef[*texture.WallTexture]
)

type SolidMask uint8

const (
	SOLID_PLAYER SolidMask = 1 << iota
	SOLID_MONSTER
	SOLID_NON_MONSTER

	SOLID_NONE SolidMask = 0
	SOLID_ALL            = SOLID_PLAYER | SOLID_MONSTER | SOLID_NON_MONSTER
)

func solidMaskFromFlags(flags lump.LinedefFlags) SolidMask {
	switch {
	case flags&lump.LINEDEF_BLOCKING != 0:
		return SOLID_ALL
	case flags&lump.LINEDEF_BLOCK_MONSTERS != 0:
		return SOLID_MONSTER
	default:
		return SOLID_NONE
	}
}

type Sidedef struct {
	TextureOffset mgl32.Vec2
	Top           WallRef
	Bottom        WallRef
	Middle        WallRef
	Sector        int
}

type Linedef struct {
	Line        geometry.Line2
	Normal      mgl32.Vec2
	BBox        geometry.AABB2
	Planes      []geometry.Plane // box planes, plus two opposite planes for diagonal walls
	Flags       lump.LinedefFlags
	SolidMask   SolidMask
	SpecialType uint16
	SectorTag   uint16
	Sidedefs    [2]*Sidedef // right, left
}

type Sector struct {
	Interval    geometry.Interval // floor, ceiling
	Floor       FlatRef
	Ceiling     FlatRef
	LightLevel  float32
	SpecialType uint16
	SectorTag   uint16
	Neighbours  []int
	Subsectors  []int
}

type Seg struct {
	Line        geometry.Line2
	Normal      mgl32.Vec2
	Linedef     int // lump.NONE for minisegs
	LinedefSide geometry.Side
}

type Subsector struct {
	Segs   []Seg
	Sector int
	BBox   geometry.AABB2
	Planes []geometry.Plane // convex hull, point inside is behind every plane
}

// Contains reports if point is inside subsector polygon
func (ss *Subsector) Contains(p mgl32.Vec2) bool {
	for _, plane := range ss.Planes {
		if !plane.Behind(p) {
			return false
		}
	}
	return true
}

type Node struct {
	PartitionLine geometry.Line2
	Normal        mgl32.Vec2
	ChildBoxes    [2]geometry.AABB2
	Children      [2]lump.NodeChild // right, left
}

// Map is built level. Node 0 is bsp root.
type Map struct {
	Name       string
	Linedefs   []Linedef
	Sectors    []Sector
	Subsectors []Subsector
	Nodes      []Node
	Sky        assets.Handle[*texture.WallTexture]
}
