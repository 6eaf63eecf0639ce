package lump

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/doom_map_browser/utils"
)

type ThingFlags uint16

const (
	THING_EASY ThingFlags = 1 << iota
	THING_NORMAL
	THING_HARD
	THING_MULTIPLAYER_ONLY
)

type Thing struct {
	Position  mgl32.Vec2
	Angle     float32 // degrees
	DoomEdNum uint16
	Flags     ThingFlags
}

type LinedefFlags uint16

const (
	LINEDEF_BLOCKING LinedefFlags = 1 << iota
	LINEDEF_BLOCK_MONSTERS
	LINEDEF_TWO_SIDED
	LINEDEF_DONT_PEG_TOP
	LINEDEF_DONT_PEG_BOTTOM
	LINEDEF_SECRET
	LINEDEF_BLOCK_SOUND
	LINEDEF_NO_AUTOMAP
)

type Linedef struct {
	Vertices    [2]int
	Flags       LinedefFlags
	SpecialType uint16
	SectorTag   uint16
	Sidedefs    [2]int // NONE when side is absent
}

// Sidedef texture names are empty when texture is absent
type Sidedef struct {
	TextureOffset mgl32.Vec2
	TopTexture    string
	BottomTexture string
	MiddleTexture string
	Sector        int
}

// Sector flat names are empty when flat is absent
type Sector struct {
	FloorHeight   float32
	CeilingHeight float32
	FloorFlat     string
	CeilingFlat   string
	LightLevel    float32 // 0..1
	SpecialType   uint16
	SectorTag     uint16
}

func DecodeThings(data []byte) ([]Thing, error) {
	return decodeRecords("things", data, THING_SIZE, func(bs *utils.BufStack) Thing {
		return Thing{
			Position:  mgl32.Vec2{float32(bs.ReadL16()), float32(bs.ReadL16())},
			Angle:     float32(bs.ReadLU16()),
			DoomEdNum: bs.ReadLU16(),
			Flags:     ThingFlags(bs.ReadLU16()),
		}
	})
}

func DecodeLinedefs(data []byte) ([]Linedef, error) {
	return decodeRecords("linedefs", data, LINEDEF_SIZE, func(bs *utils.BufStack) Linedef {
		var l Linedef
		l.Vertices[0] = int(bs.ReadLU16())
		l.Vertices[1] = int(bs.ReadLU16())
		l.Flags = LinedefFlags(bs.ReadLU16())
		l.SpecialType = bs.ReadLU16()
		l.SectorTag = bs.ReadLU16()
		l.Sidedefs[0] = readIndex(bs)
		l.Sidedefs[1] = readIndex(bs)
		return l
	})
}

func DecodeSidedefs(data []byte) ([]Sidedef, error) {
	return decodeRecords("sidedefs", data, SIDEDEF_SIZE, func(bs *utils.BufStack) Sidedef {
		var s Sidedef
		s.TextureOffset = mgl32.Vec2{float32(bs.ReadL16()), float32(bs.ReadL16())}
		s.TopTexture, _ = bs.ReadName()
		s.BottomTexture, _ = bs.ReadName()
		s.MiddleTexture, _ = bs.ReadName()
		s.Sector = int(bs.ReadLU16())
		return s
	})
}

func DecodeVertexes(data []byte) ([]mgl32.Vec2, error) {
	return decodeRecords("vertexes", data, VERTEX_SIZE, func(bs *utils.BufStack) mgl32.Vec2 {
		return mgl32.Vec2{float32(bs.ReadL16()), float32(bs.ReadL16())}
	})
}

func DecodeSectors(data []byte) ([]Sector, error) {
	return decodeRecords("sectors", data, SECTOR_SIZE, func(bs *utils.BufStack) Sector {
		var s Sector
		s.FloorHeight = float32(bs.ReadL16())
		s.CeilingHeight = float32(bs.ReadL16())
		s.FloorFlat, _ = bs.ReadName()
		s.CeilingFlat, _ = bs.ReadName()
		s.LightLevel = float32(bs.ReadLU16()) / 255.0
		s.SpecialType = bs.ReadLU16()
		s.SectorTag = bs.ReadLU16()
		return s
	})
}
