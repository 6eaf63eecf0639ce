package lump_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/doom_map_browser/geometry"
	"github.com/mogaika/doom_map_browser/lump"
	"github.com/mogaika/doom_map_browser/lump/lumptest"
	"github.com/mogaika/doom_map_browser/vfs"
)

func TestDecodeLinedefAbsentSide(t *testing.T) {
	data := []byte{
		1, 0, 2, 0, // vertexes
		0x05, 0, // flags
		11, 0, 7, 0, // special, tag
		3, 0, 0xff, 0xff, // sides
	}
	lines, err := lump.DecodeLinedefs(data)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	l := lines[0]
	assert.Equal(t, [2]int{1, 2}, l.Vertices)
	assert.Equal(t, lump.LINEDEF_BLOCKING|lump.LINEDEF_TWO_SIDED, l.Flags)
	assert.Equal(t, uint16(11), l.SpecialType)
	assert.Equal(t, uint16(7), l.SectorTag)
	assert.Equal(t, [2]int{3, lump.NONE}, l.Sidedefs)
}

func TestDecodeTruncatedRecord(t *testing.T) {
	data := lumptest.Vertexes([]mgl32.Vec2{{1, 2}, {3, 4}})
	_, err := lump.DecodeVertexes(data[:len(data)-1])
	assert.Error(t, err)

	v, err := lump.DecodeVertexes(data)
	require.NoError(t, err)
	assert.Equal(t, []mgl32.Vec2{{1, 2}, {3, 4}}, v)
}

func TestDecodeSidedefNames(t *testing.T) {
	data := lumptest.Sidedefs([]lump.Sidedef{{TopTexture: "STARTAN3", Sector: 2}})
	sides, err := lump.DecodeSidedefs(data)
	require.NoError(t, err)
	require.Len(t, sides, 1)
	assert.Equal(t, "STARTAN3", sides[0].TopTexture)
	assert.Equal(t, "", sides[0].BottomTexture)
	assert.Equal(t, "", sides[0].MiddleTexture)
	assert.Equal(t, 2, sides[0].Sector)

	// invalid utf-8 in name
	copy(data[4:], []byte{0xff, 0xfe, 'A', 0, 0, 0, 0, 0})
	_, err = lump.DecodeSidedefs(data)
	assert.Error(t, err)
}

func TestDecodeSectorKeepsSpecialAndTag(t *testing.T) {
	data := lumptest.Sectors([]lump.Sector{{
		FloorHeight: -8, CeilingHeight: 72,
		FloorFlat: "FLOOR4_8", CeilingFlat: "F_SKY1",
		LightLevel: 1, SpecialType: 9, SectorTag: 3,
	}})
	sectors, err := lump.DecodeSectors(data)
	require.NoError(t, err)
	require.Len(t, sectors, 1)

	s := sectors[0]
	assert.Equal(t, float32(-8), s.FloorHeight)
	assert.Equal(t, float32(72), s.CeilingHeight)
	assert.Equal(t, "FLOOR4_8", s.FloorFlat)
	assert.Equal(t, "F_SKY1", s.CeilingFlat)
	assert.Equal(t, float32(1), s.LightLevel)
	assert.Equal(t, uint16(9), s.SpecialType)
	assert.Equal(t, uint16(3), s.SectorTag)
}

func TestDecodeGLVertexes(t *testing.T) {
	data := append([]byte("gNd2"),
		0x00, 0x80, 0x01, 0x00, // 1.5
		0x00, 0x00, 0xfe, 0xff, // -2
	)
	v, err := lump.DecodeGLVertexes(data)
	require.NoError(t, err)
	assert.Equal(t, []mgl32.Vec2{{1.5, -2}}, v)

	_, err = lump.DecodeGLVertexes(append([]byte("gNd3"), data[4:]...))
	assert.Equal(t, lump.ErrBadSignature, err)
	_, err = lump.DecodeGLVertexes([]byte("gN"))
	assert.Equal(t, lump.ErrBadSignature, err)
}

func TestDecodeGLSegTags(t *testing.T) {
	data := []byte{
		0x03, 0x80, 0x05, 0x00, // gl vertex 3, vertex 5
		0xff, 0xff, // miniseg
		0x01, 0x00, // left
		0x02, 0x00, // partner
	}
	segs, err := lump.DecodeGLSegs(data)
	require.NoError(t, err)
	require.Len(t, segs, 1)

	s := segs[0]
	assert.Equal(t, lump.VertexRef{GL: true, Index: 3}, s.Vertices[0])
	assert.Equal(t, lump.VertexRef{GL: false, Index: 5}, s.Vertices[1])
	assert.Equal(t, lump.NONE, s.Linedef)
	assert.Equal(t, geometry.SIDE_LEFT, s.LinedefSide)
	assert.Equal(t, 2, s.Partner)
}

func TestDecodeGLNode(t *testing.T) {
	node := lump.GLNode{
		PartitionPoint: mgl32.Vec2{32, 0},
		PartitionDir:   mgl32.Vec2{0, 64},
		ChildBoxes: [2]geometry.AABB2{
			geometry.AABB2FromExtents(64, 0, 32, 64),
			geometry.AABB2FromExtents(64, 0, 0, 32),
		},
		Children: [2]lump.NodeChild{{Leaf: true, Index: 1}, {Index: 4}},
	}
	nodes, err := lump.DecodeGLNodes(lumptest.GLNodes([]lump.GLNode{node}))
	require.NoError(t, err)
	assert.Equal(t, []lump.GLNode{node}, nodes)
}

func TestDecodeTextureDirectory(t *testing.T) {
	entries := []lump.TextureEntry{
		{Name: "STARTAN3", Width: 128, Height: 128, Patches: []lump.PatchEntry{
			{Offset: [2]int{0, 0}, PatchIndex: 1},
			{Offset: [2]int{64, -8}, PatchIndex: 0},
		}},
		{Name: "SKY1", Width: 256, Height: 128, Patches: []lump.PatchEntry{}},
	}
	decoded, err := lump.DecodeTextureDirectory(lumptest.TextureDirectory(entries))
	require.NoError(t, err)
	assert.Equal(t, entries, decoded)

	_, err = lump.DecodeTextureDirectory([]byte{5, 0, 0, 0, 4, 0, 0, 0})
	assert.Error(t, err)
}

func TestDecodePatchNames(t *testing.T) {
	names, err := lump.DecodePatchNames(lumptest.PatchNames([]string{"WALL00_1", "DOOR2_4"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"WALL00_1", "DOOR2_4"}, names)

	_, err = lump.DecodePatchNames([]byte{0xff, 0xff, 0, 0})
	assert.Error(t, err)
}

func TestDecodeFlat(t *testing.T) {
	pixels, err := lump.DecodeFlat(lumptest.Flat(7))
	require.NoError(t, err)
	assert.Len(t, pixels, 4096)

	_, err = lump.DecodeFlat(make([]byte, 4095))
	assert.Error(t, err)
}

func TestImportMap(t *testing.T) {
	src := lumptest.Square("FLOOR", "F_SKY1").AddTo(vfs.NewMemorySource(), "E1M1")

	d, err := lump.ImportMap("E1M1", src)
	require.NoError(t, err)
	assert.Len(t, d.Linedefs, 4)
	assert.Len(t, d.Sidedefs, 4)
	assert.Len(t, d.Vertexes, 4)
	assert.Len(t, d.Sectors, 1)
	assert.Len(t, d.GLSegs, 4)
	assert.Len(t, d.GLSubsectors, 1)
	assert.Empty(t, d.GLNodes)

	_, err = lump.ImportMap("E1M2", src)
	assert.True(t, errors.Is(err, vfs.ErrNotFound), "%v", err)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		breaks func(l *lumptest.Level)
		record string
		field  string
		value  int
	}{
		{"valid", func(l *lumptest.Level) {}, "", "", 0},
		{"sidedef sector", func(l *lumptest.Level) { l.Sidedefs[2].Sector = 1 }, "Sidedef", "sector index", 1},
		{"linedef sidedef", func(l *lumptest.Level) { l.Linedefs[1].Sidedefs[1] = 4 }, "Linedef", "sidedef index", 4},
		{"linedef vertex", func(l *lumptest.Level) { l.Linedefs[3].Vertices[0] = 9 }, "Linedef", "vertex index", 9},
		{"seg linedef", func(l *lumptest.Level) { l.GLSegs[0].Linedef = 4 }, "Seg", "linedef index", 4},
		{"seg vertex", func(l *lumptest.Level) { l.GLSegs[1].Vertices[1].Index = 4 }, "Seg", "vertex index", 4},
		{"seg gl vertex", func(l *lumptest.Level) { l.GLSegs[1].Vertices[0].GL = true }, "Seg", "gl vertex index", 1},
		{"seg partner", func(l *lumptest.Level) { l.GLSegs[2].Partner = 10 }, "Seg", "partner seg index", 10},
		{"subsector first", func(l *lumptest.Level) { l.GLSubsectors[0].FirstSeg = 4 }, "Subsector", "first seg index", 4},
		{"subsector count", func(l *lumptest.Level) { l.GLSubsectors[0].SegCount = 5 }, "Subsector", "seg count", 5},
		{"node subsector", func(l *lumptest.Level) {
			l.GLNodes = []lump.GLNode{{Children: [2]lump.NodeChild{{Leaf: true, Index: 0}, {Leaf: true, Index: 1}}}}
		}, "Node", "subsector index", 1},
		{"node child", func(l *lumptest.Level) {
			l.GLNodes = []lump.GLNode{{Children: [2]lump.NodeChild{{Index: 1}, {Leaf: true, Index: 0}}}}
		}, "Node", "child node index", 1},
		{"first violation wins", func(l *lumptest.Level) {
			l.GLSegs[0].Linedef = 4
			l.Sidedefs[3].Sector = 2
		}, "Sidedef", "sector index", 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := lumptest.Square("FLOOR", "CEIL")
			tc.breaks(l)
			src := l.AddTo(vfs.NewMemorySource(), "MAP01")

			d, err := lump.ImportMap("MAP01", src)
			if tc.record == "" {
				require.NoError(t, err)
				return
			}
			assert.Nil(t, d)

			var refErr *lump.ReferenceError
			require.True(t, errors.As(err, &refErr), "%v", err)
			assert.Equal(t, tc.record, refErr.Record)
			assert.Equal(t, tc.field, refErr.Field)
			assert.Equal(t, tc.value, refErr.Value)
			assert.Contains(t, err.Error(), tc.record)
		})
	}
}
