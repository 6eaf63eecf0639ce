package catalogue

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/level"
	"github.com/mogaika/doom_map_browser/lump"
	"github.com/mogaika/doom_map_browser/lump/lumptest"
	"github.com/mogaika/doom_map_browser/texture"
	"github.com/mogaika/doom_map_browser/vfs"
)

func TestDefaultCatalogue(t *testing.T) {
	templates, err := Load("")
	require.NoError(t, err)
	require.NotEmpty(t, templates)

	byName := make(map[string]Template)
	for _, tpl := range templates {
		byName[tpl.Name] = tpl
	}
	assert.Equal(t, Template{Name: "possessed", DoomEdNum: 3004, Radius: 20, Height: 56, Solid: true}, byName["possessed"])
	assert.Equal(t, uint16(1), byName["player1start"].DoomEdNum)
	assert.True(t, byName["keen"].Ceiling)
}

func TestParseRejectsNameless(t *testing.T) {
	_, err := Parse([]byte("templates:\n  - doomednum: 5\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("templates: [\n"))
	assert.Error(t, err)
}

func newRegistry(t *testing.T) (*assets.Registry, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	r := assets.NewRegistry(vfs.NewMemorySource(), zap.New(core))
	texture.AddStorages(r)
	level.AddStorage(r)
	AddStorage(r)
	return r, logs
}

func TestInsertReplacesByName(t *testing.T) {
	r, _ := newRegistry(t)

	c1 := Insert(r, []Template{{Name: "barrel", DoomEdNum: 2035, Radius: 10}})
	c2 := Insert(r, []Template{{Name: "barrel", DoomEdNum: 2035, Radius: 12}})

	h1, ok := c1.Lookup(2035)
	require.True(t, ok)
	h2, ok := c2.Lookup(2035)
	require.True(t, ok)
	assert.Equal(t, h1.ID(), h2.ID())

	tpl, ok := assets.Get(r, h1)
	require.True(t, ok)
	assert.Equal(t, float32(12), tpl.Radius)
	assert.Equal(t, 1, assets.Len[*Template](r))
}

func TestPlace(t *testing.T) {
	r, logs := newRegistry(t)

	l := lumptest.Square("FLOOR", "CEIL")
	data := &lump.MapData{
		Name: "E1M1", Linedefs: l.Linedefs, Sidedefs: l.Sidedefs, Vertexes: l.Vertexes,
		Sectors: l.Sectors, GLVertexes: l.GLVertexes, GLSegs: l.GLSegs, GLSubsectors: l.GLSubsectors,
	}
	m, err := level.Build(data, "SKY1", r)
	require.NoError(t, err)

	c := Insert(r, []Template{
		{Name: "player1start", DoomEdNum: 1},
		{Name: "lamp", DoomEdNum: 49, Height: 68, Ceiling: true},
		{Name: "imp", DoomEdNum: 3001, Radius: 20, Height: 56, Solid: true},
	})

	all := lump.THING_EASY | lump.THING_NORMAL | lump.THING_HARD
	things := []lump.Thing{
		{Position: mgl32.Vec2{32, 32}, Angle: 90, DoomEdNum: 1, Flags: all},
		{Position: mgl32.Vec2{10, 10}, DoomEdNum: 49, Flags: all},
		{Position: mgl32.Vec2{20, 20}, DoomEdNum: 9999, Flags: all},
		{Position: mgl32.Vec2{200, 200}, DoomEdNum: 3001, Flags: all},
		{Position: mgl32.Vec2{40, 40}, DoomEdNum: 3001, Flags: all | lump.THING_MULTIPLAYER_ONLY},
		{Position: mgl32.Vec2{40, 40}, DoomEdNum: 3001, Flags: lump.THING_HARD},
		{Position: mgl32.Vec2{50, 50}, DoomEdNum: 3001, Flags: lump.THING_NORMAL},
	}

	placed := Place(r, c, m, things, SKILL_MEDIUM)
	require.Len(t, placed, 3)

	assert.Equal(t, "player1start", placed[0].Name)
	assert.Equal(t, mgl32.Vec3{32, 32, 0}, placed[0].Position)
	assert.Equal(t, float32(90), placed[0].Angle)
	assert.Equal(t, 0, placed[0].Sector)

	assert.Equal(t, "lamp", placed[1].Name)
	assert.Equal(t, mgl32.Vec3{10, 10, 60}, placed[1].Position)

	assert.Equal(t, "imp", placed[2].Name)

	assert.Equal(t, 1, logs.FilterMessage("unknown thing type").Len())
	assert.Equal(t, 1, logs.FilterMessage("thing outside of map").Len())
}
