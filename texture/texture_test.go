package texture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/lump"
	"github.com/mogaika/doom_map_browser/lump/lumptest"
	"github.com/mogaika/doom_map_browser/texture"
	"github.com/mogaika/doom_map_browser/vfs"
)

func newRegistry(t *testing.T, src vfs.DataSource) (*assets.Registry, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	r := assets.NewRegistry(src, zap.New(core))
	texture.AddStorages(r)
	return r, logs
}

func textureSource() *vfs.MemorySource {
	return vfs.NewMemorySource().
		Add(texture.PNAMES, lumptest.PatchNames([]string{"WALL00_1", "SW1_1"})).
		Add(texture.TEXTURE1, lumptest.TextureDirectory([]lump.TextureEntry{
			{Name: "STARTAN3", Width: 128, Height: 128, Patches: []lump.PatchEntry{
				{Offset: [2]int{0, 0}, PatchIndex: 0},
				{Offset: [2]int{64, 0}, PatchIndex: 1},
			}},
		})).
		Add(texture.TEXTURE2, lumptest.TextureDirectory([]lump.TextureEntry{
			{Name: "SKY1", Width: 256, Height: 128, Patches: []lump.PatchEntry{
				{Offset: [2]int{0, 0}, PatchIndex: 0},
			}},
		})).
		Add("F_START", nil).
		Add("FLOOR4_8", lumptest.Flat(3)).
		Add("SHORT", make([]byte, 100)).
		Add("F_END", nil)
}

func TestWallTexturesResolveThroughDirectories(t *testing.T) {
	r, logs := newRegistry(t, textureSource())

	startan := assets.Load[*texture.WallTexture](r, "STARTAN3")
	sky := assets.Load[*texture.WallTexture](r, "SKY1")
	missing := assets.Load[*texture.WallTexture](r, "NOPE")
	texture.BuildWaiting(r)

	wt, ok := assets.Get(r, startan)
	require.True(t, ok)
	assert.Equal(t, 128, wt.Width)
	assert.Equal(t, []texture.Patch{
		{Offset: [2]int{0, 0}, Name: "WALL00_1"},
		{Offset: [2]int{64, 0}, Name: "SW1_1"},
	}, wt.Patches)

	wt, ok = assets.Get(r, sky)
	require.True(t, ok, "TEXTURE2 is searched too")
	assert.Equal(t, 256, wt.Width)

	_, ok = assets.Get(r, missing)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("asset could not be loaded").Len())

	// dependencies are built once
	assert.Equal(t, 2, assets.Len[*texture.TextureDirectory](r))
	assert.Equal(t, 1, assets.Len[*texture.PatchNames](r))
}

func TestTextureDirectoryBadPatchIndex(t *testing.T) {
	src := vfs.NewMemorySource().
		Add(texture.PNAMES, lumptest.PatchNames([]string{"WALL00_1"})).
		Add(texture.TEXTURE1, lumptest.TextureDirectory([]lump.TextureEntry{
			{Name: "BROKEN", Width: 8, Height: 8, Patches: []lump.PatchEntry{{PatchIndex: 3}}},
		}))
	r, logs := newRegistry(t, src)

	h := assets.Load[*texture.WallTexture](r, "BROKEN")
	texture.BuildWaiting(r)

	_, ok := assets.Get(r, h)
	assert.False(t, ok)
	failed := logs.FilterMessage("asset could not be loaded").All()
	require.Len(t, failed, 2)
	assert.Equal(t, "TextureDirectory", failed[0].ContextMap()["type"])
	assert.Equal(t, "WallTexture", failed[1].ContextMap()["type"])
}

func TestFlats(t *testing.T) {
	r, _ := newRegistry(t, textureSource())

	floor := assets.Load[*texture.Flat](r, "FLOOR4_8")
	short := assets.Load[*texture.Flat](r, "SHORT")
	texture.BuildWaiting(r)

	f, ok := assets.Get(r, floor)
	require.True(t, ok)
	assert.Equal(t, "FLOOR4_8", f.Name)
	assert.Len(t, f.Pixels, 4096)
	assert.Equal(t, byte(3), f.Pixels[100])

	_, ok = assets.Get(r, short)
	assert.False(t, ok)
}
