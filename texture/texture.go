// Package texture holds flat and wall texture assets.
// Wall textures resolve through TEXTURE1/TEXTURE2 directories and PNAMES,
// every step is separate asset type built on demand.
package texture

import (
	"github.com/pkg/errors"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/lump"
	"github.com/mogaika/doom_map_browser/vfs"
)

const (
	PNAMES   = "PNAMES"
	TEXTURE1 = "TEXTURE1"
	TEXTURE2 = "TEXTURE2"
)

type Flat struct {
	Name   string
	Pixels []byte // 64x64 palette indexes
}

type PatchNames struct {
	Names []string
}

type Patch struct {
	Offset [2]int
	Name   string
}

type WallTexture struct {
	Name    string
	Width   int
	Height  int
	Patches []Patch
}

// TextureDirectory is TEXTURE1 or TEXTURE2 with patch names resolved
type TextureDirectory struct {
	Textures []*WallTexture
	byName   map[string]*WallTexture
}

func (td *TextureDirectory) Get(name string) (*WallTexture, bool) {
	t, ok := td.byName[name]
	return t, ok
}

type flatData struct {
	name   string
	pixels []byte
}

func importFlat(name string, source vfs.DataSource) (flatData, error) {
	data, err := source.Load(name)
	if err != nil {
		return flatData{}, err
	}
	pixels, err := lump.DecodeFlat(data)
	return flatData{name: name, pixels: pixels}, err
}

func buildFlat(d flatData, r *assets.Registry) (*Flat, error) {
	return &Flat{Name: d.name, Pixels: d.pixels}, nil
}

func importPatchNames(name string, source vfs.DataSource) ([]string, error) {
	data, err := source.Load(name)
	if err != nil {
		return nil, err
	}
	return lump.DecodePatchNames(data)
}

func buildPatchNames(names []string, r *assets.Registry) (*PatchNames, error) {
	return &PatchNames{Names: names}, nil
}

func importTextureDirectory(name string, source vfs.DataSource) ([]lump.TextureEntry, error) {
	data, err := source.Load(name)
	if err != nil {
		return nil, err
	}
	return lump.DecodeTextureDirectory(data)
}

func buildTextureDirectory(entries []lump.TextureEntry, r *assets.Registry) (*TextureDirectory, error) {
	h := assets.Load[*PatchNames](r, PNAMES)
	defer h.Release()
	assets.BuildWaiting(r, buildPatchNames)

	pnames, ok := assets.Get(r, h)
	if !ok {
		return nil, errors.Errorf("%s is not available", PNAMES)
	}

	td := &TextureDirectory{
		Textures: make([]*WallTexture, len(entries)),
		byName:   make(map[string]*WallTexture, len(entries)),
	}
	for i, e := range entries {
		t := &WallTexture{
			Name:    e.Name,
			Width:   e.Width,
			Height:  e.Height,
			Patches: make([]Patch, len(e.Patches)),
		}
		for j, p := range e.Patches {
			if p.PatchIndex >= len(pnames.Names) {
				return nil, &lump.ReferenceError{
					Record: "Texture", Index: i, Field: "patch name index",
					Value: p.PatchIndex, Limit: len(pnames.Names),
				}
			}
			t.Patches[j] = Patch{Offset: p.Offset, Name: pnames.Names[p.PatchIndex]}
		}
		td.Textures[i] = t
		// first definition wins, like the engine lookup
		if _, dup := td.byName[t.Name]; !dup {
			td.byName[t.Name] = t
		}
	}
	return td, nil
}

// wall texture import only remembers the name, definition is found at build
func importWallTexture(name string, source vfs.DataSource) (string, error) {
	return name, nil
}

func buildWallTexture(name string, r *assets.Registry) (*WallTexture, error) {
	dirs := []assets.Handle[*TextureDirectory]{assets.Load[*TextureDirectory](r, TEXTURE1)}
	if vfs.Exists(r.Source(), TEXTURE2) {
		dirs = append(dirs, assets.Load[*TextureDirectory](r, TEXTURE2))
	}
	defer func() {
		for _, h := range dirs {
			h.Release()
		}
	}()
	assets.BuildWaiting(r, buildTextureDirectory)

	for _, h := range dirs {
		if td, ok := assets.Get(r, h); ok {
			if t, ok := td.Get(name); ok {
				return t, nil
			}
		}
	}
	return nil, errors.Errorf("Texture %s does not exist", name)
}

// AddStorages registers texture asset types
func AddStorages(r *assets.Registry) {
	assets.AddStorage[*Flat](r, "Flat", importFlat)
	assets.AddStorage[*PatchNames](r, "PatchNames", importPatchNames)
	assets.AddStorage[*TextureDirectory](r, "TextureDirectory", importTextureDirectory)
	assets.AddStorage[*WallTexture](r, "WallTexture", importWallTexture)
}

// BuildWaiting builds queued wall textures (with their directories and
// patch names) and flats
func BuildWaiting(r *assets.Registry) {
	assets.BuildWaiting(r, buildWallTexture)
	assets.BuildWaiting(r, buildFlat)
}
