package level

import (
	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/lump"
)

// AddStorage registers Map asset type, map name is level marker (E1M1, MAP01)
func AddStorage(r *assets.Registry) {
	assets.AddStorage[*Map](r, "Map", lump.ImportMap)
}

// Builder returns map build function with fixed sky texture
func Builder(skyName string) func(*lump.MapData, *assets.Registry) (*Map, error) {
	return func(data *lump.MapData, r *assets.Registry) (*Map, error) {
		return Build(data, skyName, r)
	}
}
