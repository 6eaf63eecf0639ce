// Package loader sets up asset registry and runs level pipeline:
// decode, validate, build map, build textures.
package loader

import (
	"regexp"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/catalogue"
	"github.com/mogaika/doom_map_browser/level"
	"github.com/mogaika/doom_map_browser/lump"
	"github.com/mogaika/doom_map_browser/texture"
	"github.com/mogaika/doom_map_browser/vfs"
)

const DEFAULT_SKY = "SKY1"

var levelNameRe = regexp.MustCompile(`^(E[1-9]M[1-9]|MAP[0-9][0-9])$`)

// New returns registry with every asset type registered
func New(source vfs.DataSource, log *zap.Logger) *assets.Registry {
	r := assets.NewRegistry(source, log)
	texture.AddStorages(r)
	level.AddStorage(r)
	catalogue.AddStorage(r)
	return r
}

// LoadLevel loads and builds map name with its textures.
// Failed map is not published, error of decode, validation or build is returned.
// Missing textures do not fail the map, they stay unresolved.
func LoadLevel(r *assets.Registry, name, sky string) (assets.Handle[*level.Map], error) {
	if sky == "" {
		sky = DEFAULT_SKY
	}
	h := assets.Load[*level.Map](r, name)
	assets.BuildWaiting(r, level.Builder(sky))
	texture.BuildWaiting(r)

	if _, ok := assets.Get(r, h); !ok {
		err := assets.Err(r, h)
		h.Release()
		if err == nil {
			err = errors.New("Map was not built")
		}
		return assets.Handle[*level.Map]{}, errors.Wrapf(err, "Failed to load level %s", name)
	}
	r.Logger().Info("level loaded", zap.String("level", name))
	return h, nil
}

// Levels lists level markers that have GL nodes, in source order
func Levels(source vfs.DataSource) []string {
	var levels []string
	for _, name := range source.Names() {
		if levelNameRe.MatchString(name) && vfs.Exists(source, lump.GLMarker(name)) {
			levels = append(levels, name)
		}
	}
	return levels
}

// LoadThings places things of built level using catalogue
func LoadThings(r *assets.Registry, c *catalogue.Catalogue, name string, skill catalogue.Skill) ([]catalogue.Placed, error) {
	m, ok := assets.GetByName[*level.Map](r, name)
	if !ok {
		return nil, errors.Errorf("Level %s is not loaded", name)
	}
	things, err := lump.ImportThings(name, r.Source())
	if err != nil {
		return nil, err
	}
	return catalogue.Place(r, c, m, things, skill), nil
}
