// Package catalogue keeps thing templates and places level things on map
package catalogue

import (
	_ "embed"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/level"
	"github.com/mogaika/doom_map_browser/lump"
)

//go:embed templates.yaml
var defaultTemplates []byte

type Template struct {
	Name      string  `yaml:"name" json:"name"`
	DoomEdNum uint16  `yaml:"doomednum" json:"doomednum"`
	Radius    float32 `yaml:"radius" json:"radius"`
	Height    float32 `yaml:"height" json:"height"`
	Solid     bool    `yaml:"solid" json:"solid"`
	Ceiling   bool    `yaml:"ceiling" json:"ceiling"` // spawns hanging from ceiling
}

type file struct {
	Templates []Template `yaml:"templates"`
}

func Parse(data []byte) ([]Template, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "Failed to parse catalogue")
	}
	for i, t := range f.Templates {
		if t.Name == "" {
			return nil, errors.Errorf("Catalogue template %d has no name", i)
		}
	}
	return f.Templates, nil
}

// Load reads catalogue file, empty path means built-in catalogue
func Load(path string) ([]Template, error) {
	if path == "" {
		return Parse(defaultTemplates)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read catalogue %q", path)
	}
	return Parse(data)
}

// Catalogue maps doomednum to template inserted in registry
type Catalogue struct {
	byDoomEdNum map[uint16]assets.Handle[*Template]
}

func AddStorage(r *assets.Registry) {
	assets.AddStorage[*Template, any](r, "Template", nil)
}

// Insert puts templates in registry by name. Template with known name replaces
// the old one in place, so existing handles see new data.
func Insert(r *assets.Registry, templates []Template) *Catalogue {
	c := &Catalogue{byDoomEdNum: make(map[uint16]assets.Handle[*Template], len(templates))}
	for i := range templates {
		t := templates[i]
		h := assets.InsertWithName(r, t.Name, &t)
		if old, ok := c.byDoomEdNum[t.DoomEdNum]; ok {
			old.Release()
		}
		c.byDoomEdNum[t.DoomEdNum] = h
	}
	return c
}

func (c *Catalogue) Lookup(doomEdNum uint16) (assets.Handle[*Template], bool) {
	h, ok := c.byDoomEdNum[doomEdNum]
	return h, ok
}

type Skill int

const (
	SKILL_BABY Skill = iota + 1
	SKILL_EASY
	SKILL_MEDIUM
	SKILL_HARD
	SKILL_NIGHTMARE
)

func (s Skill) flag() lump.ThingFlags {
	switch {
	case s <= SKILL_EASY:
		return lump.THING_EASY
	case s == SKILL_MEDIUM:
		return lump.THING_NORMAL
	default:
		return lump.THING_HARD
	}
}

type Placed struct {
	Template  assets.Handle[*Template] `json:"template"`
	Name      string                   `json:"name"`
	Position  mgl32.Vec3               `json:"position"`
	Angle     float32                  `json:"angle"`
	Subsector int                      `json:"subsector"`
	Sector    int                      `json:"sector"`
}

// Place returns single player things of skill with their position on map.
// Things with unknown doomednum or outside of map are logged and skipped.
func Place(r *assets.Registry, c *Catalogue, m *level.Map, things []lump.Thing, skill Skill) []Placed {
	log := r.Logger()
	placed := make([]Placed, 0, len(things))
	for i, th := range things {
		if th.Flags&lump.THING_MULTIPLAYER_ONLY != 0 || th.Flags&skill.flag() == 0 {
			continue
		}
		h, ok := c.Lookup(th.DoomEdNum)
		if !ok {
			log.Warn("unknown thing type", zap.Int("thing", i), zap.Uint16("doomednum", th.DoomEdNum))
			continue
		}
		t, _ := assets.Get(r, h)

		ss := m.FindSubsector(th.Position)
		sector, inside := m.SectorAt(th.Position)
		if !inside {
			log.Warn("thing outside of map", zap.Int("thing", i), zap.String("template", t.Name))
			continue
		}

		z := m.Sectors[sector].Interval.Min
		if t.Ceiling {
			z = m.Sectors[sector].Interval.Max - t.Height
		}
		placed = append(placed, Placed{
			Template:  h.Clone(),
			Name:      t.Name,
			Position:  th.Position.Vec3(z),
			Angle:     th.Angle,
			Subsector: ss,
			Sector:    sector,
		})
	}
	return placed
}
