package level

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/doom_map_browser/lump"
)

// neighbourHeight folds height of neighbours of sector,
// fallback is returned for sector without accepted neighbours
func (m *Map) neighbourHeight(sector int, fallback float32, height func(s *Sector) float32, better func(candidate, current float32) bool) float32 {
	result, found := fallback, false
	for _, n := range m.Sectors[sector].Neighbours {
		h := height(&m.Sectors[n])
		if !found || better(h, result) {
			result, found = h, true
		}
	}
	return result
}

func floorOf(s *Sector) float32   { return s.Interval.Min }
func ceilingOf(s *Sector) float32 { return s.Interval.Max }
func lower(a, b float32) bool     { return a < b }
func higher(a, b float32) bool    { return a > b }

func (m *Map) LowestNeighbourFloor(sector int) float32 {
	return m.neighbourHeight(sector, m.Sectors[sector].Interval.Min, floorOf, lower)
}

func (m *Map) HighestNeighbourFloor(sector int) float32 {
	return m.neighbourHeight(sector, m.Sectors[sector].Interval.Min, floorOf, higher)
}

func (m *Map) LowestNeighbourCeiling(sector int) float32 {
	return m.neighbourHeight(sector, m.Sectors[sector].Interval.Max, ceilingOf, lower)
}

func (m *Map) HighestNeighbourCeiling(sector int) float32 {
	return m.neighbourHeight(sector, m.Sectors[sector].Interval.Max, ceilingOf, higher)
}

// LowestNeighbourFloorAbove returns lowest neighbour floor higher than height,
// or height itself when there is none
func (m *Map) LowestNeighbourFloorAbove(sector int, height float32) float32 {
	result, found := height, false
	for _, n := range m.Sectors[sector].Neighbours {
		h := m.Sectors[n].Interval.Min
		if h > height && (!found || h < result) {
			result, found = h, true
		}
	}
	return result
}

// FindSubsector walks bsp from root and returns index of subsector leaf.
// Returns lump.NONE when walk does not reach a leaf within len(Nodes) steps.
func (m *Map) FindSubsector(p mgl32.Vec2) int {
	if len(m.Nodes) == 0 {
		return 0
	}
	node := 0
	for range m.Nodes {
		n := &m.Nodes[node]
		child := n.Children[n.PartitionLine.PointSide(p)]
		if child.Leaf {
			return child.Index
		}
		node = child.Index
	}
	return lump.NONE
}

// SectorAt returns sector under point, ok is false when point is outside of map
func (m *Map) SectorAt(p mgl32.Vec2) (int, bool) {
	if len(m.Subsectors) == 0 {
		return 0, false
	}
	i := m.FindSubsector(p)
	if i == lump.NONE {
		return lump.NONE, false
	}
	ss := &m.Subsectors[i]
	if !ss.Contains(p) {
		return ss.Sector, false
	}
	return ss.Sector, true
}
