package level

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/geometry"
	"github.com/mogaika/doom_map_browser/lump"
	"github.com/mogaika/doom_map_browser/texture"
)

var (
	ErrNoSector     = errors.New("No sector found for subsector")
	ErrSharedSide   = errors.New("Sidedef is used by more than one linedef")
	ErrNodeOrdering = errors.New("Node child does not follow its parent")
)

// builder memoizes texture handles for one map build
type builder struct {
	r     *assets.Registry
	flats map[string]assets.Handle[*texture.Flat]
	walls map[string]assets.Handle[*texture.WallTexture]
}

func (b *builder) flat(name string) FlatRef {
	switch name {
	case "":
		return FlatRef{}
	case SKY_FLAT:
		return FlatRef{Kind: TEXTURE_SKY, Name: name}
	}
	h, ok := b.flats[name]
	if !ok {
		h = assets.Load[*texture.Flat](b.r, name)
		b.flats[name] = h
	}
	return FlatRef{Kind: TEXTURE_NORMAL, Name: name, Handle: h.Clone()}
}

func (b *builder) wall(name string, skyAllowed bool) WallRef {
	if name == "" {
		return WallRef{}
	}
	if skyAllowed && name == SKY_FLAT {
		return WallRef{Kind: TEXTURE_SKY, Name: name}
	}
	h, ok := b.walls[name]
	if !ok {
		h = assets.Load[*texture.WallTexture](b.r, name)
		b.walls[name] = h
	}
	return WallRef{Kind: TEXTURE_NORMAL, Name: name, Handle: h.Clone()}
}

func (b *builder) release() {
	for _, h := range b.flats {
		h.Release()
	}
	for _, h := range b.walls {
		h.Release()
	}
}

func addNeighbour(s *Sector, other int) {
	for _, n := range s.Neighbours {
		if n == other {
			return
		}
	}
	s.Neighbours = append(s.Neighbours, other)
}

// checkSidedefOwners makes sure every sidedef is referenced by at most one linedef slot
func checkSidedefOwners(data *lump.MapData) error {
	owners := make([]int, len(data.Sidedefs))
	for i := range owners {
		owners[i] = lump.NONE
	}
	for i, ld := range data.Linedefs {
		for _, sd := range ld.Sidedefs {
			if sd == lump.NONE {
				continue
			}
			if owners[sd] != lump.NONE {
				return errors.Wrapf(ErrSharedSide, "Sidedef %d of linedefs %d and %d", sd, owners[sd], i)
			}
			owners[sd] = i
		}
	}
	return nil
}

// checkNodeOrder makes sure bsp walk from root always terminates:
// after reversal internal children have bigger index than their parent
func checkNodeOrder(nodes []Node) error {
	for i := range nodes {
		for _, child := range nodes[i].Children {
			if !child.Leaf && child.Index <= i {
				return errors.Wrapf(ErrNodeOrdering, "Node %d child node %d", i, child.Index)
			}
		}
	}
	return nil
}

func releaseSidedef(s *Sidedef) {
	s.Top.Handle.Release()
	s.Bottom.Handle.Release()
	s.Middle.Handle.Release()
}

func vertex(data *lump.MapData, v lump.VertexRef) mgl32.Vec2 {
	if v.GL {
		return data.GLVertexes[v.Index]
	}
	return data.Vertexes[v.Index]
}

// Build turns validated level data into Map.
// Textures are only loaded here, building them is up to the caller.
func Build(data *lump.MapData, skyName string, r *assets.Registry) (*Map, error) {
	if err := checkSidedefOwners(data); err != nil {
		return nil, err
	}
	nodes := reverseNodes(data.GLNodes)
	if err := checkNodeOrder(nodes); err != nil {
		return nil, err
	}

	b := &builder{
		r:     r,
		flats: make(map[string]assets.Handle[*texture.Flat]),
		walls: make(map[string]assets.Handle[*texture.WallTexture]),
	}
	defer b.release()

	m := &Map{
		Name: data.Name,
		Sky:  assets.Load[*texture.WallTexture](r, skyName),
	}

	m.Sectors = make([]Sector, len(data.Sectors))
	for i, sd := range data.Sectors {
		m.Sectors[i] = Sector{
			Interval:    geometry.NewInterval(sd.FloorHeight, sd.CeilingHeight),
			Floor:       b.flat(sd.FloorFlat),
			Ceiling:     b.flat(sd.CeilingFlat),
			LightLevel:  sd.LightLevel,
			SpecialType: sd.SpecialType,
			SectorTag:   sd.SectorTag,
		}
	}

	sidedefs := make([]*Sidedef, len(data.Sidedefs))
	for i, sd := range data.Sidedefs {
		sidedefs[i] = &Sidedef{
			TextureOffset: sd.TextureOffset,
			Top:           b.wall(sd.TopTexture, true),
			Bottom:        b.wall(sd.BottomTexture, false),
			Middle:        b.wall(sd.MiddleTexture, false),
			Sector:        sd.Sector,
		}
	}
	// owners are checked above, every sidedef moves into at most one linedef
	claim := func(i int) *Sidedef {
		if i == lump.NONE {
			return nil
		}
		s := sidedefs[i]
		sidedefs[i] = nil
		return s
	}

	m.Linedefs = make([]Linedef, len(data.Linedefs))
	for i, ld := range data.Linedefs {
		l := &m.Linedefs[i]
		l.Sidedefs = [2]*Sidedef{claim(ld.Sidedefs[0]), claim(ld.Sidedefs[1])}

		if front, back := l.Sidedefs[0], l.Sidedefs[1]; front != nil && back != nil {
			if front.Sector != back.Sector {
				addNeighbour(&m.Sectors[front.Sector], back.Sector)
				addNeighbour(&m.Sectors[back.Sector], front.Sector)
			}
			// upper texture between two sky ceilings is sky too
			if m.Sectors[front.Sector].Ceiling.IsSky() && m.Sectors[back.Sector].Ceiling.IsSky() {
				front.Top.Handle.Release()
				back.Top.Handle.Release()
				front.Top = WallRef{Kind: TEXTURE_SKY, Name: front.Top.Name}
				back.Top = WallRef{Kind: TEXTURE_SKY, Name: back.Top.Name}
			}
		}

		v0, v1 := data.Vertexes[ld.Vertices[0]], data.Vertexes[ld.Vertices[1]]
		l.Line = geometry.NewLine2(v0, v1.Sub(v0))
		l.Normal = l.Line.Normal()
		l.BBox = geometry.EmptyAABB2()
		l.BBox.AddPoint(v0)
		l.BBox.AddPoint(v1)
		planes := l.BBox.Planes()
		l.Planes = planes[:]
		if !geometry.IsAxisAligned(l.Normal) {
			d := l.Line.Point.Dot(l.Normal)
			l.Planes = append(l.Planes,
				geometry.NewPlane2(l.Normal, d),
				geometry.NewPlane2(l.Normal.Mul(-1), -d))
		}

		l.Flags = ld.Flags
		l.SolidMask = solidMaskFromFlags(ld.Flags)
		l.SpecialType = ld.SpecialType
		l.SectorTag = ld.SectorTag
	}

	// sidedefs of no linedef are dropped with their textures
	for _, s := range sidedefs {
		if s != nil {
			releaseSidedef(s)
		}
	}

	m.Nodes = nodes

	segs := make([]Seg, len(data.GLSegs))
	for i, sd := range data.GLSegs {
		v0, v1 := vertex(data, sd.Vertices[0]), vertex(data, sd.Vertices[1])
		line := geometry.NewLine2(v0, v1.Sub(v0))
		segs[i] = Seg{
			Line:        line,
			Normal:      line.Normal(),
			Linedef:     sd.Linedef,
			LinedefSide: sd.LinedefSide,
		}
	}

	m.Subsectors = make([]Subsector, len(data.GLSubsectors))
	for i, sd := range data.GLSubsectors {
		ss := &m.Subsectors[i]
		ss.Segs = append([]Seg(nil), segs[sd.FirstSeg:sd.FirstSeg+sd.SegCount]...)

		ss.Sector = lump.NONE
		for _, seg := range ss.Segs {
			if seg.Linedef == lump.NONE {
				continue
			}
			if side := m.Linedefs[seg.Linedef].Sidedefs[seg.LinedefSide]; side != nil {
				ss.Sector = side.Sector
				break
			}
		}
		if ss.Sector == lump.NONE {
			m.Release()
			return nil, errors.Wrapf(ErrNoSector, "Subsector %d", i)
		}
		m.Sectors[ss.Sector].Subsectors = append(m.Sectors[ss.Sector].Subsectors, i)

		ss.BBox = geometry.EmptyAABB2()
		for _, seg := range ss.Segs {
			ss.BBox.AddPoint(seg.Line.Point)
		}
		planes := ss.BBox.Planes()
		ss.Planes = planes[:]
		for _, seg := range ss.Segs {
			if geometry.IsAxisAligned(seg.Normal) {
				continue
			}
			n := seg.Normal.Mul(-1)
			ss.Planes = append(ss.Planes, geometry.NewPlane2(n, seg.Line.Point.Dot(n)))
		}
	}

	return m, nil
}

// reverseNodes makes root first: node i moves to count-1-i,
// internal child references are remapped, leaves stay
func reverseNodes(data []lump.GLNode) []Node {
	count := len(data)
	nodes := make([]Node, count)
	for i, nd := range data {
		n := Node{
			PartitionLine: geometry.NewLine2(nd.PartitionPoint, nd.PartitionDir),
			ChildBoxes:    nd.ChildBoxes,
			Children:      nd.Children,
		}
		n.Normal = n.PartitionLine.Normal()
		for c := range n.Children {
			if !n.Children[c].Leaf {
				n.Children[c].Index = count - 1 - n.Children[c].Index
			}
		}
		nodes[count-1-i] = n
	}
	return nodes
}

// Release drops texture handles held by map
func (m *Map) Release() {
	m.Sky.Release()
	for i := range m.Sectors {
		m.Sectors[i].Floor.Handle.Release()
		m.Sectors[i].Ceiling.Handle.Release()
	}
	for i := range m.Linedefs {
		for _, side := range m.Linedefs[i].Sidedefs {
			if side != nil {
				releaseSidedef(side)
			}
		}
	}
}
