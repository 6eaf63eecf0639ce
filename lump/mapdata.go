package lump

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/doom_map_browser/vfs"
)

// MapData is decoded level before building. Indexes are positional.
type MapData struct {
	Name         string
	Linedefs     []Linedef
	Sidedefs     []Sidedef
	Vertexes     []mgl32.Vec2
	Sectors      []Sector
	GLVertexes   []mgl32.Vec2
	GLSegs       []GLSeg
	GLSubsectors []GLSubsector
	GLNodes      []GLNode
}

func LumpName(marker string, offset int) string {
	return fmt.Sprintf("%s/+%d", marker, offset)
}

func GLMarker(level string) string {
	return "GL_" + level
}

func loadAndDecode[T any](source vfs.DataSource, name string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := source.Load(name)
	if err != nil {
		return zero, errors.Wrapf(err, "Failed to load %s", name)
	}
	v, err := decode(data)
	if err != nil {
		return zero, errors.Wrapf(err, "Failed to decode %s", name)
	}
	return v, nil
}

// ImportMap decodes eight level lumps of level name and validates them
func ImportMap(name string, source vfs.DataSource) (*MapData, error) {
	gl := GLMarker(name)
	d := &MapData{Name: name}
	var err error

	if d.Linedefs, err = loadAndDecode(source, LumpName(name, LUMP_LINEDEFS), DecodeLinedefs); err != nil {
		return nil, err
	}
	if d.Sidedefs, err = loadAndDecode(source, LumpName(name, LUMP_SIDEDEFS), DecodeSidedefs); err != nil {
		return nil, err
	}
	if d.Vertexes, err = loadAndDecode(source, LumpName(name, LUMP_VERTEXES), DecodeVertexes); err != nil {
		return nil, err
	}
	if d.Sectors, err = loadAndDecode(source, LumpName(name, LUMP_SECTORS), DecodeSectors); err != nil {
		return nil, err
	}
	if d.GLVertexes, err = loadAndDecode(source, LumpName(gl, LUMP_GL_VERT), DecodeGLVertexes); err != nil {
		return nil, err
	}
	if d.GLSegs, err = loadAndDecode(source, LumpName(gl, LUMP_GL_SEGS), DecodeGLSegs); err != nil {
		return nil, err
	}
	if d.GLSubsectors, err = loadAndDecode(source, LumpName(gl, LUMP_GL_SSECT), DecodeGLSubsectors); err != nil {
		return nil, err
	}
	if d.GLNodes, err = loadAndDecode(source, LumpName(gl, LUMP_GL_NODES), DecodeGLNodes); err != nil {
		return nil, err
	}

	if err := d.Validate(); err != nil {
		return nil, errors.Wrapf(err, "Level %s", name)
	}
	return d, nil
}

func ImportThings(name string, source vfs.DataSource) ([]Thing, error) {
	return loadAndDecode(source, LumpName(name, LUMP_THINGS), DecodeThings)
}
