package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// NewDocument returns document with one double sided default material
func NewDocument() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "default",
		DoubleSided: true,
	})
	return doc
}

// MeshBuilder collects triangles of one mesh
type MeshBuilder struct {
	Name      string
	Positions [][3]float32
	Indices   []uint32
}

func (mb *MeshBuilder) AddVertex(p [3]float32) uint32 {
	mb.Positions = append(mb.Positions, p)
	return uint32(len(mb.Positions) - 1)
}

// AddFan triangulates convex polygon
func (mb *MeshBuilder) AddFan(points [][3]float32) {
	if len(points) < 3 {
		return
	}
	first := mb.AddVertex(points[0])
	prev := mb.AddVertex(points[1])
	for _, p := range points[2:] {
		cur := mb.AddVertex(p)
		mb.Indices = append(mb.Indices, first, prev, cur)
		prev = cur
	}
}

func (mb *MeshBuilder) AddQuad(a, b, c, d [3]float32) {
	mb.AddFan([][3]float32{a, b, c, d})
}

// Flush writes mesh and node referencing it, empty mesh is skipped
func (mb *MeshBuilder) Flush(doc *gltf.Document) {
	if len(mb.Indices) == 0 {
		return
	}
	positions := modeler.WritePosition(doc, mb.Positions)
	indices := modeler.WriteIndices(doc, mb.Indices)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: mb.Name,
		Primitives: []*gltf.Primitive{
			{
				Indices:    &indices,
				Attributes: map[string]uint32{"POSITION": positions},
				Material:   gltf.Index(0),
			},
		},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: mb.Name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	doc.Scenes[0].Nodes = doc.Scenes[0].Nodes[:0]
	for iNode := range doc.Nodes {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(iNode))
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
