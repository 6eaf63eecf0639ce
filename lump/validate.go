package lump

import (
	"fmt"
)

// ReferenceError reports index that points outside of its target array
type ReferenceError struct {
	Record string
	Index  int
	Field  string
	Value  int
	Limit  int
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d has invalid %s %d (limit %d)", e.Record, e.Index, e.Field, e.Value, e.Limit)
}

func checkIndex(record string, i int, field string, value, limit int) error {
	if value < 0 || value >= limit {
		return &ReferenceError{Record: record, Index: i, Field: field, Value: value, Limit: limit}
	}
	return nil
}

// Validate checks every cross reference of decoded level.
// First bad reference is returned.
func (d *MapData) Validate() error {
	for i, s := range d.Sidedefs {
		if err := checkIndex("Sidedef", i, "sector index", s.Sector, len(d.Sectors)); err != nil {
			return err
		}
	}

	for i, l := range d.Linedefs {
		for _, side := range l.Sidedefs {
			if side == NONE {
				continue
			}
			if err := checkIndex("Linedef", i, "sidedef index", side, len(d.Sidedefs)); err != nil {
				return err
			}
		}
	}
	for i, l := range d.Linedefs {
		for _, v := range l.Vertices {
			if err := checkIndex("Linedef", i, "vertex index", v, len(d.Vertexes)); err != nil {
				return err
			}
		}
	}

	for i, s := range d.GLSegs {
		if s.Linedef != NONE {
			if err := checkIndex("Seg", i, "linedef index", s.Linedef, len(d.Linedefs)); err != nil {
				return err
			}
		}
		for _, v := range s.Vertices {
			limit, field := len(d.Vertexes), "vertex index"
			if v.GL {
				limit, field = len(d.GLVertexes), "gl vertex index"
			}
			if err := checkIndex("Seg", i, field, v.Index, limit); err != nil {
				return err
			}
		}
		if s.Partner != NONE {
			if err := checkIndex("Seg", i, "partner seg index", s.Partner, len(d.GLSegs)); err != nil {
				return err
			}
		}
	}

	for i, ss := range d.GLSubsectors {
		if err := checkIndex("Subsector", i, "first seg index", ss.FirstSeg, len(d.GLSegs)); err != nil {
			return err
		}
		if ss.FirstSeg+ss.SegCount > len(d.GLSegs) {
			return &ReferenceError{
				Record: "Subsector", Index: i, Field: "seg count",
				Value: ss.SegCount, Limit: len(d.GLSegs) - ss.FirstSeg + 1,
			}
		}
	}

	for i, n := range d.GLNodes {
		for _, c := range n.Children {
			limit, field := len(d.GLNodes), "child node index"
			if c.Leaf {
				limit, field = len(d.GLSubsectors), "subsector index"
			}
			if err := checkIndex("Node", i, field, c.Index, limit); err != nil {
				return err
			}
		}
	}

	return nil
}
