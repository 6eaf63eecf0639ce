// Package lump decodes doom and glbsp (v2) level lumps and texture lumps.
// All positional indexes are left unvalidated, see Validate.
package lump

import (
	"github.com/pkg/errors"

	"github.com/mogaika/doom_map_browser/utils"
)

// NONE marks absent index (0xffff in lump)
const NONE = -1

const (
	NO_INDEX = 0xffff
	GL_FLAG  = 0x8000
	GL_MASK  = 0x7fff
)

// Record sizes
const (
	THING_SIZE    = 10
	LINEDEF_SIZE  = 14
	SIDEDEF_SIZE  = 30
	VERTEX_SIZE   = 4
	SECTOR_SIZE   = 26
	GL_VERT_SIZE  = 8
	GL_SEG_SIZE   = 10
	GL_SSECT_SIZE = 4
	GL_NODE_SIZE  = 28
)

// Lump offsets from level marker
const (
	LUMP_THINGS   = 1
	LUMP_LINEDEFS = 2
	LUMP_SIDEDEFS = 3
	LUMP_VERTEXES = 4
	LUMP_SECTORS  = 8

	LUMP_GL_VERT  = 1
	LUMP_GL_SEGS  = 2
	LUMP_GL_SSECT = 3
	LUMP_GL_NODES = 4
)

func readIndex(bs *utils.BufStack) int {
	if v := bs.ReadLU16(); v != NO_INDEX {
		return int(v)
	}
	return NONE
}

// decodeRecords reads records until buffer ends.
// Record cut by the end of buffer is an error.
func decodeRecords[T any](kind string, data []byte, recordSize int, read func(bs *utils.BufStack) T) ([]T, error) {
	bs := utils.NewBufStack(kind, data)
	result := make([]T, 0, len(data)/recordSize)
	for bs.Remaining() > 0 {
		rec := read(bs)
		if bs.Err() != nil {
			break
		}
		result = append(result, rec)
	}
	if err := bs.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode %s record %d", kind, len(result))
	}
	return result, nil
}
