package lump

import (
	"github.com/pkg/errors"

	"github.com/mogaika/doom_map_browser/utils"
)

const (
	FLAT_WIDTH  = 64
	FLAT_HEIGHT = 64
	FLAT_SIZE   = FLAT_WIDTH * FLAT_HEIGHT
)

type PatchEntry struct {
	Offset     [2]int
	PatchIndex int // index in PNAMES
}

type TextureEntry struct {
	Name    string
	Width   int
	Height  int
	Patches []PatchEntry
}

// DecodePatchNames decodes PNAMES: u32 count then 8-byte names
func DecodePatchNames(data []byte) ([]string, error) {
	bs := utils.NewBufStack("pnames", data)
	count := int(bs.ReadLU32())
	if bs.Err() == nil && count*utils.NAME_SIZE > bs.Remaining() {
		return nil, errors.Errorf("PNAMES count %d does not fit in %d bytes", count, len(data))
	}
	names := make([]string, count)
	for i := range names {
		names[i], _ = bs.ReadName()
	}
	if err := bs.Err(); err != nil {
		return nil, errors.Wrap(err, "Failed to decode PNAMES")
	}
	return names, nil
}

// DecodeTextureDirectory decodes TEXTURE1/TEXTURE2: u32 count, count u32 offsets,
// texture definitions at offsets
func DecodeTextureDirectory(data []byte) ([]TextureEntry, error) {
	bs := utils.NewBufStack("textures", data)
	count := int(bs.ReadLU32())
	if bs.Err() == nil && count*4 > bs.Remaining() {
		return nil, errors.Errorf("Texture count %d does not fit in %d bytes", count, len(data))
	}
	offsets := make([]int, count)
	for i := range offsets {
		offsets[i] = int(bs.ReadLU32())
	}

	entries := make([]TextureEntry, count)
	for i, offset := range offsets {
		bs.Seek(offset)

		e := &entries[i]
		e.Name, _ = bs.ReadName()
		bs.Skip(4)
		e.Width = int(bs.ReadLU16())
		e.Height = int(bs.ReadLU16())
		bs.Skip(4)
		patchCount := int(bs.ReadLU16())
		if bs.Err() != nil {
			break
		}

		e.Patches = make([]PatchEntry, patchCount)
		for j := range e.Patches {
			p := &e.Patches[j]
			p.Offset[0] = int(bs.ReadL16())
			p.Offset[1] = int(bs.ReadL16())
			p.PatchIndex = int(bs.ReadLU16())
			bs.Skip(4)
		}
		if bs.Err() != nil {
			return nil, errors.Wrapf(bs.Err(), "Failed to decode texture %d %q", i, e.Name)
		}
	}
	if err := bs.Err(); err != nil {
		return nil, errors.Wrap(err, "Failed to decode texture directory")
	}
	return entries, nil
}

// DecodeFlat returns 64x64 palette indexes. Trailing bytes are ignored.
func DecodeFlat(data []byte) ([]byte, error) {
	if len(data) < FLAT_SIZE {
		return nil, errors.Errorf("Flat is %d bytes, want %d", len(data), FLAT_SIZE)
	}
	pixels := make([]byte, FLAT_SIZE)
	copy(pixels, data)
	return pixels, nil
}
