package vfs

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/doom_map_browser/utils"
)

const (
	WAD_HEADER_SIZE = 12
	WAD_ENTRY_SIZE  = 16
)

type WadEntry struct {
	Name    string
	Filepos int64
	Size    int64
}

// Wad is a read-only IWAD/PWAD archive
type Wad struct {
	name    string
	r       io.ReaderAt
	Entries []WadEntry
	byName  map[string]int
}

func OpenWad(path string) (*Wad, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open wad")
	}
	w, err := NewWad(filepath.Base(path), f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// readerSize returns size of archive when reader can tell it
func readerSize(r io.ReaderAt) (int64, bool) {
	switch sr := r.(type) {
	case interface{ Size() int64 }:
		return sr.Size(), true
	case interface{ Stat() (os.FileInfo, error) }:
		if fi, err := sr.Stat(); err == nil {
			return fi.Size(), true
		}
	}
	return 0, false
}

func NewWad(name string, r io.ReaderAt) (*Wad, error) {
	var head [WAD_HEADER_SIZE]byte
	if _, err := r.ReadAt(head[:], 0); err != nil {
		return nil, errors.Wrapf(err, "Cannot read %q header", name)
	}

	magic := string(head[:4])
	if magic != "IWAD" && magic != "PWAD" {
		return nil, errors.Errorf("%q has invalid magic %q", name, magic)
	}
	count := int32(binary.LittleEndian.Uint32(head[4:8]))
	tableOffset := int32(binary.LittleEndian.Uint32(head[8:12]))
	if count < 0 || tableOffset < 0 {
		return nil, errors.Errorf("%q has corrupted header", name)
	}
	size, sized := readerSize(r)
	if sized && int64(tableOffset)+int64(count)*WAD_ENTRY_SIZE > size {
		return nil, errors.Errorf("%q directory of %d lumps does not fit into %d bytes", name, count, size)
	}

	table := make([]byte, int(count)*WAD_ENTRY_SIZE)
	if _, err := r.ReadAt(table, int64(tableOffset)); err != nil {
		return nil, errors.Wrapf(err, "Cannot read %q directory", name)
	}

	w := &Wad{
		name:    name,
		r:       r,
		Entries: make([]WadEntry, count),
		byName:  make(map[string]int, count),
	}
	bs := utils.NewBufStack("waddir", table).SetName(name)
	for i := range w.Entries {
		e := &w.Entries[i]
		e.Filepos = int64(bs.ReadL32())
		e.Size = int64(bs.ReadL32())
		e.Name = strings.ToUpper(string(bytes.TrimRight(bs.Read(utils.NAME_SIZE), "\x00")))
		if e.Filepos < 0 || e.Size < 0 || (sized && e.Filepos+e.Size > size) {
			return nil, errors.Errorf("%q lump %d %q has corrupted position", name, i, e.Name)
		}
		// later lumps with the same name win, like in the game
		w.byName[e.Name] = i
	}
	if err := bs.Err(); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Wad) Name() string { return w.name }

func (w *Wad) index(name string) (int, bool) {
	marker, offset, err := SplitName(name)
	if err != nil {
		return 0, false
	}
	i, ok := w.byName[marker]
	if !ok || i+offset >= len(w.Entries) {
		return 0, false
	}
	return i + offset, true
}

func (w *Wad) Exists(name string) bool {
	_, ok := w.index(name)
	return ok
}

func (w *Wad) Load(name string) ([]byte, error) {
	i, ok := w.index(name)
	if !ok {
		return nil, notFound(name)
	}
	e := w.Entries[i]
	buf := make([]byte, e.Size)
	if e.Size == 0 {
		return buf, nil
	}
	if _, err := w.r.ReadAt(buf, e.Filepos); err != nil {
		return nil, errors.Wrapf(err, "Cannot read lump %q from %q", name, w.name)
	}
	return buf, nil
}

func (w *Wad) Names() []string {
	names := make([]string, len(w.Entries))
	for i, e := range w.Entries {
		names[i] = e.Name
	}
	return names
}

func (w *Wad) Close() error {
	if c, ok := w.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Stack searches sources from the last added to the first,
// so pwads and gl node files override base iwad
type Stack struct {
	sources []DataSource
}

func NewStack(sources ...DataSource) *Stack {
	return &Stack{sources: sources}
}

func (s *Stack) Add(src DataSource) {
	s.sources = append(s.sources, src)
}

func (s *Stack) Exists(name string) bool {
	for i := len(s.sources) - 1; i >= 0; i-- {
		if Exists(s.sources[i], name) {
			return true
		}
	}
	return false
}

func (s *Stack) Load(name string) ([]byte, error) {
	for i := len(s.sources) - 1; i >= 0; i-- {
		if !Exists(s.sources[i], name) {
			continue
		}
		return s.sources[i].Load(name)
	}
	return nil, notFound(name)
}

func (s *Stack) Names() []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, src := range s.sources {
		for _, name := range src.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

func (s *Stack) Close() error {
	for _, src := range s.sources {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}
