package vfs

import (
	"os"
	path_ "path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const LUMP_EXT = ".lmp"

// lump names of level data in order they follow level marker
var (
	levelLumps   = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS", "SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP"}
	glLevelLumps = []string{"GL_VERT", "GL_SEGS", "GL_SSECT", "GL_NODES", "GL_PVS"}
)

// DirectorySource reads unpacked wad.
// Plain lumps stored as <dir>/<NAME>.lmp, level lumps as <dir>/<MARKER>/<LUMP>.lmp
type DirectorySource struct {
	path string
}

func NewDirectorySource(path string) *DirectorySource {
	return &DirectorySource{path: path}
}

func (dd *DirectorySource) Path() string {
	return dd.path
}

func (dd *DirectorySource) filePath(name string) (string, error) {
	marker, offset, err := SplitName(name)
	if err != nil {
		return "", err
	}
	if offset == 0 {
		return path_.Join(dd.path, marker+LUMP_EXT), nil
	}

	lumps := levelLumps
	if strings.HasPrefix(marker, "GL_") {
		lumps = glLevelLumps
	}
	if offset > len(lumps) {
		return "", errors.Errorf("Unknown level lump %q", name)
	}
	return path_.Join(dd.path, marker, lumps[offset-1]+LUMP_EXT), nil
}

// markerDir returns directory of level marker, marker lump itself is empty
func (dd *DirectorySource) markerDir(name string) (string, bool) {
	marker, offset, err := SplitName(name)
	if err != nil || offset != 0 {
		return "", false
	}
	p := path_.Join(dd.path, marker)
	s, err := os.Stat(p)
	return p, err == nil && s.IsDir()
}

func (dd *DirectorySource) Exists(name string) bool {
	if _, ok := dd.markerDir(name); ok {
		return true
	}
	p, err := dd.filePath(name)
	if err != nil {
		return false
	}
	s, err := os.Stat(p)
	return err == nil && !s.IsDir()
}

func (dd *DirectorySource) Load(name string) ([]byte, error) {
	if _, ok := dd.markerDir(name); ok {
		return []byte{}, nil
	}
	p, err := dd.filePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(name)
		}
		return nil, errors.Wrapf(err, "Cannot read lump %q", name)
	}
	return data, nil
}

// Names lists plain lumps and level markers, sorted
func (dd *DirectorySource) Names() []string {
	entries, err := os.ReadDir(dd.path)
	if err != nil {
		return nil
	}
	result := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			result = append(result, strings.ToUpper(e.Name()))
		} else if strings.EqualFold(path_.Ext(e.Name()), LUMP_EXT) {
			result = append(result, strings.ToUpper(strings.TrimSuffix(e.Name(), path_.Ext(e.Name()))))
		}
	}
	sort.Strings(result)
	return result
}
