package vfs

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("lump not found")

// DataSource provides named lumps.
// Lump names are case insensitive. Name "MARKER/+N" addresses
// lump placed N entries after lump MARKER (level data lumps).
type DataSource interface {
	Load(name string) ([]byte, error)
	Names() []string
}

// Exists reports if source can load lump without reading it when possible
func Exists(s DataSource, name string) bool {
	if e, ok := s.(interface{ Exists(string) bool }); ok {
		return e.Exists(name)
	}
	_, err := s.Load(name)
	return err == nil
}

// SplitName splits "MARKER/+N" into marker and offset.
// Plain name returns offset 0.
func SplitName(name string) (string, int, error) {
	name = strings.ToUpper(name)
	i := strings.Index(name, "/+")
	if i < 0 {
		return name, 0, nil
	}
	offset, err := strconv.Atoi(name[i+2:])
	if err != nil || offset < 0 {
		return "", 0, errors.Errorf("Invalid lump offset in name %q", name)
	}
	return name[:i], offset, nil
}

func notFound(name string) error {
	return errors.Wrapf(ErrNotFound, "%q", name)
}
