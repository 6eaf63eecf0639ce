package vfs

import "strings"

// MemorySource keeps lumps in insertion order, like a wad directory
type MemorySource struct {
	names []string
	lumps map[string][]byte
}

func NewMemorySource() *MemorySource {
	return &MemorySource{lumps: make(map[string][]byte)}
}

// Add appends lump. Existing lump with same name is replaced in place.
func (m *MemorySource) Add(name string, data []byte) *MemorySource {
	name = strings.ToUpper(name)
	if _, ok := m.lumps[name]; !ok {
		m.names = append(m.names, name)
	}
	m.lumps[name] = data
	return m
}

func (m *MemorySource) resolve(name string) (string, bool) {
	marker, offset, err := SplitName(name)
	if err != nil {
		return "", false
	}
	if offset == 0 {
		_, ok := m.lumps[marker]
		return marker, ok
	}
	for i, n := range m.names {
		if n == marker {
			if i+offset < len(m.names) {
				return m.names[i+offset], true
			}
			return "", false
		}
	}
	return "", false
}

func (m *MemorySource) Exists(name string) bool {
	_, ok := m.resolve(name)
	return ok
}

func (m *MemorySource) Load(name string) ([]byte, error) {
	if resolved, ok := m.resolve(name); ok {
		return m.lumps[resolved], nil
	}
	return nil, notFound(name)
}

func (m *MemorySource) Names() []string {
	return append([]string(nil), m.names...)
}
