package web

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/level"
	"github.com/mogaika/doom_map_browser/loader"
	"github.com/mogaika/doom_map_browser/utils"
	"github.com/mogaika/doom_map_browser/vfs"
	"github.com/mogaika/doom_map_browser/webutils"
)

var errUnknownLevel = errors.New("Unknown level")

type levelInfo struct {
	Name   string `json:"name"`
	Loaded bool   `json:"loaded"`
}

type sectorInfo struct {
	Sector                  *level.Sector `json:"sector"`
	LowestNeighbourFloor    float32       `json:"lowest_neighbour_floor"`
	HighestNeighbourFloor   float32       `json:"highest_neighbour_floor"`
	LowestNeighbourCeiling  float32       `json:"lowest_neighbour_ceiling"`
	HighestNeighbourCeiling float32       `json:"highest_neighbour_ceiling"`
	NextFloorAbove          float32       `json:"next_floor_above"`
}

type pointInfo struct {
	Subsector int  `json:"subsector"`
	Sector    int  `json:"sector"`
	Inside    bool `json:"inside"`
}

// level returns built map, loading it on first request.
// Caller must hold s.lock.
func (s *Server) level(name string) (*level.Map, error) {
	if m, ok := assets.GetByName[*level.Map](s.registry, name); ok {
		return m, nil
	}
	if !vfs.Exists(s.registry.Source(), name) {
		return nil, errors.Wrapf(errUnknownLevel, "Level %s", name)
	}

	s.hub.Info("loading level %s", name)
	h, err := loader.LoadLevel(s.registry, name, s.sky)
	if err != nil {
		s.log.Error("level load failed", zap.String("level", name), zap.Error(err))
		s.hub.Error("%v", err)
		return nil, err
	}
	// registry keeps built map alive, handle is not needed
	defer h.Release()
	s.hub.Info("level %s loaded", name)

	m, _ := assets.Get(s.registry, h)
	return m, nil
}

func (s *Server) writeLevelError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, errUnknownLevel) {
		code = http.StatusNotFound
	}
	webutils.WriteError(w, code, err)
}

func (s *Server) HandlerLumps(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, s.registry.Source().Names())
}

func (s *Server) HandlerLevels(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	names := loader.Levels(s.registry.Source())
	levels := make([]levelInfo, len(names))
	for i, name := range names {
		_, loaded := assets.GetByName[*level.Map](s.registry, name)
		levels[i] = levelInfo{Name: name, Loaded: loaded}
	}
	webutils.WriteJson(w, levels)
}

func (s *Server) HandlerLevel(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	m, err := s.level(mux.Vars(r)["level"])
	if err != nil {
		s.writeLevelError(w, err)
		return
	}
	webutils.WriteJson(w, m)
}

func (s *Server) HandlerSector(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	m, err := s.level(mux.Vars(r)["level"])
	if err != nil {
		s.writeLevelError(w, err)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["sector"])
	if err != nil || id >= len(m.Sectors) {
		webutils.WriteError(w, http.StatusNotFound, errors.Errorf("Sector %s not found", mux.Vars(r)["sector"]))
		return
	}

	sector := &m.Sectors[id]
	webutils.WriteJson(w, &sectorInfo{
		Sector:                  sector,
		LowestNeighbourFloor:    m.LowestNeighbourFloor(id),
		HighestNeighbourFloor:   m.HighestNeighbourFloor(id),
		LowestNeighbourCeiling:  m.LowestNeighbourCeiling(id),
		HighestNeighbourCeiling: m.HighestNeighbourCeiling(id),
		NextFloorAbove:          m.LowestNeighbourFloorAbove(id, sector.Interval.Min),
	})
}

func (s *Server) HandlerThings(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	name := mux.Vars(r)["level"]
	if _, err := s.level(name); err != nil {
		s.writeLevelError(w, err)
		return
	}
	placed, err := loader.LoadThings(s.registry, s.catalogue, name, s.skill)
	if err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	webutils.WriteJson(w, placed)
}

func (s *Server) HandlerAt(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	m, err := s.level(mux.Vars(r)["level"])
	if err != nil {
		s.writeLevelError(w, err)
		return
	}
	x, errX := strconv.ParseFloat(mux.Vars(r)["x"], 32)
	y, errY := strconv.ParseFloat(mux.Vars(r)["y"], 32)
	if errX != nil || errY != nil {
		webutils.WriteError(w, http.StatusBadRequest, errors.New("x and y must be numbers"))
		return
	}

	p := mgl32.Vec2{float32(x), float32(y)}
	sector, inside := m.SectorAt(p)
	webutils.WriteJson(w, &pointInfo{
		Subsector: m.FindSubsector(p),
		Sector:    sector,
		Inside:    inside,
	})
}

func (s *Server) HandlerDumpLevel(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	m, err := s.level(mux.Vars(r)["level"])
	if err != nil {
		s.writeLevelError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	utils.FDump(w, m)
}

func (s *Server) HandlerGLTF(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	name := mux.Vars(r)["level"]
	m, err := s.level(name)
	if err != nil {
		s.writeLevelError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := m.ExportGLTF(&buf); err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, errors.Wrapf(err, "Failed to export %s", name))
		return
	}
	webutils.WriteFile(w, &buf, name+".glb")
}
