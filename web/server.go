package web

import (
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/catalogue"
	"github.com/mogaika/doom_map_browser/status"
)

// Server exposes loaded levels over http.
// Registry is not safe for concurrent use, every handler holds lock while touching it.
type Server struct {
	lock      sync.Mutex
	registry  *assets.Registry
	catalogue *catalogue.Catalogue
	sky       string
	skill     catalogue.Skill
	hub       *status.Hub
	log       *zap.Logger
}

func NewServer(r *assets.Registry, c *catalogue.Catalogue, sky string, skill catalogue.Skill, hub *status.Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if hub == nil {
		hub = status.NewHub(log)
	}
	return &Server{
		registry:  r,
		catalogue: c,
		sky:       sky,
		skill:     skill,
		hub:       hub,
		log:       log.Named("web"),
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/lumps", s.HandlerLumps)
	r.HandleFunc("/json/levels", s.HandlerLevels)
	r.HandleFunc("/json/level/{level}", s.HandlerLevel)
	r.HandleFunc("/json/level/{level}/sector/{sector:[0-9]+}", s.HandlerSector)
	r.HandleFunc("/json/level/{level}/things", s.HandlerThings)
	r.HandleFunc("/json/level/{level}/at", s.HandlerAt).Queries("x", "{x}", "y", "{y}")
	r.HandleFunc("/dump/level/{level}", s.HandlerDumpLevel)
	r.HandleFunc("/gltf/level/{level}", s.HandlerGLTF)
	r.Handle("/ws/status", s.hub)
	return r
}

func (s *Server) Start(addr string) error {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router())
	h = handlers.LoggingHandler(os.Stdout, h)

	s.log.Info("starting server", zap.String("addr", addr))
	return http.ListenAndServe(addr, h)
}
