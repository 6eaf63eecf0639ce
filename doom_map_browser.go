package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/catalogue"
	"github.com/mogaika/doom_map_browser/config"
	"github.com/mogaika/doom_map_browser/level"
	"github.com/mogaika/doom_map_browser/loader"
	"github.com/mogaika/doom_map_browser/status"
	"github.com/mogaika/doom_map_browser/utils"
	"github.com/mogaika/doom_map_browser/vfs"
	"github.com/mogaika/doom_map_browser/web"
)

type wadList []string

func (l *wadList) String() string { return strings.Join(*l, ",") }
func (l *wadList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func openSource(cfg *config.Config) (vfs.DataSource, func(), error) {
	if len(cfg.Wads) == 0 {
		if cfg.Directory == "" {
			return nil, nil, errors.New("Neither wads nor directory provided")
		}
		return vfs.NewDirectorySource(cfg.Directory), func() {}, nil
	}

	stack := vfs.NewStack()
	for _, path := range cfg.Wads {
		w, err := vfs.OpenWad(path)
		if err != nil {
			stack.Close()
			return nil, nil, errors.Wrapf(err, "Wad %q", path)
		}
		stack.Add(w)
	}
	return stack, func() { stack.Close() }, nil
}

// loadAll builds every requested level, failed ones are logged and skipped
func loadAll(r *assets.Registry, names []string, sky string, hub *status.Hub, log *zap.Logger) []assets.Handle[*level.Map] {
	bar := progressbar.Default(int64(len(names)), "loading levels")
	handles := make([]assets.Handle[*level.Map], 0, len(names))
	for i, name := range names {
		hub.Progress(float32(i)/float32(len(names)), "loading level %s", name)
		h, err := loader.LoadLevel(r, name, sky)
		if err != nil {
			log.Error("level skipped", zap.String("level", name), zap.Error(err))
		} else {
			handles = append(handles, h)
		}
		bar.Add(1)
	}
	hub.Progress(1, "%d of %d levels loaded", len(handles), len(names))
	return handles
}

func exportGLTF(r *assets.Registry, handles []assets.Handle[*level.Map], dir string) error {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return errors.Wrapf(err, "Cannot create %q", dir)
	}
	for _, h := range handles {
		m, _ := assets.Get(r, h)
		f, err := os.Create(filepath.Join(dir, m.Name+".glb"))
		if err != nil {
			return errors.Wrapf(err, "Cannot create glb for %s", m.Name)
		}
		err = m.ExportGLTF(f)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "Cannot export %s", m.Name)
		}
	}
	return nil
}

func main() {
	var wads wadList
	var configPath, dir, maps, sky, addr, gltfDir, catPath string
	var skill int
	var dump bool
	flag.StringVar(&configPath, "config", "doom_map_browser.yaml", "Path to yaml config")
	flag.Var(&wads, "wad", "Path to wad, repeat to layer gwa or pwads on top")
	flag.StringVar(&dir, "dir", "", "Path to unpacked lumps")
	flag.StringVar(&maps, "map", "", "Comma separated levels to load, all by default")
	flag.StringVar(&sky, "sky", "", "Sky texture override")
	flag.StringVar(&addr, "i", "", "Address of server, overrides config")
	flag.StringVar(&catPath, "catalogue", "", "Path to thing catalogue yaml")
	flag.IntVar(&skill, "skill", 0, "Skill override 1..5")
	flag.BoolVar(&dump, "dump", false, "Dump loaded levels to stdout and exit")
	flag.StringVar(&gltfDir, "gltf", "", "Export loaded levels as glb into directory and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if len(wads) != 0 {
		cfg.Wads = wads
	}
	if dir != "" {
		cfg.Directory = dir
	}
	if maps != "" {
		cfg.Maps = strings.Split(maps, ",")
	}
	if sky != "" {
		cfg.Sky = sky
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if catPath != "" {
		cfg.Catalogue = catPath
	}
	if skill != 0 {
		cfg.Skill = catalogue.Skill(skill)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	source, closeSource, err := openSource(cfg)
	if err != nil {
		flag.PrintDefaults()
		logger.Fatal("no data source", zap.Error(err))
	}
	defer closeSource()

	r := loader.New(source, logger)
	templates, err := catalogue.Load(cfg.Catalogue)
	if err != nil {
		logger.Fatal("catalogue", zap.Error(err))
	}
	cat := catalogue.Insert(r, templates)

	names := cfg.Maps
	if len(names) == 0 {
		names = loader.Levels(source)
	}
	hub := status.NewHub(logger)

	switch {
	case dump:
		for _, h := range loadAll(r, names, cfg.Sky, hub, logger) {
			m, _ := assets.Get(r, h)
			utils.Dump(m)
		}
	case gltfDir != "":
		if err := exportGLTF(r, loadAll(r, names, cfg.Sky, hub, logger), gltfDir); err != nil {
			logger.Fatal("gltf export", zap.Error(err))
		}
	default:
		// requested levels are built up front, the rest on first request
		if len(cfg.Maps) != 0 {
			loadAll(r, names, cfg.Sky, hub, logger)
		}
		srv := web.NewServer(r, cat, cfg.Sky, cfg.Skill, hub, logger)
		if err := srv.Start(cfg.Server.Addr); err != nil {
			logger.Fatal("server", zap.Error(err))
		}
	}
}
