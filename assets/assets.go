package assets

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/mogaika/doom_map_browser/vfs"
)

type unbuilt[A any] struct {
	handle Handle[A]
	data   any
	err    error
	name   string
}

type storage[A any] struct {
	kind             string
	intermediateType reflect.Type
	importer         func(name string, source vfs.DataSource) (any, error)

	assets   map[uint64]A
	handles  []Handle[A]
	names    map[string]WeakHandle[A]
	unbuilt  []unbuilt[A]
	failed   map[uint64]error
	draining bool
}

// Registry holds one table per asset type.
// It is not safe for concurrent use, callers serialize access to it.
type Registry struct {
	source   vfs.DataSource
	storages map[reflect.Type]any
	lastId   uint64
	log      *zap.Logger
}

func NewRegistry(source vfs.DataSource, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		source:   source,
		storages: make(map[reflect.Type]any),
		log:      log.Named("assets"),
	}
}

func (r *Registry) Source() vfs.DataSource { return r.source }
func (r *Registry) Logger() *zap.Logger    { return r.log }

// Ids are never reused, registry lives for one level load
func (r *Registry) allocate() uint64 {
	r.lastId++
	return r.lastId
}

// AddStorage registers table for asset type A with intermediate type I.
// importer can be nil for types that are only inserted directly.
func AddStorage[A, I any](r *Registry, kind string, importer func(name string, source vfs.DataSource) (I, error)) {
	s := &storage[A]{
		kind:             kind,
		intermediateType: reflect.TypeOf((*I)(nil)).Elem(),
		assets:           make(map[uint64]A),
		names:            make(map[string]WeakHandle[A]),
		failed:           make(map[uint64]error),
	}
	if importer != nil {
		s.importer = func(name string, source vfs.DataSource) (any, error) {
			return importer(name, source)
		}
	}
	r.storages[typeOf[A]()] = s
}

func HasStorage[A any](r *Registry) bool {
	_, ok := r.storages[typeOf[A]()]
	return ok
}

func typeOf[A any]() reflect.Type {
	return reflect.TypeOf((*A)(nil)).Elem()
}

func getStorage[A any](r *Registry) *storage[A] {
	t := typeOf[A]()
	s, ok := r.storages[t]
	if !ok {
		panic(fmt.Sprintf("assets: unknown asset type %v", t))
	}
	return s.(*storage[A])
}

// lookup upgrades name to a new strong handle
func (s *storage[A]) lookup(name string) (Handle[A], bool) {
	if weak, ok := s.names[name]; ok {
		return weak.Upgrade()
	}
	return Handle[A]{}, false
}

// Load returns handle of asset name, importing it if there is no live entry.
// Import errors are kept until BuildWaiting.
// Returned handle is owned by caller.
func Load[A any](r *Registry, name string) Handle[A] {
	s := getStorage[A](r)
	if h, ok := s.lookup(name); ok {
		return h
	}
	if s.importer == nil {
		panic(fmt.Sprintf("assets: %s can not be loaded, only inserted", s.kind))
	}

	h := newHandle[A](r.allocate())
	// registered before import so repeated loads end up with the same handle
	s.names[name] = h.Downgrade()
	data, err := s.importer(name, r.source)
	s.unbuilt = append(s.unbuilt, unbuilt[A]{handle: h.Clone(), data: data, err: err, name: name})
	return h
}

// Insert adds already built asset without name
func Insert[A any](r *Registry, asset A) Handle[A] {
	s := getStorage[A](r)
	h := newHandle[A](r.allocate())
	s.assets[h.ID()] = asset
	s.handles = append(s.handles, h.Clone())
	return h
}

// InsertWithName replaces asset in place when name is known,
// so handle stays the same for all holders
func InsertWithName[A any](r *Registry, name string, asset A) Handle[A] {
	s := getStorage[A](r)
	if h, ok := s.lookup(name); ok {
		if _, built := s.assets[h.ID()]; !built {
			s.handles = append(s.handles, h.Clone())
		}
		delete(s.failed, h.ID())
		s.assets[h.ID()] = asset
		return h
	}

	h := newHandle[A](r.allocate())
	s.assets[h.ID()] = asset
	s.handles = append(s.handles, h.Clone())
	s.names[name] = h.Downgrade()
	return h
}

// BuildWaiting builds every queued asset of type A.
// Build function gets the whole registry, so it may load and build other assets.
// Failed entries are logged and dropped, their handles stay unresolved.
// Loads of type A made from inside build are queued for the next call,
// building type A recursively from its own build panics.
func BuildWaiting[A, I any](r *Registry, build func(intermediate I, r *Registry) (A, error)) {
	s := getStorage[A](r)
	if t := typeOf[I](); t != s.intermediateType {
		panic(fmt.Sprintf("assets: %s intermediate is %v, not %v", s.kind, s.intermediateType, t))
	}
	if s.draining {
		panic(fmt.Sprintf("assets: recursive build of %s", s.kind))
	}

	queue := s.unbuilt
	s.unbuilt = nil
	s.draining = true
	defer func() { s.draining = false }()

	for _, entry := range queue {
		asset, err := buildOne(entry, r, build)
		if err != nil {
			r.log.Error("asset could not be loaded",
				zap.String("type", s.kind), zap.String("name", entry.name), zap.Error(err))
			s.failed[entry.handle.ID()] = err
			entry.handle.Release()
			continue
		}
		r.log.Debug("asset loaded", zap.String("type", s.kind), zap.String("name", entry.name))

		if _, inserted := s.assets[entry.handle.ID()]; inserted {
			// InsertWithName got there first, keep single list entry
			entry.handle.Release()
		} else {
			s.handles = append(s.handles, entry.handle)
		}
		s.assets[entry.handle.ID()] = asset
	}
}

func buildOne[A, I any](entry unbuilt[A], r *Registry, build func(I, *Registry) (A, error)) (A, error) {
	if entry.err != nil {
		var zero A
		return zero, entry.err
	}
	return build(entry.data.(I), r)
}

// Pending returns amount of entries waiting for BuildWaiting
func Pending[A any](r *Registry) int {
	return len(getStorage[A](r).unbuilt)
}

// Err returns error that failed the build of handle entry
func Err[A any](r *Registry, h Handle[A]) error {
	return getStorage[A](r).failed[h.ID()]
}

func Get[A any](r *Registry, h Handle[A]) (A, bool) {
	a, ok := getStorage[A](r).assets[h.ID()]
	return a, ok
}

func GetByName[A any](r *Registry, name string) (A, bool) {
	s := getStorage[A](r)
	if weak, ok := s.names[name]; ok && weak.Alive() {
		a, ok := s.assets[weak.ref.id]
		return a, ok
	}
	var zero A
	return zero, false
}

// HandleFor returns new strong handle for named entry
func HandleFor[A any](r *Registry, name string) (Handle[A], bool) {
	return getStorage[A](r).lookup(name)
}

// Iter calls fn for built assets in insertion order until fn returns false
func Iter[A any](r *Registry, fn func(h Handle[A], asset A) bool) {
	s := getStorage[A](r)
	for _, h := range s.handles {
		if !fn(h, s.assets[h.ID()]) {
			return
		}
	}
}

// Len returns amount of built assets of type A
func Len[A any](r *Registry) int {
	return len(getStorage[A](r).handles)
}
