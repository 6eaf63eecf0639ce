package assets_test

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mogaika/doom_map_browser/assets"
	"github.com/mogaika/doom_map_browser/vfs"
)

type text struct {
	Value string
}

type template struct {
	Name string
}

func importText(name string, source vfs.DataSource) (string, error) {
	data, err := source.Load(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func buildText(s string, r *assets.Registry) (*text, error) {
	if strings.HasPrefix(s, "bad") {
		return nil, errors.Errorf("bad text %q", s)
	}
	return &text{Value: s}, nil
}

func newRegistry(t *testing.T) (*assets.Registry, *observer.ObservedLogs) {
	t.Helper()
	src := vfs.NewMemorySource().
		Add("A", []byte("alpha")).
		Add("B", []byte("beta")).
		Add("BAD", []byte("bad data"))

	core, logs := observer.New(zap.DebugLevel)
	r := assets.NewRegistry(src, zap.New(core))
	assets.AddStorage[*text, string](r, "Text", importText)
	assets.AddStorage[*template, any](r, "Template", nil)
	return r, logs
}

func TestLoadTwiceBeforeBuildQueuesOnce(t *testing.T) {
	r, _ := newRegistry(t)

	h1 := assets.Load[*text](r, "A")
	h2 := assets.Load[*text](r, "A")

	assert.Equal(t, h1, h2)
	assert.Equal(t, h1.ID(), h2.ID())
	assert.Equal(t, 1, assets.Pending[*text](r))

	_, ok := assets.Get(r, h1)
	assert.False(t, ok, "asset must not be available before build")

	assets.BuildWaiting(r, buildText)

	assert.Equal(t, 0, assets.Pending[*text](r))
	v, ok := assets.Get(r, h1)
	require.True(t, ok)
	assert.Equal(t, "alpha", v.Value)

	byName, ok := assets.GetByName[*text](r, "A")
	require.True(t, ok)
	assert.Same(t, v, byName)
}

func TestInsertWithNameReplacesInPlace(t *testing.T) {
	r, _ := newRegistry(t)

	h1 := assets.InsertWithName(r, "foo", &template{Name: "v1"})
	h2 := assets.InsertWithName(r, "foo", &template{Name: "v2"})

	assert.Equal(t, h1, h2)
	v, ok := assets.GetByName[*template](r, "foo")
	require.True(t, ok)
	assert.Equal(t, "v2", v.Name)
	assert.Equal(t, 1, assets.Len[*template](r))
}

func TestInsertSharesHandleSpaceWithLoad(t *testing.T) {
	r, _ := newRegistry(t)

	loaded := assets.Load[*text](r, "A")
	inserted := assets.Insert(r, &text{Value: "synthetic"})
	assert.NotEqual(t, loaded.ID(), inserted.ID())

	assets.BuildWaiting(r, buildText)

	var values []string
	assets.Iter(r, func(h assets.Handle[*text], v *text) bool {
		values = append(values, v.Value)
		return true
	})
	assert.Equal(t, []string{"synthetic", "alpha"}, values)
}

func TestBuildFailureIsIsolated(t *testing.T) {
	r, logs := newRegistry(t)

	bad := assets.Load[*text](r, "BAD")
	missing := assets.Load[*text](r, "NOPE")
	good := assets.Load[*text](r, "B")

	assets.BuildWaiting(r, buildText)

	_, ok := assets.Get(r, bad)
	assert.False(t, ok)
	_, ok = assets.Get(r, missing)
	assert.False(t, ok)
	v, ok := assets.Get(r, good)
	require.True(t, ok)
	assert.Equal(t, "beta", v.Value)

	assert.EqualError(t, assets.Err(r, bad), `bad text "bad data"`)
	assert.True(t, errors.Is(assets.Err(r, missing), vfs.ErrNotFound))
	assert.NoError(t, assets.Err(r, good))

	assert.Equal(t, 2, logs.FilterMessage("asset could not be loaded").Len())
	assert.Equal(t, 1, logs.FilterMessage("asset loaded").Len())
	assert.Equal(t, 1, assets.Len[*text](r))

	// failed entry stays reserved while somebody holds it
	again := assets.Load[*text](r, "BAD")
	assert.Equal(t, bad.ID(), again.ID())
	assert.Equal(t, 0, assets.Pending[*text](r))
}

func TestWeakHandleExpires(t *testing.T) {
	r, _ := newRegistry(t)

	h := assets.Load[*text](r, "BAD")
	weak := h.Downgrade()
	assets.BuildWaiting(r, buildText)

	assert.True(t, weak.Alive())
	h.Release()
	assert.False(t, weak.Alive())
	_, ok := weak.Upgrade()
	assert.False(t, ok)

	_, ok = assets.HandleFor[*text](r, "BAD")
	assert.False(t, ok)

	// dead name gets new handle and new import
	retry := assets.Load[*text](r, "BAD")
	assert.NotEqual(t, h.ID(), retry.ID())
	assert.Equal(t, 1, assets.Pending[*text](r))
}

func TestBuiltAssetsStayAlive(t *testing.T) {
	r, _ := newRegistry(t)

	h := assets.Load[*text](r, "A")
	assets.BuildWaiting(r, buildText)
	h.Release()

	again, ok := assets.HandleFor[*text](r, "A")
	require.True(t, ok)
	assert.Equal(t, h.ID(), again.ID())
}

func TestHandleClone(t *testing.T) {
	r, _ := newRegistry(t)

	h := assets.Load[*text](r, "NOPE")
	c := h.Clone()
	assets.BuildWaiting(r, buildText)

	h.Release()
	assert.True(t, h.Downgrade().Alive())
	c.Release()
	assert.False(t, h.Downgrade().Alive())
	assert.Panics(t, func() { c.Release() })
}

func TestBuildMayLoadOtherTypesAndItself(t *testing.T) {
	r, _ := newRegistry(t)

	var nested assets.Handle[*text]
	assets.InsertWithName(r, "root", &template{Name: "root"})
	assets.Load[*text](r, "A")

	assets.BuildWaiting(r, func(s string, r *assets.Registry) (*text, error) {
		// same type: queued for the next round
		nested = assets.Load[*text](r, "B")
		tpl, ok := assets.GetByName[*template](r, "root")
		if !ok {
			return nil, errors.New("no template")
		}
		return &text{Value: tpl.Name + ":" + s}, nil
	})

	v, ok := assets.GetByName[*text](r, "A")
	require.True(t, ok)
	assert.Equal(t, "root:alpha", v.Value)
	assert.Equal(t, 1, assets.Pending[*text](r))

	assets.BuildWaiting(r, buildText)
	v, ok = assets.Get(r, nested)
	require.True(t, ok)
	assert.Equal(t, "beta", v.Value)
}

func TestRecursiveBuildOfSameTypePanics(t *testing.T) {
	r, _ := newRegistry(t)
	assets.Load[*text](r, "A")

	assert.Panics(t, func() {
		assets.BuildWaiting(r, func(s string, r *assets.Registry) (*text, error) {
			assets.BuildWaiting(r, buildText)
			return &text{Value: s}, nil
		})
	})
}

func TestUnknownTypePanics(t *testing.T) {
	r, _ := newRegistry(t)

	assert.Panics(t, func() { assets.Load[*int](r, "A") })
	assert.Panics(t, func() { assets.GetByName[*int](r, "A") })
	assert.Panics(t, func() { assets.Load[*template](r, "A") }, "insert-only type can not be loaded")

	_, ok := assets.GetByName[*text](r, "unknown")
	assert.False(t, ok, "missing entry is not an error")
}

func TestHandleJSON(t *testing.T) {
	r, _ := newRegistry(t)
	h := assets.Insert(r, &text{})

	data, err := h.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, h.String()[1:], string(data))

	data, err = assets.Handle[*text]{}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
