// FILE: lixenwraith/hparams/view_test.go
package hparams

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() *View {
	return Wrap(map[string]any{
		"lr":     0.01,
		"epochs": int64(10),
		"debug":  true,
		"name":   "mlp",
		"flags":  []any{int64(1), int64(2)},
		"optimizer": map[string]any{
			"name":  "adam",
			"beta1": 0.9,
			"schedule": map[string]any{
				"warmup": int64(5),
			},
		},
	})
}

// TestViewAccess tests that attribute and key access see the same mapping
func TestViewAccess(t *testing.T) {
	t.Run("GetMatchesLookup", func(t *testing.T) {
		v := sampleView()
		for _, key := range []string{"lr", "epochs", "debug", "name", "flags"} {
			attr, err := v.Get(key)
			require.NoError(t, err)
			raw, ok := v.Lookup(key)
			require.True(t, ok)
			assert.Equal(t, raw, attr, key)
		}
	})

	t.Run("SetVisibleThroughLookup", func(t *testing.T) {
		v := sampleView()
		v.Set("lr", 0.5)
		raw, ok := v.Lookup("lr")
		require.True(t, ok)
		assert.Equal(t, 0.5, raw)

		v.Set("momentum", 0.9)
		assert.True(t, v.Has("momentum"))
	})

	t.Run("MissingKey", func(t *testing.T) {
		v := sampleView()
		_, err := v.Get("momentum")
		assert.ErrorIs(t, err, ErrAttributeResolution)
		assert.Contains(t, err.Error(), "momentum")

		_, ok := v.Lookup("momentum")
		assert.False(t, ok)
		assert.Panics(t, func() { v.MustGet("momentum") })
	})

	t.Run("Delete", func(t *testing.T) {
		v := sampleView()
		require.NoError(t, v.Delete("name"))
		assert.False(t, v.Has("name"))
		assert.ErrorIs(t, v.Delete("name"), ErrAttributeResolution)
	})
}

// TestViewNesting tests lazy wrapping and identity of nested views
func TestViewNesting(t *testing.T) {
	t.Run("SameNestedView", func(t *testing.T) {
		v := sampleView()
		first, err := v.Sub("optimizer")
		require.NoError(t, err)
		second, err := v.Sub("optimizer")
		require.NoError(t, err)
		assert.Same(t, first, second)

		raw, _ := v.Lookup("optimizer")
		assert.Same(t, first, raw, "the wrapper is stored back in place")
	})

	t.Run("NestedMutationPersists", func(t *testing.T) {
		v := sampleView()
		opt, err := v.Sub("optimizer")
		require.NoError(t, err)
		opt.Set("name", "sgd")

		again, err := v.Sub("optimizer")
		require.NoError(t, err)
		name, err := again.Get("name")
		require.NoError(t, err)
		assert.Equal(t, "sgd", name)

		assert.Equal(t, "sgd", v.ToMap()["optimizer"].(map[string]any)["name"])
	})

	t.Run("SubOfScalar", func(t *testing.T) {
		v := sampleView()
		_, err := v.Sub("lr")
		assert.ErrorIs(t, err, ErrAttributeResolution)
	})

	t.Run("WrapIsIdempotent", func(t *testing.T) {
		v := sampleView()
		assert.Same(t, v, Wrap(v))
		assert.Equal(t, 0, Wrap(nil).Len())
		assert.Equal(t, 0, New().Len())
	})

	t.Run("WrapSharesMapping", func(t *testing.T) {
		m := map[string]any{"a": int64(1)}
		v := Wrap(m)
		v.Set("b", int64(2))
		assert.Equal(t, int64(2), m["b"])
	})
}

// TestViewPaths tests dot-path access and creation
func TestViewPaths(t *testing.T) {
	v := sampleView()

	warmup, err := v.GetPath("optimizer.schedule.warmup")
	require.NoError(t, err)
	assert.Equal(t, int64(5), warmup)

	_, err = v.GetPath("optimizer.missing.key")
	assert.ErrorIs(t, err, ErrAttributeResolution)

	_, err = v.GetPath("lr.value")
	assert.ErrorIs(t, err, ErrAttributeResolution)

	require.NoError(t, v.SetPath("data.train.batch_size", int64(64)))
	batch, err := v.GetPath("data.train.batch_size")
	require.NoError(t, err)
	assert.Equal(t, int64(64), batch)

	require.NoError(t, v.SetPath("optimizer.beta2", 0.999))
	beta2, err := v.GetPath("optimizer.beta2")
	require.NoError(t, err)
	assert.Equal(t, 0.999, beta2)

	assert.Error(t, v.SetPath("bad..path", 1))
	assert.Error(t, v.SetPath("bad key", 1))
}

// TestViewCopies tests ToMap, Clone, Flatten and Debug
func TestViewCopies(t *testing.T) {
	v := sampleView()
	_, err := v.Sub("optimizer") // force a cached wrapper
	require.NoError(t, err)

	m := v.ToMap()
	opt, ok := m["optimizer"].(map[string]any)
	require.True(t, ok, "nested views are unwrapped")
	assert.Equal(t, "adam", opt["name"])

	clone := v.Clone()
	clone.Set("lr", 1.0)
	cloneOpt, err := clone.Sub("optimizer")
	require.NoError(t, err)
	cloneOpt.Set("name", "sgd")

	lr, _ := v.Lookup("lr")
	assert.Equal(t, 0.01, lr)
	name, err := v.GetPath("optimizer.name")
	require.NoError(t, err)
	assert.Equal(t, "adam", name)

	flat := v.Flatten()
	assert.Equal(t, int64(5), flat["optimizer.schedule.warmup"])
	assert.Equal(t, "mlp", flat["name"])
	assert.NotContains(t, flat, "optimizer")

	assert.Equal(t, []string{"debug", "epochs", "flags", "lr", "name", "optimizer"}, v.Keys())

	debug := Wrap(map[string]any{"b": int64(2), "a": map[string]any{"c": "x"}}).Debug()
	assert.Equal(t, "a.c: x\nb: 2\n", debug)
}

// TestTypedAccessors tests conversion helpers over dot paths
func TestTypedAccessors(t *testing.T) {
	v := sampleView()
	v.Set("hex", "0x10")
	v.Set("text_float", "2.5")
	v.Set("names", []any{"a", int64(1)})
	v.Set("nothing", nil)

	s, err := v.String("optimizer.name")
	require.NoError(t, err)
	assert.Equal(t, "adam", s)

	s, err = v.String("lr")
	require.NoError(t, err)
	assert.Equal(t, "0.01", s)

	s, err = v.String("nothing")
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = v.String("optimizer")
	assert.Error(t, err)

	i, err := v.Int("epochs")
	require.NoError(t, err)
	assert.Equal(t, int64(10), i)

	i, err = v.Int("hex")
	require.NoError(t, err)
	assert.Equal(t, int64(16), i)

	i, err = v.Int("optimizer.beta1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), i)

	_, err = v.Int("name")
	assert.Error(t, err)

	f, err := v.Float("epochs")
	require.NoError(t, err)
	assert.Equal(t, 10.0, f)

	f, err = v.Float("text_float")
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	b, err := v.Bool("debug")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = v.Bool("name")
	assert.Error(t, err)

	ints, err := v.Ints("flags")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ints)

	floats, err := v.Floats("flags")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, floats)

	strs, err := v.Strings("names")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "1"}, strs)

	_, err = v.Ints("lr")
	assert.Error(t, err)

	_, err = v.Float("missing")
	assert.ErrorIs(t, err, ErrAttributeResolution)
}

// TestViewConcurrency tests concurrent reads and writes on one view
func TestViewConcurrency(t *testing.T) {
	v := sampleView()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = v.Sub("optimizer")
				v.Set("counter", int64(n))
				_, _ = v.Get("lr")
				_ = v.ToMap()
			}
		}(i)
	}
	wg.Wait()

	first, err := v.Sub("optimizer")
	require.NoError(t, err)
	second, err := v.Sub("optimizer")
	require.NoError(t, err)
	assert.Same(t, first, second)
}
