package bootmeta

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformMux(t *testing.T) {
	p := plainProvider{}
	fn := func(_ context.Context) (Provider, error) { return p, nil }
	plat := PlatformFunc(fn, "foo", "bar")
	plat2 := PlatformFunc(fn, "baz", "qux")

	m := NewMux()

	_, err := m.Lookup(t.Context(), "foo")
	require.Error(t, err)

	m.Add(plat)
	m.Add(plat2)

	actual, err := m.Lookup(t.Context(), "foo")
	require.NoError(t, err)
	assert.Equal(t, p, actual)

	actual, err = m.Lookup(t.Context(), "QUX")
	require.NoError(t, err)
	assert.Equal(t, p, actual)

	_, err = m.Lookup(t.Context(), "azure")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bar, baz, foo, qux")

	assert.Equal(t, []string{"bar", "baz", "foo", "qux"}, m.Names())

	// constructor errors are passed through
	m.Add(PlatformFunc(func(context.Context) (Provider, error) {
		return nil, errors.New("broken")
	}, "foo"))

	_, err = m.Lookup(t.Context(), "foo")
	require.EqualError(t, err, "broken")
}
