package form_test

import (
	"testing"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZone_RecomputeHookWalksUp(t *testing.T) {
	var paths []string
	z := form.NewZone(form.WithHooks(form.Hooks{
		OnRecompute: func(c form.Control, _ form.Status) { paths = append(paths, c.Path()) },
	}))
	name := form.NewField("ada", form.WithZone(z))
	inner := form.MustGroup(map[string]form.Control{"name": name}, form.WithZone(z))
	form.MustGroup(map[string]form.Control{"profile": inner}, form.WithZone(z))
	paths = nil

	require.NoError(t, name.SetValue("grace"))

	assert.Equal(t, []string{"profile.name", "profile", ""}, paths)
}

func TestZone_NotificationsKeepEmissionOrder(t *testing.T) {
	z := newZone()
	a := form.NewField(0, z)
	b := form.NewField(0, z)
	g := form.MustGroup(map[string]form.Control{"a": a, "b": b}, z)

	var order []string
	a.ValueChanges().Subscribe(func(v any) {
		order = append(order, "a")
		if v == 1 {
			require.NoError(t, b.SetValue(1))
		}
	})
	b.ValueChanges().Subscribe(func(any) { order = append(order, "b") })
	g.ValueChanges().Subscribe(func(any) { order = append(order, "g") })

	require.NoError(t, a.SetValue(1))

	assert.Equal(t, []string{"a", "g", "b", "g"}, order)
}

func TestZone_RecoversAfterSubscriberPanic(t *testing.T) {
	z := newZone()
	f := form.NewField(0, z)
	stop := f.ValueChanges().Subscribe(func(any) { panic("boom") })

	assert.Panics(t, func() { _ = f.SetValue(1) })
	stop()

	values := record(t, f.ValueChanges())
	require.NoError(t, f.SetValue(2))
	assert.Equal(t, []any{2}, values.values())
}

func TestDefaultZone(t *testing.T) {
	f := form.NewField(nil)
	assert.Same(t, form.DefaultZone(), f.Zone())
	assert.NotNil(t, form.DefaultZone().Logger())
}
