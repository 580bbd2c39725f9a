package form_test

import (
	"testing"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewField_InitialState(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		opts   []form.Option
		status form.Status
	}{
		{name: "no validators", value: "x", status: form.Valid},
		{name: "required empty", value: "", opts: []form.Option{form.WithValidators(required)}, status: form.Invalid},
		{name: "required set", value: "ada", opts: []form.Option{form.WithValidators(required)}, status: form.Valid},
		{name: "disabled skips validation", value: "", opts: []form.Option{form.WithValidators(required), form.WithDisabled(true)}, status: form.Disabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := form.NewField(tt.value, append(tt.opts, newZone())...)
			assert.Equal(t, tt.status, f.Status())
			assert.Equal(t, tt.value, f.Value())
			assert.True(t, f.Pristine())
			assert.True(t, f.Untouched())
			if tt.status == form.Disabled {
				assert.Empty(t, f.Errors())
			}
		})
	}
}

func TestField_SetValue(t *testing.T) {
	f := form.NewField("a", form.WithValidators(required), newZone())
	values := record(t, f.ValueChanges())
	statuses := record(t, f.StatusChanges())

	require.NoError(t, f.SetValue(""))
	assert.Equal(t, "", f.Value())
	assert.True(t, f.Invalid())
	assert.True(t, f.HasError("required"))
	assert.True(t, f.Pristine(), "programmatic writes do not mark dirty")

	assert.Equal(t, []any{""}, values.values())
	assert.Equal(t, []form.Status{form.Invalid}, statuses.values())
}

func TestField_SetValueDeduplicates(t *testing.T) {
	f := form.NewField([]string{"a", "b"}, newZone())
	values := record(t, f.ValueChanges())

	require.NoError(t, f.SetValue([]string{"a", "b"}))
	require.NoError(t, f.SetValue(f.Value()))
	assert.Zero(t, values.len())

	require.NoError(t, f.SetValue([]string{"a"}))
	assert.Equal(t, 1, values.len())
}

func TestField_SilentAndOnlySelf(t *testing.T) {
	f := form.NewField("a", newZone())
	values := record(t, f.ValueChanges())

	require.NoError(t, f.SetValue("b", form.Silent()))
	assert.Equal(t, "b", f.Value())
	assert.Zero(t, values.len())

	require.NoError(t, f.SetValue("c", form.OnlySelf()))
	assert.Equal(t, 1, values.len())
}

func TestField_ValidatorsLastWriteWins(t *testing.T) {
	first := func(form.Control) form.ValidationErrors { return form.ValidationErrors{"code": 1, "first": true} }
	second := func(form.Control) form.ValidationErrors { return form.ValidationErrors{"code": 2} }

	f := form.NewField("x", form.WithValidators(first, second), newZone())

	assert.Equal(t, form.ValidationErrors{"code": 2, "first": true}, f.Errors())

	f.SetValidators(second, first)
	assert.Equal(t, form.ValidationErrors{"code": 1, "first": true}, f.Errors())

	f.ClearValidators()
	assert.Empty(t, f.Errors())
	assert.True(t, f.Valid())

	f.AddValidators(required, minLen(3))
	v, err := f.GetError("minlength")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"required": 3, "actual": 1}, v)
}

func TestField_DisableAndEnable(t *testing.T) {
	f := form.NewField("", form.WithValidators(required), newZone())
	require.True(t, f.Invalid())

	f.MarkAsDisabled()
	assert.True(t, f.Disabled())
	assert.False(t, f.Enabled())
	assert.Empty(t, f.Errors())

	f.MarkAsEnabled()
	assert.True(t, f.Invalid(), "enabling revalidates")
	assert.True(t, f.HasError("required"))
}

func TestField_SetErrorsAndRemoveError(t *testing.T) {
	f := form.NewField("ada", newZone())
	statuses := record(t, f.StatusChanges())
	values := record(t, f.ValueChanges())

	f.SetErrors(form.ValidationErrors{"taken": true, "server": "boom"})
	assert.True(t, f.Invalid())
	assert.True(t, f.Pristine())
	assert.Zero(t, values.len(), "SetErrors does not touch the value")

	f.RemoveError("server")
	assert.True(t, f.Invalid())
	assert.Equal(t, form.ValidationErrors{"taken": true}, f.Errors())

	f.RemoveError("missing")
	f.RemoveError("taken")
	assert.True(t, f.Valid())
	assert.Nil(t, f.Errors())

	assert.Equal(t, []form.Status{form.Invalid, form.Invalid, form.Valid}, statuses.values())
}

func TestField_ErrorsAreCopies(t *testing.T) {
	f := form.NewField("", form.WithValidators(required), newZone())

	errs := f.Errors()
	delete(errs, "required")

	assert.True(t, f.HasError("required"))
}

func TestField_Reset(t *testing.T) {
	t.Run("nullable", func(t *testing.T) {
		f := form.NewField("init", newZone())
		f.MarkAsDirty()
		f.MarkAsTouched()
		require.NoError(t, f.SetValue("changed"))

		require.NoError(t, f.Reset(nil))
		assert.Nil(t, f.Value())
		assert.True(t, f.Pristine())
		assert.True(t, f.Untouched())
	})

	t.Run("non-nullable", func(t *testing.T) {
		f := form.NewField("init", form.WithNonNullable(), newZone())
		require.NoError(t, f.SetValue("changed"))

		require.NoError(t, f.Reset(nil))
		assert.Equal(t, "init", f.Value())

		require.NoError(t, f.Reset("other"))
		assert.Equal(t, "other", f.Value())
	})
}

func TestField_FocusAndBlur(t *testing.T) {
	f := form.NewField("", newZone())
	focus := record(t, f.FocusChanges())
	touch := record(t, f.TouchChanges())

	f.Focus()
	f.Focus()
	assert.True(t, f.Focused())
	assert.True(t, f.Untouched())

	f.Blur()
	assert.False(t, f.Focused())
	assert.True(t, f.Touched())

	assert.Equal(t, []bool{true, false}, focus.values())
	assert.Equal(t, []bool{true}, touch.values())
}

func TestField_TouchedEmitsOnEveryCall(t *testing.T) {
	f := form.NewField("", newZone())
	touch := record(t, f.TouchChanges())

	f.MarkAsTouched()
	f.MarkAsTouched()
	f.MarkAsTouched(form.Silent())

	assert.Equal(t, []bool{true, true}, touch.values())
}

func TestField_Dispose(t *testing.T) {
	f := form.NewField("a", newZone())
	values, cancel := f.ValueChanges().Chan(1)
	defer cancel()

	f.Dispose()
	f.Dispose()

	assert.True(t, f.Disposed())
	assert.True(t, f.ValueChanges().Closed())
	assert.True(t, f.FocusChanges().Closed())
	_, open := <-values
	assert.False(t, open)

	assert.ErrorIs(t, f.SetValue("b"), form.ErrDisposed)
	assert.ErrorIs(t, f.Reset(nil), form.ErrDisposed)
	f.MarkAsTouched()
	assert.False(t, f.Touched())
	assert.Equal(t, "a", f.Value())
}

func TestField_RootAndPath(t *testing.T) {
	f := form.NewField(nil, newZone())

	assert.Nil(t, f.Parent())
	assert.Equal(t, f, f.Root())
	assert.Equal(t, "", f.Path())
}
