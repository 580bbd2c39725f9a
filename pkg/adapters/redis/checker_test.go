package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/formtree/pkg/adapters/redis"
	"github.com/aretw0/formtree/pkg/definition"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/registry"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Checker) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, redis.NewFromClient(client, redis.WithPrefix("test:"), redis.WithTimeout(time.Second))
}

func settle(t *testing.T, c form.Control) form.Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	status, err := form.Settle(ctx, c)
	require.NoError(t, err)
	return status
}

func errorsOf(c form.Control) form.ValidationErrors {
	var errs form.ValidationErrors
	c.Zone().Do(func() { errs = c.Errors() })
	return errs
}

func TestUnique(t *testing.T) {
	mr, checker := setup(t)
	ctx := context.Background()
	require.NoError(t, checker.Claim(ctx, "handles", "ada", "grace"))
	assert.True(t, mr.Exists("test:handles"))

	handle := form.NewField("lin", form.WithZone(form.NewZone()),
		form.WithAsyncValidators(checker.Unique("handles")), form.WithDebounce(0))
	assert.Equal(t, form.Valid, settle(t, handle))

	require.NoError(t, handle.SetValue("ada"))
	assert.Equal(t, form.Invalid, settle(t, handle))
	assert.Equal(t, "ada", errorsOf(handle)[redis.CodeTaken])

	require.NoError(t, checker.Release(ctx, "handles", "ada"))
	handle.UpdateValueAndValidity()
	assert.Equal(t, form.Valid, settle(t, handle))
}

func TestUnique_SkipsEmpty(t *testing.T) {
	mr, checker := setup(t)
	mr.Close() // any round trip would now fail

	handle := form.NewField(nil, form.WithZone(form.NewZone()),
		form.WithAsyncValidators(checker.Unique("handles")), form.WithDebounce(0))
	assert.Equal(t, form.Valid, settle(t, handle))

	require.NoError(t, handle.SetValue("   "))
	assert.Equal(t, form.Valid, settle(t, handle))
}

func TestUnique_BackendFailure(t *testing.T) {
	mr, checker := setup(t)
	handle := form.NewField("ada", form.WithZone(form.NewZone()),
		form.WithAsyncValidators(checker.Unique("handles")), form.WithDebounce(0))
	settle(t, handle)

	mr.Close()
	handle.UpdateValueAndValidity()
	assert.Equal(t, form.Invalid, settle(t, handle))
	assert.True(t, errorsOf(handle).Has(form.CodeAsyncFailure))
}

func TestMember(t *testing.T) {
	_, checker := setup(t)
	ctx := context.Background()
	require.NoError(t, checker.Claim(ctx, "countries", "PT", "BR"))

	country := form.NewField("PT", form.WithZone(form.NewZone()),
		form.WithAsyncValidators(checker.Member("countries")), form.WithDebounce(0))
	assert.Equal(t, form.Valid, settle(t, country))

	require.NoError(t, country.SetValue("XX"))
	assert.Equal(t, form.Invalid, settle(t, country))
	assert.Equal(t, "XX", errorsOf(country)[redis.CodeNotMember])

	members, err := checker.Members(ctx, "countries")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"PT", "BR"}, members)
}

func TestReserve(t *testing.T) {
	mr, checker := setup(t)
	ctx := context.Background()

	release, err := checker.Reserve(ctx, "handles", "ada", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:handles:reserved:ada"))

	_, err = checker.Reserve(ctx, "handles", "ada", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrReserved)

	handle := form.NewField("ada", form.WithZone(form.NewZone()),
		form.WithAsyncValidators(checker.Unique("handles")), form.WithDebounce(0))
	assert.Equal(t, form.Invalid, settle(t, handle), "reserved values are taken")

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("test:handles:reserved:ada"))

	handle.UpdateValueAndValidity()
	assert.Equal(t, form.Valid, settle(t, handle))
}

func TestReserve_Expires(t *testing.T) {
	mr, checker := setup(t)
	ctx := context.Background()

	release, err := checker.Reserve(ctx, "handles", "ada", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists("test:handles:reserved:ada"))

	// Someone else reserves after expiry; the stale release must not drop it.
	_, err = checker.Reserve(ctx, "handles", "ada", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
	assert.True(t, mr.Exists("test:handles:reserved:ada"))
}

func TestRegister(t *testing.T) {
	_, checker := setup(t)
	require.NoError(t, checker.Claim(context.Background(), "emails", "ada@example.com"))

	reg := registry.Builtin()
	checker.Register(reg)

	_, asyncNames := reg.Names()
	assert.Contains(t, asyncNames, "unique")
	assert.Contains(t, asyncNames, "member")

	_, err := reg.AsyncValidator("unique", nil)
	assert.Error(t, err, "set is required")

	def, err := definition.Parse([]byte(`
controls:
  email:
    value: ada@example.com
    debounce: 0s
    async:
      - name: unique
        args: {set: emails}
`), definition.FormatYAML)
	require.NoError(t, err)

	root, err := definition.NewBuilder(reg).Build(def)
	require.NoError(t, err)
	assert.Equal(t, form.Invalid, settle(t, root))
	assert.True(t, root.HasError(redis.CodeTaken, "email"))
}
