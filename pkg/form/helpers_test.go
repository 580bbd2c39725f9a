package form_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/formtree/pkg/broadcast"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/stretchr/testify/require"
)

// recorder collects stream emissions; deliveries may come from timer goroutines.
type recorder[T any] struct {
	mu  sync.Mutex
	got []T
}

func record[T any](t *testing.T, s *broadcast.Stream[T]) *recorder[T] {
	t.Helper()
	r := &recorder[T]{}
	stop := s.Subscribe(func(v T) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.got = append(r.got, v)
	})
	t.Cleanup(stop)
	return r
}

func (r *recorder[T]) values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.got))
	copy(out, r.got)
	return out
}

func (r *recorder[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func required(c form.Control) form.ValidationErrors {
	if c.Value() == nil || c.Value() == "" {
		return form.ValidationErrors{"required": true}
	}
	return nil
}

func minLen(n int) form.Validator {
	return func(c form.Control) form.ValidationErrors {
		s, _ := c.Value().(string)
		if len(s) < n {
			return form.ValidationErrors{"minlength": map[string]int{"required": n, "actual": len(s)}}
		}
		return nil
	}
}

// settle waits for async validation to finish.
func settle(t *testing.T, c form.Control) form.Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	status, err := form.Settle(ctx, c)
	require.NoError(t, err)
	return status
}

// newZone isolates a test from the process-wide default zone.
func newZone() form.Option {
	return form.WithZone(form.NewZone())
}
