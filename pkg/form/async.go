package form

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// asyncRun is a node's single debounced, cancellable validation slot.
// gen is bumped on every cancellation so that a superseded timer or
// completion can recognise itself as stale.
type asyncRun struct {
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

func (a *asyncRun) active() bool {
	return a.timer != nil || a.cancel != nil
}

// cancelAsync abandons the pending timer and the in-flight run, if any.
func (n *node) cancelAsync() {
	n.async.gen++
	if !n.async.active() {
		return
	}
	if n.async.timer != nil {
		n.async.timer.Stop()
		n.async.timer = nil
	}
	if n.async.cancel != nil {
		n.async.cancel()
		n.async.cancel = nil
	}
	n.zone.asyncAbandoned(n.self)
	n.zone.logger.Debug("async validation abandoned", "path", n.Path())
}

// scheduleAsync arms the debounce timer and marks the node Pending.
// The result is announced unless the mutation was explicitly silent.
func (n *node) scheduleAsync(cfg updateConfig) {
	n.cancelAsync()
	gen := n.async.gen
	validators := slices.Clone(n.asyncValidators)
	silent := cfg.silent && !cfg.initial
	n.status = Pending
	n.async.timer = time.AfterFunc(n.debounce, func() {
		n.zone.Do(func() { n.startAsync(gen, validators, silent) })
	})
}

func (n *node) startAsync(gen uint64, validators []AsyncValidator, silent bool) {
	if n.disposed || gen != n.async.gen {
		return
	}
	n.async.timer = nil

	ctx, cancel := context.WithCancel(context.Background())
	n.async.cancel = cancel

	futures := make([]<-chan ValidationErrors, len(validators))
	for i, v := range validators {
		futures[i] = v(ctx, n.self)
	}
	n.zone.asyncStarted(n.self)
	started := time.Now()

	go func() {
		results, err := awaitAll(ctx, futures)
		n.zone.Do(func() {
			if err != nil || n.disposed || gen != n.async.gen {
				return
			}
			n.async.cancel = nil
			cancel()

			var merged ValidationErrors
			for _, r := range results {
				merged = mergeErrors(merged, r)
			}
			elapsed := time.Since(started)
			n.zone.asyncApplied(n.self, merged, elapsed)
			n.zone.logger.Debug("async validation applied",
				"path", n.Path(),
				"errors", len(merged),
				"elapsed", elapsed,
			)
			n.setErrors(merged, updateConfig{silent: silent})
		})
	}()
}

// awaitAll waits for every future, in parallel, keeping results in list order.
func awaitAll(ctx context.Context, futures []<-chan ValidationErrors) ([]ValidationErrors, error) {
	results := make([]ValidationErrors, len(futures))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		if f == nil {
			continue
		}
		g.Go(func() error {
			select {
			case errs := <-f:
				results[i] = errs
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
