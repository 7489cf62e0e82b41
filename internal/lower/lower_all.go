package lower

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
	"github.com/yrnehli/hashc-sub000/internal/tir"
)

// LowerAll lowers every fn in fns independently over a bounded pool of
// worker goroutines. Each FnDef only ever touches its own Lowerer and
// produces its own *ir.Body, so distinct bodies share no mutable state;
// the only shared inputs, ctx, lc, and store, are read-only once the term
// store has been built (spec.md §4.E/§5). Results are returned in the
// same order as fns, regardless of completion order.
//
// workers bounds concurrency; a value <= 0 defaults to runtime.GOMAXPROCS(0).
func LowerAll(ctx *ir.Ctx, lc *layout.Ctx, store *tir.Store, fns []tir.FnDef, workers int) ([]*ir.Body, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	bodies := make([]*ir.Body, len(fns))
	errs := make([]error, len(fns))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, fn := range fns {
		i, fn := i, fn
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			bodies[i], errs[i] = LowerFn(ctx, lc, store, fn)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("lower: %q (index %d): %w", fns[i].Name, i, err)
		}
	}
	return bodies, nil
}
