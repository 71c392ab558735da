package cellgraph

import (
	"sync"
	"sync/atomic"
)

// Evaluate is the C6 synchronizer: it demands every cell in cells, blocks
// until each has reached a terminal status (UpToDate, Oblivious, or Error),
// and returns their snapshot values in argument order. A cell already
// terminal at the time of the call is not waited on. Evaluate never
// re-throws a Faulted result; callers inspect each Outcome themselves.
func Evaluate(cells ...*Cell) []Outcome {
	if len(cells) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var removers []func()

	for _, c := range cells {
		if c.Status().terminal() {
			continue
		}
		wg.Add(1)

		var fired atomic.Bool
		done := func() {
			if fired.CompareAndSwap(false, true) {
				wg.Done()
			}
		}
		removers = append(removers, c.termWatchers.add(done))

		// The cell may have completed its transition and fired the watcher
		// list between the Status check above and the registration just
		// above (§4.7's "atomically install" requirement): if so, this
		// catches it instead of waiting forever. fired's CAS makes the race
		// between this and the registered callback itself firing benign.
		if c.Status().terminal() {
			done()
		}
	}

	Update(cells...)
	wg.Wait()

	for _, remove := range removers {
		remove()
	}

	results := make([]Outcome, len(cells))
	for i, c := range cells {
		results[i] = c.Value()
	}
	return results
}
