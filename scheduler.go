package cellgraph

import (
	concert "github.com/elastic/go-concert"
	"github.com/elastic/go-concert/unison"
)

// scheduler is the C3 binding between the message protocol and goroutines:
// it runs each cell's mailbox drain on its own goroutine, bounded by a
// semaphore so a graph with many cells doesn't spawn unbounded concurrent
// work, while distinct cells still make progress in parallel (no global
// lock is ever held across cells).
type scheduler struct {
	sem *concert.Semaphore
	wg  unison.SafeWaitGroup
}

func newScheduler(maxConcurrent int) *scheduler {
	if maxConcurrent <= 0 {
		maxConcurrent = 64
	}
	return &scheduler{sem: concert.NewSemaphore(maxConcurrent)}
}

// submit schedules a drain of c's mailbox. Safe to call whether or not a
// drain is already running; mailbox.enqueue's active flag is what actually
// gates whether a new goroutine is needed.
func (s *scheduler) submit(rt *Runtime, c *Cell) {
	if err := s.wg.Add(1); err != nil {
		// Runtime is shutting down; drop the work rather than block forever.
		return
	}
	go func() {
		defer s.wg.Done()
		s.sem.Acquire()
		defer s.sem.Release()
		drain(rt, c)
	}()
}

// drain repeatedly pops and handles messages from c's mailbox until it is
// empty, at which point mailbox.pop clears the active flag and this
// goroutine exits. Any later enqueue racing with that exit will itself
// observe active==false and schedule a fresh drain, so no message is ever
// stranded.
func drain(rt *Runtime, c *Cell) {
	for {
		msg, ok := c.mbox.pop()
		if !ok {
			return
		}
		handle(rt, c, msg)
	}
}

// dispatch enqueues msg on target's mailbox and schedules a drain if one
// isn't already running.
func (rt *Runtime) dispatch(target *Cell, msg message) {
	if target.mbox.enqueue(msg) {
		rt.scheduler.submit(rt, target)
	}
}

// shutdown waits for all in-flight drains to complete. No new submissions
// are accepted afterward.
func (s *scheduler) shutdown() {
	s.wg.Wait()
}
