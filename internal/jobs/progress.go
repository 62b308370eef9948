package jobs

import (
	"sync"
	"time"
)

// ticker calls fn every interval until stopped. Stop blocks until the
// goroutine has exited, so fn never runs after Stop returns.
type ticker struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func startTicker(every time.Duration, fn func()) *ticker {
	t := &ticker{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(t.done)
		tk := time.NewTicker(every)
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				fn()
			}
		}
	}()
	return t
}

func (t *ticker) Stop() {
	t.once.Do(func() { close(t.stop) })
	<-t.done
}

// startProgress begins simulated progress for src, replacing any timer that
// is still running for it. The returned func stops this timer.
func (c *Controller) startProgress(src Source, every time.Duration, step int) func() {
	c.stopProgress(src)
	t := startTicker(every, func() { c.bumpProgress(src, step) })

	c.timerMu.Lock()
	c.timers[src] = t
	c.timerMu.Unlock()

	return func() {
		c.timerMu.Lock()
		if c.timers[src] == t {
			delete(c.timers, src)
		}
		c.timerMu.Unlock()
		t.Stop()
	}
}

func (c *Controller) stopProgress(src Source) {
	c.timerMu.Lock()
	t := c.timers[src]
	delete(c.timers, src)
	c.timerMu.Unlock()
	if t != nil {
		t.Stop()
	}
}

func (c *Controller) stopAllProgress() {
	c.timerMu.Lock()
	running := make([]*ticker, 0, len(c.timers))
	for src, t := range c.timers {
		running = append(running, t)
		delete(c.timers, src)
	}
	c.timerMu.Unlock()
	for _, t := range running {
		t.Stop()
	}
}

func (c *Controller) bumpProgress(src Source, step int) {
	c.mu.Lock()
	st := c.states[src]
	if st.Phase != PhaseFetching || st.Progress >= c.cfg.ProgressCeiling {
		c.mu.Unlock()
		return
	}
	st.Progress = min(st.Progress+step, c.cfg.ProgressCeiling)
	c.states[src] = st
	c.mu.Unlock()
	c.publishState(src, st)
}

// ActiveTimers reports how many progress timers are running.
func (c *Controller) ActiveTimers() int {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	return len(c.timers)
}
