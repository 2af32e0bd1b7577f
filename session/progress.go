package session

import (
	"sync"
	"time"

	"github.com/Tomasito665/mtv-rhythm-generator/space"
	"k8s.io/utils/clock"
)

// throttle forwards at most one progress report per interval. The first and the final report
// always pass.
type throttle struct {
	clock    clock.PassiveClock
	interval time.Duration
	fn       space.ProgressFunc

	mu   sync.Mutex
	last time.Time
	sent bool
}

func newThrottle(clk clock.PassiveClock, interval time.Duration, fn space.ProgressFunc) *throttle {
	return &throttle{
		clock:    clk,
		interval: interval,
		fn:       fn,
	}
}

func (t *throttle) report(done float64) {
	if t.fn == nil {
		return
	}

	t.mu.Lock()
	pass := !t.sent || done >= 1 || t.clock.Since(t.last) >= t.interval
	if pass {
		t.sent = true
		t.last = t.clock.Now()
	}
	t.mu.Unlock()

	if pass {
		t.fn(done)
	}
}
