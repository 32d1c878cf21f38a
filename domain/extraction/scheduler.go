package extraction

import (
	"fmt"
	"time"
)

// Clock abstracts time so the scheduler can be driven by tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Policy selects how the next batch time is computed.
type Policy string

const (
	// PolicyFixedDelay waits the full interval after the end of each batch.
	PolicyFixedDelay Policy = "fixed-delay"
	// PolicyAligned ticks on a grid anchored at the first batch and skips
	// ticks that were missed while a batch was running.
	PolicyAligned Policy = "aligned"
)

// ParsePolicy maps a config string to a Policy; empty means fixed-delay.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyFixedDelay:
		return PolicyFixedDelay, nil
	case PolicyAligned:
		return PolicyAligned, nil
	default:
		return PolicyFixedDelay, fmt.Errorf("unknown schedule policy %q", s)
	}
}

// Scheduler gates batches to at most one per interval. It never blocks: the
// session loop asks Due on every iteration and keeps servicing input and
// frames in between, so quit stays responsive during the delay.
type Scheduler struct {
	interval time.Duration
	policy   Policy
	clock    Clock

	started bool
	anchor  time.Time
	next    time.Time
	skipped uint64
}

func NewScheduler(interval time.Duration, policy Policy, clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{interval: interval, policy: policy, clock: clock}
}

func (s *Scheduler) Interval() time.Duration { return s.interval }
func (s *Scheduler) Policy() Policy          { return s.policy }

// Due reports whether a batch should run now. The first call after the
// extraction phase starts is always due.
func (s *Scheduler) Due() bool {
	if !s.started {
		return true
	}
	return !s.clock.Now().Before(s.next)
}

// Until returns how long until the next batch is due (zero if due).
func (s *Scheduler) Until() time.Duration {
	if !s.started {
		return 0
	}
	d := s.next.Sub(s.clock.Now())
	if d < 0 {
		return 0
	}
	return d
}

// BatchStarted records the start of a batch; the first one anchors the grid.
func (s *Scheduler) BatchStarted() {
	if !s.started {
		s.started = true
		s.anchor = s.clock.Now()
	}
}

// BatchDone computes the next due time from the end of the batch.
func (s *Scheduler) BatchDone() {
	end := s.clock.Now()
	if !s.started {
		s.started = true
		s.anchor = end
	}
	switch s.policy {
	case PolicyAligned:
		elapsed := end.Sub(s.anchor)
		ticks := elapsed/s.interval + 1
		next := s.anchor.Add(ticks * s.interval)
		if !s.next.IsZero() && next.Sub(s.next) > s.interval {
			s.skipped += uint64(next.Sub(s.next)/s.interval) - 1
		}
		s.next = next
	default:
		s.next = end.Add(s.interval)
	}
}

// NextDue returns the next scheduled batch time (zero before the first batch).
func (s *Scheduler) NextDue() time.Time { return s.next }

// Skipped counts grid ticks dropped under PolicyAligned.
func (s *Scheduler) Skipped() uint64 { return s.skipped }
