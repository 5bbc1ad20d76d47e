package core

import "time"

// Stopwatch accumulates time spent in named phases of a generation.
type Stopwatch struct {
	totals map[string]time.Duration
	counts map[string]int
	order  []string
	now    func() time.Time
}

// NewStopwatch constructs an empty Stopwatch.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{
		totals: map[string]time.Duration{},
		counts: map[string]int{},
		now:    time.Now,
	}
}

// Start begins timing phase and returns the function that stops it.
//
//	defer sw.Start("exchange")()
func (s *Stopwatch) Start(phase string) func() {
	begin := s.now()
	return func() { s.Add(phase, s.now().Sub(begin)) }
}

// Add records d against phase.
func (s *Stopwatch) Add(phase string, d time.Duration) {
	if _, ok := s.totals[phase]; !ok {
		s.order = append(s.order, phase)
	}
	s.totals[phase] += d
	s.counts[phase]++
}

// Total returns the accumulated duration of phase.
func (s *Stopwatch) Total(phase string) time.Duration { return s.totals[phase] }

// Mean returns the average duration of a single phase measurement.
func (s *Stopwatch) Mean(phase string) time.Duration {
	n := s.counts[phase]
	if n == 0 {
		return 0
	}
	return s.totals[phase] / time.Duration(n)
}

// Phases lists recorded phases in first-seen order.
func (s *Stopwatch) Phases() []string {
	return append([]string(nil), s.order...)
}

// Reset clears all measurements.
func (s *Stopwatch) Reset() {
	s.totals = map[string]time.Duration{}
	s.counts = map[string]int{}
	s.order = nil
}
