package sim

import "github.com/sirupsen/logrus"

// Progress is reported to a ProgressFunc every few ticks and once at the end.
type Progress struct {
	Step  int
	Total int
	Time  float64
}

func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Step) / float64(p.Total)
}

type ProgressFunc func(Progress)

type Option func(*System)

// WithProgress calls fn every `every` ticks and after the last tick.
func WithProgress(every int, fn ProgressFunc) Option {
	return func(s *System) {
		if every < 1 {
			every = 1
		}
		s.progressEvery = every
		s.progress = fn
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(s *System) {
		if log != nil {
			s.log = log
		}
	}
}
