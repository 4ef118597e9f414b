package policy

import (
	"fmt"
	"math"
)

// Schedule decays the ε of an ε-greedy policy. For the first
// decayLength steps ε decreases linearly from start to end. After
// that, ε is multiplied by a constant factor at the end of every
// episode. ε never increases.
type Schedule struct {
	start       float64
	end         float64
	decayLength int
	decayExp    float64
	linearStep  float64

	epsilon     float64
	steps       int
	exponential bool
}

// NewSchedule returns a new Schedule which starts at ε = start
func NewSchedule(start, end float64, decayLength int,
	decayExp float64) (*Schedule, error) {
	if start < 0 || start > 1 {
		return nil, fmt.Errorf("newSchedule: start must be in [0, 1], "+
			"got %v", start)
	}
	if end < 0 || end > start {
		return nil, fmt.Errorf("newSchedule: end must be in [0, start], "+
			"got %v", end)
	}
	if decayLength < 0 {
		return nil, fmt.Errorf("newSchedule: decay length must be >= 0, "+
			"got %v", decayLength)
	}
	if decayExp <= 0 || decayExp > 1 {
		return nil, fmt.Errorf("newSchedule: decay exponent must be in "+
			"(0, 1], got %v", decayExp)
	}

	var linearStep float64
	if decayLength > 0 {
		linearStep = (start - end) / float64(decayLength)
	}

	return &Schedule{
		start:       start,
		end:         end,
		decayLength: decayLength,
		decayExp:    decayExp,
		linearStep:  linearStep,
		epsilon:     start,
	}, nil
}

// Epsilon returns the current ε
func (s *Schedule) Epsilon() float64 {
	return s.epsilon
}

// LinearStep returns the amount ε decreases by on each linear step
func (s *Schedule) LinearStep() float64 {
	return s.linearStep
}

// Steps returns the number of steps the Schedule has taken
func (s *Schedule) Steps() int {
	return s.steps
}

// Exponential returns whether the linear phase is over, so that
// further terminal steps decay ε exponentially
func (s *Schedule) Exponential() bool {
	return s.exponential
}

// Step advances the Schedule by one environment step. The terminal
// parameter reports whether the step ended an episode. Step returns
// true only on the single call that ends the linear phase, which is
// step decayLength, or the first step if decayLength is 0.
func (s *Schedule) Step(terminal bool) bool {
	s.steps++

	if s.steps <= s.decayLength {
		s.epsilon = math.Max(s.epsilon-s.linearStep, s.end)
		if s.steps == s.decayLength {
			s.exponential = true
			return true
		}
		return false
	}

	switched := !s.exponential
	s.exponential = true
	if terminal {
		s.epsilon *= s.decayExp
	}
	return switched
}
