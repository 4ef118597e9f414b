package environment

import "github.com/samuelfneumann/skillchain/timestep"

// StepLimit is an Ender which cuts episodes off once they reach a
// fixed number of steps
type StepLimit int

// NewStepLimit returns a StepLimit cutting episodes off at step
// episodeSteps
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit(episodeSteps)
}

// End marks t as a Timeout if its step number reached the limit
func (s StepLimit) End(t *timestep.TimeStep) bool {
	if t.Number < int(s) {
		return false
	}
	t.StepType = timestep.Last
	t.SetEnd(timestep.Timeout)
	return true
}
