package environment

import (
	"fmt"

	"github.com/samuelfneumann/skillchain/timestep"
	"gonum.org/v1/gonum/spatial/r1"
)

// IntervalLimit is an Ender which ends episodes as soon as one of the
// watched observation features reaches a bound of its open interval
type IntervalLimit struct {
	intervals []r1.Interval
	indices   []int
	endType   timestep.EndType
}

// NewIntervalLimit returns an IntervalLimit watching the features at
// obsIndices, where limits[i] bounds feature obsIndices[i]. Ended
// episodes are marked with endType.
func NewIntervalLimit(limits []r1.Interval, obsIndices []int,
	endType timestep.EndType) (*IntervalLimit, error) {
	if len(limits) != len(obsIndices) {
		return nil, fmt.Errorf("newIntervalLimit: have %v limits for %v "+
			"features", len(limits), len(obsIndices))
	}
	for i, l := range limits {
		if l.Min >= l.Max {
			return nil, fmt.Errorf("newIntervalLimit: empty interval "+
				"[%v, %v] for feature %v", l.Min, l.Max, obsIndices[i])
		}
	}
	return &IntervalLimit{limits, obsIndices, endType}, nil
}

// End marks t as the last step of the episode if any watched feature
// is outside its interval
func (i *IntervalLimit) End(t *timestep.TimeStep) bool {
	for j, feature := range i.indices {
		v := t.Observation.AtVec(feature)
		if v >= i.intervals[j].Max || v <= i.intervals[j].Min {
			t.StepType = timestep.Last
			t.SetEnd(i.endType)
			return true
		}
	}
	return false
}
