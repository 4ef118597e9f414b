package lunarlander

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/skillchain/environment"
	"github.com/samuelfneumann/skillchain/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Task is an environment.Task that reads the physical state of a
// lunar lander to compute rewards and episode termination
type Task interface {
	environment.Task
	registerEnv(*lunarLander)
	reset()
}

// NewStarter returns the default Starter for lunar lander Tasks: the
// lander starts at the top centre of the viewport and a random force
// of magnitude at most InitialRandom is applied to it.
func NewStarter(seed uint64) environment.Starter {
	return environment.NewUniformStarter([]r1.Interval{
		{Min: InitialX, Max: InitialX},
		{Min: InitialY, Max: InitialY},
		{Min: InitialRandom, Max: InitialRandom},
	}, seed)
}

// Land is the task of landing the lander on the landing pad. Reward
// is shaped by the distance to the pad, the speed and tilt of the
// lander and its leg contacts, minus the fuel spent. Crashing or
// leaving the viewport horizontally costs 100, coming to rest earns
// 100; both end the episode.
type Land struct {
	environment.Starter
	stepLimit environment.Ender
	viewport  environment.Ender

	prevShaping *float64

	env *lunarLander
}

// NewLand returns a new Land task whose episodes are cut off after
// cutoff steps
func NewLand(s environment.Starter, cutoff int) *Land {
	viewport, err := environment.NewIntervalLimit(
		[]r1.Interval{{Min: -1, Max: 1}}, []int{0},
		timestep.TerminalStateReached)
	if err != nil {
		panic(fmt.Sprintf("newLand: %v", err))
	}
	return &Land{
		Starter:   s,
		stepLimit: environment.NewStepLimit(cutoff),
		viewport:  viewport,
	}
}

func (l *Land) registerEnv(env *lunarLander) {
	l.env = env
}

func (l *Land) reset() {
	l.prevShaping = nil
}

// AtGoal returns whether both legs of the lander touch the ground
func (l *Land) AtGoal() bool {
	leg1Contact, leg2Contact := l.env.GroundContact()
	return leg1Contact && leg2Contact
}

// GetReward returns the reward for transitioning to nextState
func (l *Land) GetReward(_, _, nextState mat.Vector) float64 {
	state := make([]float64, nextState.Len())
	for i := range state {
		state[i] = nextState.AtVec(i)
	}

	shaping := (-100 * math.Hypot(state[0], state[1])) +
		(-100 * math.Hypot(state[2], state[3])) +
		(-100 * math.Abs(state[4])) +
		(10 * state[6]) +
		(10 * state[7])

	reward := 0.0
	if l.prevShaping != nil {
		reward = shaping - *l.prevShaping
	}
	l.prevShaping = &shaping

	// Less fuel spent is better
	reward -= l.env.MPower() * 0.30
	reward -= l.env.SPower() * 0.03

	if l.crashed(nextState) {
		reward = -100
	} else if !l.env.IsAwake() {
		reward = 100
	}
	return reward
}

func (l *Land) crashed(state mat.Vector) bool {
	return l.env.IsGameOver() || math.Abs(state.AtVec(0)) >= 1.0
}

// End ends the episode when the lander crashes, leaves the viewport,
// comes to rest, or the step limit is reached
func (l *Land) End(t *timestep.TimeStep) bool {
	if l.env.IsGameOver() || !l.env.IsAwake() {
		t.StepType = timestep.Last
		t.SetEnd(timestep.TerminalStateReached)
		return true
	}
	return l.viewport.End(t) || l.stepLimit.End(t)
}
