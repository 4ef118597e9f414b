// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Experiment runs episodes of an agent-environment interaction. Run
// runs all episodes until the episode limit is reached or ctx is
// cancelled, RunEpisode runs a single episode. Save saves all data
// tracked during the experiment.
type Experiment interface {
	Run(ctx context.Context) error
	RunEpisode(ctx context.Context) (EpisodeSummary, error)
	Register(o Observer)
	Save() error
}

// EpisodeSummary describes a finished episode of a single option
type EpisodeSummary struct {
	Option  int
	Episode int
	Return  float64
	Steps   int
	Epsilon float64 // ε for the next episode
	Elapsed time.Duration
}

func (e EpisodeSummary) String() string {
	return fmt.Sprintf("Episode %2d, Reward: %7.3f, Steps: %d, Next eps: "+
		"%7.3f, Minutes: %7.3f", e.Episode, e.Return, e.Steps, e.Epsilon,
		e.Elapsed.Minutes())
}

// MarshalZerologObject adds the fields of the summary to a log event
func (e EpisodeSummary) MarshalZerologObject(event *zerolog.Event) {
	event.Int("option", e.Option).
		Int("episode", e.Episode).
		Float64("reward", e.Return).
		Int("steps", e.Steps).
		Float64("next_eps", e.Epsilon).
		Float64("minutes", e.Elapsed.Minutes())
}

// Observer is notified at the end of each episode
type Observer interface {
	ObserveEpisode(EpisodeSummary)
}

// ObserverFunc adapts a function to an Observer
type ObserverFunc func(EpisodeSummary)

// ObserveEpisode calls f(s)
func (f ObserverFunc) ObserveEpisode(s EpisodeSummary) {
	f(s)
}
