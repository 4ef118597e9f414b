package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/skillchain/agent/policy"
	env "github.com/samuelfneumann/skillchain/environment"
	"github.com/samuelfneumann/skillchain/experiment/checkpointer"
	"github.com/samuelfneumann/skillchain/skillchain"
	ts "github.com/samuelfneumann/skillchain/timestep"
	"github.com/samuelfneumann/skillchain/utils/progressbar"
	"gonum.org/v1/gonum/mat"
)

// Config configures an Online experiment
type Config struct {
	Episodes              int  // Episodes to run
	MaxStepsEp            int  // Steps after which episodes are cut off
	UpdateSlowTargetEvery int  // Steps between target network syncs
	TrainEvery            int  // Steps between learning updates
	Visualize             bool // Render each step
}

// Validate returns an error if c is not a valid Config
func (c Config) Validate() error {
	if c.Episodes < 0 {
		return fmt.Errorf("validate: episodes must be >= 0, got %v",
			c.Episodes)
	}
	if c.MaxStepsEp < 1 {
		return fmt.Errorf("validate: max steps per episode must be >= 1, "+
			"got %v", c.MaxStepsEp)
	}
	if c.UpdateSlowTargetEvery < 1 {
		return fmt.Errorf("validate: target update interval must be >= 1, "+
			"got %v", c.UpdateSlowTargetEvery)
	}
	if c.TrainEvery < 1 {
		return fmt.Errorf("validate: training interval must be >= 1, got %v",
			c.TrainEvery)
	}
	return nil
}

// Online is an Experiment that trains the options of a skill chain
// online. The acting option selects actions ε-greedily, every option
// records every transition and learns from its own experience.
//
// The global step counter decides when target networks are synced
// and when learning happens. Both are checked before the counter is
// incremented, so targets are synced on the very first step.
//
// Online is not safe for concurrent use. After RunEpisode returns an
// error, the experiment can only be saved.
type Online struct {
	env    env.Environment
	chain  *skillchain.Chain
	policy *policy.EGreedy
	config Config
	logger zerolog.Logger

	observers     []Observer
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ProgressBar

	action     *mat.VecDense
	totalSteps int
	episode    int
	start      time.Time
}

// NewOnline creates and returns a new online experiment on a given
// environment with the options of chain. The policy p selects actions
// using the values of the acting option.
func NewOnline(e env.Environment, chain *skillchain.Chain, p *policy.EGreedy,
	config Config, logger zerolog.Logger,
	c ...checkpointer.Checkpointer) (*Online, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newOnline: %w", err)
	}
	if _, err := env.NumActions(e); err != nil {
		return nil, fmt.Errorf("newOnline: %w", err)
	}

	return &Online{
		env:           e,
		chain:         chain,
		policy:        p,
		config:        config,
		logger:        logger,
		checkpointers: c,
		action:        mat.NewVecDense(1, nil),
		start:         time.Now(),
	}, nil
}

// Register registers an Observer to be notified of every finished
// episode
func (o *Online) Register(obs Observer) {
	o.observers = append(o.observers, obs)
}

// SetProgressBar sets a progress bar which is advanced after each
// episode
func (o *Online) SetProgressBar(p *progressbar.ProgressBar) {
	o.progress = p
}

// TotalSteps returns the number of steps taken in all episodes
func (o *Online) TotalSteps() int {
	return o.totalSteps
}

// Episode returns the number of finished episodes
func (o *Online) Episode() int {
	return o.episode
}

// Run runs the experiment until all episodes are finished or ctx is
// cancelled
func (o *Online) Run(ctx context.Context) error {
	o.start = time.Now()
	for o.episode < o.config.Episodes {
		if _, err := o.RunEpisode(ctx); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}
	if o.progress != nil {
		return o.progress.Close()
	}
	return nil
}

// RunEpisode runs a single episode of the experiment and returns the
// summary of the acting option
func (o *Online) RunEpisode(ctx context.Context) (EpisodeSummary, error) {
	step, err := o.env.Reset()
	if err != nil {
		return EpisodeSummary{}, fmt.Errorf("runEpisode: %w", err)
	}

	options := o.chain.Options()
	acting := o.chain.Acting()
	for _, opt := range options {
		opt.Board.Track(step)
	}

	var (
		steps     int
		episodeR  float64
		lossSum   float64
		lossCount int
	)
	for steps < o.config.MaxStepsEp {
		if err := ctx.Err(); err != nil {
			return EpisodeSummary{}, fmt.Errorf("runEpisode: %w", err)
		}

		// Select action, step in environment
		a, err := o.policy.SelectAction(step.Observation, acting.Q)
		if err != nil {
			return EpisodeSummary{}, fmt.Errorf("runEpisode: %w", err)
		}
		o.action.SetVec(0, float64(a))
		next, last, err := o.env.Step(o.action)
		if err != nil {
			return EpisodeSummary{}, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.render(); err != nil {
			return EpisodeSummary{}, fmt.Errorf("runEpisode: %w", err)
		}
		episodeR += next.Reward

		transition := ts.NewTransition(step, a, next)
		for _, opt := range options {
			opt.Board.Track(next)
			if err := opt.Record(transition); err != nil {
				return EpisodeSummary{}, fmt.Errorf("runEpisode: %w", err)
			}
		}

		if o.totalSteps%o.config.UpdateSlowTargetEvery == 0 {
			for _, opt := range options {
				if err := opt.Q.SyncTarget(); err != nil {
					return EpisodeSummary{}, fmt.Errorf("runEpisode: %w", err)
				}
			}
		}

		if o.totalSteps%o.config.TrainEvery == 0 {
			for _, opt := range options {
				if !opt.Ready() {
					continue
				}
				loss, err := opt.Learn()
				if err != nil {
					return EpisodeSummary{}, fmt.Errorf("runEpisode: %w", err)
				}
				if opt == acting {
					lossSum += loss
					lossCount++
				}
			}
		}

		step = next
		o.totalSteps++
		steps++

		if o.policy.Schedule().Step(last) {
			o.logger.Info().
				Int("step", o.totalSteps).
				Float64("epsilon", o.policy.Epsilon()).
				Msg("moving to exponential epsilon decay")
		}
		if last {
			break
		}
	}

	return o.endEpisode(steps, episodeR, lossSum, lossCount)
}

// endEpisode records the finished episode on every option's board,
// reports it and creates a new option if one is due
func (o *Online) endEpisode(steps int, episodeR, lossSum float64,
	lossCount int) (EpisodeSummary, error) {
	eps := o.policy.Epsilon()
	summary := EpisodeSummary{
		Option:  o.chain.Acting().ID,
		Episode: o.episode,
		Return:  episodeR,
		Steps:   steps,
		Epsilon: eps,
		Elapsed: time.Since(o.start),
	}

	for _, opt := range o.chain.Options() {
		opt.Board.EndEpisode(eps)
		if opt != o.chain.Acting() {
			o.logger.Debug().
				Int("option", opt.ID).
				Int("episode", o.episode).
				Bool("gestating", o.chain.Gestating(opt, o.episode)).
				Int("experience", opt.Replay.Len()).
				Msg("option updated")
		}
	}

	event := o.logger.Info().EmbedObject(summary)
	if lossCount > 0 {
		event = event.Float64("loss", lossSum/float64(lossCount))
	}
	event.Msg(summary.String())

	for _, obs := range o.observers {
		obs.ObserveEpisode(summary)
	}

	created, err := o.chain.EndEpisode(o.episode)
	if err != nil {
		return EpisodeSummary{}, fmt.Errorf("endEpisode: %w", err)
	}
	if created != nil {
		o.logger.Info().
			Int("option", created.ID).
			Int("episode", o.episode).
			Str("board", created.Board.Dir()).
			Msg("created option")
	}

	o.episode++
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(o.episode); err != nil {
			return EpisodeSummary{}, fmt.Errorf("endEpisode: %w", err)
		}
	}

	if o.progress != nil {
		o.progress.Increment()
		if err := o.progress.Display(); err != nil {
			return EpisodeSummary{}, fmt.Errorf("endEpisode: %w", err)
		}
	}
	return summary, nil
}

// render renders the environment if visualization is on and the
// environment can be rendered
func (o *Online) render() error {
	if !o.config.Visualize {
		return nil
	}
	if r, ok := o.env.(env.Renderer); ok {
		return r.Render()
	}
	return nil
}

// Save saves the data tracked on the boards of all options
func (o *Online) Save() error {
	for _, opt := range o.chain.Options() {
		if err := opt.Board.Save(); err != nil {
			return fmt.Errorf("save: option %v: %w", opt.ID, err)
		}
	}
	return nil
}
