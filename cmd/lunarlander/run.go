package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/skillchain/agent/deepq"
	"github.com/samuelfneumann/skillchain/agent/policy"
	"github.com/samuelfneumann/skillchain/config"
	env "github.com/samuelfneumann/skillchain/environment"
	"github.com/samuelfneumann/skillchain/experiment"
	"github.com/samuelfneumann/skillchain/experiment/checkpointer"
	"github.com/samuelfneumann/skillchain/experiment/tracker"
	"github.com/samuelfneumann/skillchain/monitor"
	"github.com/samuelfneumann/skillchain/skillchain"
	"github.com/samuelfneumann/skillchain/utils/progressbar"
)

// checkpointExt is the extension of checkpoint files
const checkpointExt = ".ckpt"

func newLogger(c config.Config, m mode, runID string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).
		Level(c.Level()).
		With().
		Timestamp().
		Str("run_id", runID).
		Str("mode", string(m)).
		Logger()
}

// run loads the configuration in v and trains or evaluates an agent
func run(ctx context.Context, m mode, v *viper.Viper) error {
	c, err := config.Load(v)
	if err != nil {
		return err
	}
	if m == dqn {
		c.Chain.Enabled = false
	}
	// Evaluation rollouts are always rendered
	if c.Model != "" {
		c.Visualize = true
	}

	runID := uuid.NewString()
	logger := newLogger(c, m, runID)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, _, err := c.Environment().Create()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Error().Err(err).Msg("could not close environment")
		}
	}()

	numActions, err := env.NumActions(e)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	features := env.NumFeatures(e)
	logger.Info().
		Str("env", c.Env).
		Int("features", features).
		Int("actions", numActions).
		Uint64("seed", c.Seed).
		Msg("environment created")

	if c.Model != "" {
		return evaluate(ctx, c, e, features, numActions, logger)
	}
	return train(ctx, c, e, features, numActions, runID, logger)
}

// evaluate plays greedy episodes with the checkpointed network
func evaluate(ctx context.Context, c config.Config, e env.Environment,
	features, numActions int, logger zerolog.Logger) error {
	q, err := deepq.New(features, numActions, c.DeepQ())
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	defer q.Close()

	logger.Info().Str("model", c.Model).Msg("loading trained model")
	if err := checkpointer.Load(c.Model, q); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	logger.Info().Int("attempts", c.Attempts).Msg("load successful")

	_, err = experiment.Evaluate(ctx, e, q, c.Attempts, c.MaxStepsEp,
		c.Visualize, logger)
	return err
}

// newFactory returns a Factory creating options whose boards are
// named after board. The network of an option that cannot be created
// is closed.
func newFactory(c config.Config, features, numActions int,
	board string) skillchain.Factory {
	return func(id, born int) (opt *skillchain.Option, err error) {
		q, err := deepq.New(features, numActions, c.DeepQ())
		if err != nil {
			return nil, err
		}
		defer func() {
			if err != nil {
				err = errors.Join(err, q.Close())
			}
		}()

		replay, err := c.Replay().Create(c.Seed + uint64(id))
		if err != nil {
			return nil, err
		}
		b, err := tracker.NewBoard(fmt.Sprintf("%v_%v", board, id))
		if err != nil {
			return nil, err
		}
		return skillchain.NewOption(id, born, q, replay, b)
	}
}

// train trains the options of a chain, saving their boards and the
// acting option's network when training ends or is interrupted
func train(ctx context.Context, c config.Config, e env.Environment,
	features, numActions int, runID string, logger zerolog.Logger) error {
	start := time.Now()
	board := filepath.Join(c.BoardDir, "board_"+checkpointer.Timestamp(start))

	chain, err := skillchain.New(c.Chain, newFactory(c, features,
		numActions, board))
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	defer func() {
		if closeErr := chain.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("could not close options")
		}
	}()

	schedule, err := c.Schedule()
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	p, err := policy.NewEGreedy(schedule, numActions, c.Seed)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	if err := os.MkdirAll(c.CheckpointDir, 0o755); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	filename := checkpointer.FileTimer(c.CheckpointDir, checkpointExt)
	var checks []checkpointer.Checkpointer
	if c.CheckpointEvery > 0 {
		checks = append(checks, checkpointer.NewNEpisode(c.CheckpointEvery,
			chain.Acting().Q, filename))
	}

	exp, err := experiment.NewOnline(e, chain, p, c.Experiment(), logger,
		checks...)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if c.Progress {
		exp.SetProgressBar(progressbar.New(os.Stderr, 40, c.NumEpisodes))
	}

	if c.MonitorAddr != "" {
		mon := monitor.New(runID, logger)
		exp.Register(mon)

		monCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := mon.Serve(monCtx, c.MonitorAddr); err != nil {
				logger.Error().Err(err).Msg("monitor failed")
			}
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	logger.Info().
		Str("board", board).
		Int("episodes", c.NumEpisodes).
		Bool("chain", c.Chain.Enabled).
		Msg("training started")

	runErr := exp.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		logger.Warn().Int("episode", exp.Episode()).
			Msg("training interrupted")
		runErr = nil
	}

	saveErr := exp.Save()
	ckpt := filename()
	ckptErr := checkpointer.Save(ckpt, chain.Acting().Q)
	if ckptErr == nil {
		logger.Info().Str("checkpoint", ckpt).
			Int("episodes", exp.Episode()).
			Int("steps", exp.TotalSteps()).
			Float64("minutes", time.Since(start).Minutes()).
			Msg("training finished")
	}
	return errors.Join(runErr, saveErr, ckptErr)
}
