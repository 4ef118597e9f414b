package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/skillchain/agent/policy"
	env "github.com/samuelfneumann/skillchain/environment"
	"gonum.org/v1/gonum/mat"
)

// DefaultAttempts is the number of evaluation episodes played with a
// loaded model
const DefaultAttempts = 10

// Evaluate plays attempts greedy episodes of at most maxSteps steps
// each on e with the action values of valuer. If render is true and e
// can be rendered, every step is rendered.
func Evaluate(ctx context.Context, e env.Environment, valuer policy.Valuer,
	attempts, maxSteps int, render bool,
	logger zerolog.Logger) ([]EpisodeSummary, error) {
	if maxSteps < 1 {
		return nil, fmt.Errorf("evaluate: max steps must be >= 1, got %v",
			maxSteps)
	}
	renderer, canRender := e.(env.Renderer)
	render = render && canRender

	start := time.Now()
	action := mat.NewVecDense(1, nil)
	summaries := make([]EpisodeSummary, 0, attempts)
	for i := 0; i < attempts; i++ {
		step, err := e.Reset()
		if err != nil {
			return summaries, fmt.Errorf("evaluate: %w", err)
		}

		summary := EpisodeSummary{Episode: i}
		for summary.Steps < maxSteps {
			if err := ctx.Err(); err != nil {
				return summaries, fmt.Errorf("evaluate: %w", err)
			}

			a, err := policy.Greedy(step.Observation, valuer)
			if err != nil {
				return summaries, fmt.Errorf("evaluate: %w", err)
			}
			action.SetVec(0, float64(a))

			var last bool
			step, last, err = e.Step(action)
			if err != nil {
				return summaries, fmt.Errorf("evaluate: %w", err)
			}
			if render {
				if err := renderer.Render(); err != nil {
					return summaries, fmt.Errorf("evaluate: %w", err)
				}
			}

			summary.Return += step.Reward
			summary.Steps++
			if last {
				break
			}
		}
		summary.Elapsed = time.Since(start)

		logger.Info().
			Int("attempt", i).
			Float64("reward", summary.Return).
			Int("steps", summary.Steps).
			Msgf("Reward: %v in %v steps.", summary.Return, summary.Steps)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
