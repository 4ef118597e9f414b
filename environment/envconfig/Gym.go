//go:build gogym

package envconfig

import (
	"fmt"

	env "github.com/samuelfneumann/skillchain/environment"
	"github.com/samuelfneumann/skillchain/environment/gym"
	ts "github.com/samuelfneumann/skillchain/timestep"
)

func init() {
	Register(Gym, CreateGym)
}

// CreateGym creates LunarLander-v2 from OpenAI Gym. Episodes are cut
// off by Gym or after EpisodeCutoff steps, whichever comes first.
func CreateGym(c Config) (env.Environment, ts.TimeStep, error) {
	e, step, err := gym.New(gym.LunarLanderV2, c.Discount, c.EpisodeCutoff,
		c.Seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createGym: %w", err)
	}
	return e, step, nil
}
