// Command lunarlander trains and evaluates double deep Q-network and
// skill-chain agents on Lunar Lander
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/skillchain/config"
)

// mode is the kind of agent a subcommand trains
type mode string

const (
	dqn        mode = "dqn"
	skillChain mode = "skillchain"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lunarlander",
		Short: "Lunar Lander double DQN and skill-chain trainer",
		Long: `Trains double deep Q-networks on Lunar Lander with discrete actions.

The dqn command trains a single network. The skillchain command trains
a chain of options, each with its own network, experience and logs.
Given --model, both commands instead load a checkpoint and play greedy
evaluation episodes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newModeCmd(dqn, "Train a double deep Q-network"))
	root.AddCommand(newModeCmd(skillChain, "Train a skill chain of "+
		"double deep Q-networks"))
	return root
}

func newModeCmd(m mode, short string) *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	cmd := &cobra.Command{
		Use:   string(m),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), m, v)
		},
	}

	d := config.Default()
	flags := cmd.Flags()
	flags.String("config", "", "Configuration file (yaml, json or toml)")
	flags.Bool("visualize", d.Visualize, "Render every step to PNG frames")
	flags.Bool("no-visualize", !d.Visualize, "Do not render")
	flags.String("model", d.Model, "Checkpoint to evaluate instead of "+
		"training")
	flags.String("env", d.Env, "Environment backend (box2d or gym)")
	flags.String("log-level", d.LogLevel, "Log level (debug, info, warn, "+
		"error)")
	flags.String("monitor-addr", d.MonitorAddr, "Address of the HTTP "+
		"monitor, disabled if empty")
	flags.Uint64("seed", d.Seed, "Seed for the environment, exploration "+
		"and experience replay")
	flags.Int("episodes", d.NumEpisodes, "Number of training episodes")
	flags.Bool("progress", d.Progress, "Display a progress bar")
	if m == skillChain {
		flags.Bool("chain", d.Chain.Enabled, "Create options after the "+
			"first")
	}
	cmd.MarkFlagsMutuallyExclusive("visualize", "no-visualize")

	// Bind flags to viper keys for config file and environment
	// variable support
	for key, flag := range map[string]string{
		"visualize":    "visualize",
		"model":        "model",
		"env":          "env",
		"log_level":    "log-level",
		"monitor_addr": "monitor-addr",
		"seed":         "seed",
		"num_episodes": "episodes",
		"progress":     "progress",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("newModeCmd: %v", err))
		}
	}
	if m == skillChain {
		if err := v.BindPFlag("chain.enabled", flags.Lookup("chain")); err != nil {
			panic(fmt.Sprintf("newModeCmd: %v", err))
		}
	}

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if file, _ := cmd.Flags().GetString("config"); file != "" {
			v.SetConfigFile(file)
		}
		if noVis, _ := cmd.Flags().GetBool("no-visualize"); noVis &&
			cmd.Flags().Changed("no-visualize") {
			v.Set("visualize", false)
		}
		return nil
	}
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().
			Timestamp().
			Logger()
		logger.Error().
			Err(err).
			Msg("lunarlander failed")
		os.Exit(1)
	}
}
