// Package monitor implements a read-only HTTP view of a running
// experiment
package monitor

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/skillchain/experiment"
	"github.com/samuelfneumann/skillchain/experiment/tracker"
)

// Monitor observes the episodes of an experiment and serves them over
// HTTP. Episodes are observed by the experiment's goroutine and read
// by HTTP handlers concurrently.
type Monitor struct {
	runID  string
	logger zerolog.Logger

	mu       sync.RWMutex
	episodes map[int][]experiment.EpisodeSummary
}

// New returns a new Monitor for the run runID
func New(runID string, logger zerolog.Logger) *Monitor {
	return &Monitor{
		runID:    runID,
		logger:   logger,
		episodes: make(map[int][]experiment.EpisodeSummary),
	}
}

// ObserveEpisode records a finished episode
func (m *Monitor) ObserveEpisode(s experiment.EpisodeSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.episodes[s.Option] = append(m.episodes[s.Option], s)
}

// episodesOf returns a copy of the episodes of an option
func (m *Monitor) episodesOf(option int) []experiment.EpisodeSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]experiment.EpisodeSummary(nil), m.episodes[option]...)
}

type episodeJSON struct {
	Option  int     `json:"option"`
	Episode int     `json:"episode"`
	Reward  float64 `json:"reward"`
	Steps   int     `json:"steps"`
	NextEps float64 `json:"next_eps"`
	Minutes float64 `json:"minutes"`
}

func toJSON(s experiment.EpisodeSummary) episodeJSON {
	return episodeJSON{
		Option:  s.Option,
		Episode: s.Episode,
		Reward:  s.Return,
		Steps:   s.Steps,
		NextEps: s.Epsilon,
		Minutes: s.Elapsed.Minutes(),
	}
}

// Routes builds the HTTP router of the monitor
func (m *Monitor) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "run_id": m.runID})
	})

	api := r.Group("/api/v1")
	api.GET("/options/:option/episodes", m.handleEpisodes)
	api.GET("/options/:option/summary", m.handleSummary)
	api.GET("/options/:option/reward.png", m.handleRewardPlot)
	return r
}

func (m *Monitor) option(c *gin.Context) (int, bool) {
	option, err := strconv.Atoi(c.Param("option"))
	if err != nil || option < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid option"})
		return 0, false
	}
	return option, true
}

func (m *Monitor) handleEpisodes(c *gin.Context) {
	option, ok := m.option(c)
	if !ok {
		return
	}

	episodes := m.episodesOf(option)
	out := make([]episodeJSON, len(episodes))
	for i, s := range episodes {
		out[i] = toJSON(s)
	}
	c.JSON(http.StatusOK, out)
}

// window is the number of episodes the summary's mean reward covers
const window = 100

func (m *Monitor) handleSummary(c *gin.Context) {
	option, ok := m.option(c)
	if !ok {
		return
	}

	episodes := m.episodesOf(option)
	if len(episodes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no episodes recorded"})
		return
	}

	recent := episodes
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	var sum float64
	for _, s := range recent {
		sum += s.Return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":      m.runID,
		"episodes":    len(episodes),
		"latest":      toJSON(episodes[len(episodes)-1]),
		"mean_reward": sum / float64(len(recent)),
	})
}

func (m *Monitor) handleRewardPlot(c *gin.Context) {
	option, ok := m.option(c)
	if !ok {
		return
	}

	episodes := m.episodesOf(option)
	rewards := make([]float64, len(episodes))
	for i, s := range episodes {
		rewards[i] = s.Return
	}

	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := tracker.WriteCurve(c.Writer, "Reward", rewards); err != nil {
		m.logger.Error().Err(err).Msg("could not plot rewards")
	}
}

// Serve serves the monitor on addr until ctx is cancelled
func (m *Monitor) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		m.logger.Info().Str("addr", addr).Msg("monitor starting")
		if err := srv.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			done <- err
		}
		close(done)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	m.logger.Info().Msg("monitor stopped")
	return nil
}
