package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/skillchain/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestHealth(t *testing.T) {
	m := New("run-1", zerolog.Nop())
	res := get(t, m.Routes(), "/healthz")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "run-1")
}

func TestEpisodesAndSummary(t *testing.T) {
	m := New("run-1", zerolog.Nop())
	var o experiment.Observer = m
	for i := 0; i < 3; i++ {
		o.ObserveEpisode(experiment.EpisodeSummary{
			Episode: i,
			Return:  float64(i * 10),
			Steps:   100 + i,
			Epsilon: 0.5,
			Elapsed: time.Minute,
		})
	}
	o.ObserveEpisode(experiment.EpisodeSummary{Option: 1, Return: -5})
	h := m.Routes()

	res := get(t, h, "/api/v1/options/0/episodes")
	require.Equal(t, http.StatusOK, res.Code)
	var episodes []episodeJSON
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &episodes))
	require.Len(t, episodes, 3)
	assert.Equal(t, 20.0, episodes[2].Reward)
	assert.Equal(t, 102, episodes[2].Steps)
	assert.Equal(t, 1.0, episodes[2].Minutes)

	res = get(t, h, "/api/v1/options/0/summary")
	require.Equal(t, http.StatusOK, res.Code)
	var summary struct {
		Episodes   int         `json:"episodes"`
		MeanReward float64     `json:"mean_reward"`
		Latest     episodeJSON `json:"latest"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.Episodes)
	assert.Equal(t, 10.0, summary.MeanReward)
	assert.Equal(t, 2, summary.Latest.Episode)

	res = get(t, h, "/api/v1/options/1/episodes")
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &episodes))
	assert.Len(t, episodes, 1)
}

func TestSummaryErrors(t *testing.T) {
	h := New("run-1", zerolog.Nop()).Routes()
	assert.Equal(t, http.StatusNotFound,
		get(t, h, "/api/v1/options/0/summary").Code)
	assert.Equal(t, http.StatusBadRequest,
		get(t, h, "/api/v1/options/x/summary").Code)
	assert.Equal(t, http.StatusBadRequest,
		get(t, h, "/api/v1/options/-1/episodes").Code)
}

func TestRewardPlot(t *testing.T) {
	m := New("run-1", zerolog.Nop())
	m.ObserveEpisode(experiment.EpisodeSummary{Return: 1})
	m.ObserveEpisode(experiment.EpisodeSummary{Episode: 1, Return: 3})

	res := get(t, m.Routes(), "/api/v1/options/0/reward.png")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "image/png", res.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(res.Body.Bytes(), []byte("\x89PNG")))
}

func TestConcurrentObserve(t *testing.T) {
	m := New("run-1", zerolog.Nop())
	h := m.Routes()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			m.ObserveEpisode(experiment.EpisodeSummary{Episode: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			get(t, h, "/api/v1/options/0/episodes")
		}
	}()
	wg.Wait()
	assert.Len(t, m.episodesOf(0), 100)
}

func TestServeStopsOnCancel(t *testing.T) {
	m := New("run-1", zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("monitor did not stop")
	}
}
