package tracker

import ts "github.com/samuelfneumann/skillchain/timestep"

// EpisodeLength tracks and saves the number of steps taken in each
// episode of an experiment
type EpisodeLength struct {
	current        int
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{current: -1, filename: filename}
}

// Track caches the episode length when t is the last timestep in its
// episode
func (e *EpisodeLength) Track(t ts.TimeStep) {
	e.current = t.Number
	if t.Last() {
		e.Cutoff()
	}
}

// Cutoff ends the current episode and caches its length
func (e *EpisodeLength) Cutoff() {
	if e.current < 0 {
		return
	}
	e.episodeLengths = append(e.episodeLengths, float64(e.current))
	e.current = -1
}

// Data returns the length of each finished episode
func (e *EpisodeLength) Data() []float64 {
	return e.episodeLengths
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	return saveData(e.filename, e.episodeLengths)
}
